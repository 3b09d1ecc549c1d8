package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const syntaxErrorCode = "Neo.ClientError.Statement.SyntaxError"

// Kind categorizes a failed query for reporting
type Kind int

const (
	KindExecution Kind = iota
	KindSyntax
	KindServiceUnavailable
	KindRetriesExhausted
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindRetriesExhausted:
		return "retries_exhausted"
	default:
		return "execution"
	}
}

// QueryError is returned by Gateway.Run for every failed query
type QueryError struct {
	Kind     Kind
	Query    string
	Attempts int
	Err      error
}

func (e *QueryError) Error() string {
	if e.Kind == KindRetriesExhausted {
		return fmt.Sprintf("neo4j unavailable after %d attempts: %v", e.Attempts, e.Err)
	}
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of a QueryError anywhere in err's chain
func KindOf(err error) (Kind, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind, true
	}
	return KindExecution, false
}

// Classify maps a driver error onto a Kind. A TransactionExecutionLimit is
// classified by the last error the driver saw before giving up.
func Classify(err error) Kind {
	var limit *neo4j.TransactionExecutionLimit
	if errors.As(err, &limit) && len(limit.Errors) > 0 {
		return Classify(limit.Errors[len(limit.Errors)-1])
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case neoErr.Code == syntaxErrorCode:
			return KindSyntax
		case strings.HasSuffix(neoErr.Code, ".ServiceUnavailable"),
			strings.HasSuffix(neoErr.Code, ".DatabaseUnavailable"):
			return KindServiceUnavailable
		}
		return KindExecution
	}

	var connErr *neo4j.ConnectivityError
	if errors.As(err, &connErr) {
		return KindServiceUnavailable
	}

	// timeouts and cancellations are reported as plain execution failures
	return KindExecution
}
