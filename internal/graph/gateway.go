package graph

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/cypher-ask/pkg/logging"
)

// Executor runs one literal query and returns the raw driver records.
// *neo4j.Client from pkg/neo4j is the production implementation.
type Executor interface {
	Execute(ctx context.Context, query string) ([]*neo4j.Record, error)
}

// RetryPolicy bounds retries of unavailable-service failures
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	QueryTimeout    time.Duration // per attempt, zero disables
}

// Gateway runs generated queries against Neo4j and categorizes failures
type Gateway struct {
	exec   Executor
	policy RetryPolicy
	log    *logging.Logger
}

func NewGateway(exec Executor, policy RetryPolicy, log *logging.Logger) *Gateway {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Gateway{
		exec:   exec,
		policy: policy,
		log:    log.Named("graph"),
	}
}

// Run executes query and returns every record in server order.
// Failures are always *QueryError.
func (g *Gateway) Run(ctx context.Context, query string) ([]Record, error) {
	attempts := 0

	operation := func() ([]*neo4j.Record, error) {
		attempts++

		attemptCtx := ctx
		if g.policy.QueryTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, g.policy.QueryTimeout)
			defer cancel()
		}

		records, err := g.exec.Execute(attemptCtx, query)
		if err == nil {
			return records, nil
		}
		if Classify(err) == KindServiceUnavailable {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	records, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(g.newBackOff()),
		backoff.WithMaxTries(uint(g.policy.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			g.log.Warn("neo4j unavailable, retrying", "attempt", attempts, "wait", wait, "err", err)
		}),
	)
	if err != nil {
		kind := Classify(err)
		if kind == KindServiceUnavailable && attempts >= g.policy.MaxAttempts && g.policy.MaxAttempts > 1 {
			kind = KindRetriesExhausted
		}
		g.log.Debug("query failed", "kind", kind.String(), "attempts", attempts, "err", err)
		return nil, &QueryError{Kind: kind, Query: query, Attempts: attempts, Err: err}
	}

	g.log.Debug("query executed", "rows", len(records), "attempts", attempts)
	return fromDriver(records), nil
}

func (g *Gateway) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if g.policy.InitialInterval > 0 {
		b.InitialInterval = g.policy.InitialInterval
	}
	if g.policy.MaxInterval > 0 {
		b.MaxInterval = g.policy.MaxInterval
	}
	return b
}
