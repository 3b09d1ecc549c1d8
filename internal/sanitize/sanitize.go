// Package sanitize isolates the Cypher statement in a model completion and
// performs a keyword sniff test before it is sent to the database.
//
// The check is structural only. Semantically broken queries that contain the
// required keywords still pass; Neo4j is the authoritative validator.
package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const fence = "```"

const (
	matchKeyword  = "MATCH"
	returnKeyword = "RETURN"
)

// ErrInvalidQuery marks model output that does not look like a graph query
var ErrInvalidQuery = errors.New("invalid cypher query")

// RejectedError carries the text that failed validation
type RejectedError struct {
	Text string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidQuery, e.Text)
}

func (e *RejectedError) Unwrap() error {
	return ErrInvalidQuery
}

// preambleMarkers signal that the model wrapped the query in explanation
var preambleMarkers = []string{
	"Here is a Cypher query",
	"Here is the Cypher query",
	"Here's a Cypher query",
	"Here's the Cypher query",
	"This query",
	"이 쿼리는",
	"이 질문은",
}

// clauseStarts are the clauses a read query may begin with
var clauseStarts = []string{"OPTIONAL MATCH", "MATCH", "WITH", "UNWIND", "CALL"}

// continuations may open a line inside a query that is split by blank lines
var continuations = []string{
	"UNION", "RETURN", "WHERE", "ORDER", "SKIP", "LIMIT", "YIELD",
	"AND", "OR", "XOR", "NOT", "CASE", "WHEN", "ELSE", "END", "AS",
}

// Clean extracts and validates the query in raw
func Clean(raw string) (string, error) {
	q := Extract(raw)
	if err := Validate(q); err != nil {
		return "", err
	}
	return q, nil
}

// Extract strips explanatory wrapper text. Text without a preamble marker is only trimmed.
func Extract(raw string) string {
	text := strings.TrimSpace(raw)
	if !HasPreamble(text) {
		return text
	}

	if body, ok := firstFencedBlock(text); ok {
		return body
	}

	if i := strings.LastIndex(text, fence); i >= 0 {
		return strings.TrimSpace(text[i+len(fence):])
	}

	return fromFirstClause(text)
}

// Validate requires non-empty text containing both MATCH and RETURN (case-sensitive)
func Validate(q string) error {
	if q == "" || !strings.Contains(q, matchKeyword) || !strings.Contains(q, returnKeyword) {
		return &RejectedError{Text: q}
	}
	return nil
}

// HasPreamble reports whether text contains a known explanation marker
func HasPreamble(text string) bool {
	for _, m := range preambleMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func firstFencedBlock(text string) (string, bool) {
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]

	end := strings.Index(rest, fence)
	if end < 0 {
		return "", false
	}
	body := rest[:end]

	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isLanguageTag(body[:nl]) {
		body = body[nl+1:]
	}

	return strings.TrimSpace(body), true
}

// isLanguageTag matches info strings such as "cypher" but not a bare upper-case keyword
func isLanguageTag(line string) bool {
	tag := strings.TrimSpace(line)
	if tag == "" {
		return true
	}
	if strings.ToUpper(tag) == tag {
		return false
	}
	for _, r := range tag {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

// fromFirstClause keeps the lines from the first clause keyword up to the first blank
// line that is followed by something other than more of the query
func fromFirstClause(text string) string {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if startsWithClause(strings.TrimSpace(line)) {
			start = i
			break
		}
	}
	if start < 0 {
		return text
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			continue
		}
		next := i + 1
		for next < len(lines) && strings.TrimSpace(lines[next]) == "" {
			next++
		}
		if next == len(lines) || !continuesQuery(strings.TrimSpace(lines[next])) {
			end = i
			break
		}
		i = next
	}

	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

func startsWithClause(line string) bool {
	return startsWithKeyword(line, clauseStarts)
}

func continuesQuery(line string) bool {
	if strings.HasPrefix(line, ")") || strings.HasPrefix(line, "}") || strings.HasPrefix(line, "]") {
		return true
	}
	return startsWithClause(line) || startsWithKeyword(line, continuations)
}

func startsWithKeyword(line string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.HasPrefix(line, kw) {
			continue
		}
		rest := line[len(kw):]
		if rest == "" || rest[0] == ' ' || rest[0] == '(' || rest[0] == '\t' {
			return true
		}
	}
	return false
}
