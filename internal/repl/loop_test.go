package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/cypher-ask/internal/graph"
	"github.com/honeycarbs/cypher-ask/internal/pipeline"
	"github.com/honeycarbs/cypher-ask/internal/sanitize"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
)

// scriptedAsker answers questions from a table and counts calls to each stage
type scriptedAsker struct {
	queries   map[string]string
	translate map[string]error
	results   map[string][]graph.Record
	runErrs   map[string]error

	translated []string
	ran        []string
}

func (s *scriptedAsker) Translate(_ context.Context, question string) (pipeline.Answer, error) {
	s.translated = append(s.translated, question)
	if err := s.translate[question]; err != nil {
		return pipeline.Answer{Question: question}, err
	}
	return pipeline.Answer{Question: question, Query: s.queries[question]}, nil
}

func (s *scriptedAsker) Run(_ context.Context, ans *pipeline.Answer) error {
	s.ran = append(s.ran, ans.Query)
	if err := s.runErrs[ans.Query]; err != nil {
		return err
	}
	ans.Records = s.results[ans.Query]
	return nil
}

type recordingExporter struct {
	answers []pipeline.Answer
	err     error
}

func (r *recordingExporter) Export(_ context.Context, ans pipeline.Answer) error {
	r.answers = append(r.answers, ans)
	return r.err
}

func runLoop(t *testing.T, input string, asker Asker, opts ...Option) string {
	t.Helper()
	var out bytes.Buffer
	l := New(strings.NewReader(input), &out, asker, "exit", logging.NewNop(), opts...)
	require.NoError(t, l.Run(context.Background()))
	return out.String()
}

const departmentsQuery = "MATCH (d:Document)-[:MANAGE_AT]->(dept:Department) RETURN dept"

func departmentRecords() []graph.Record {
	return []graph.Record{
		{Keys: []string{"dept"}, Values: []any{neo4j.Node{Labels: []string{"Department"}, Props: map[string]any{"name": "IT"}}}},
		{Keys: []string{"dept"}, Values: []any{neo4j.Node{Labels: []string{"Department"}, Props: map[string]any{"name": "HR"}}}},
	}
}

func TestSentinelEndsWithoutCalls(t *testing.T) {
	for _, word := range []string{"exit", "EXIT", "  Exit  ", "종료", " 종료 "} {
		t.Run(word, func(t *testing.T) {
			asker := &scriptedAsker{}
			out := runLoop(t, word+"\nList all departments\n", asker)

			assert.Contains(t, out, "Goodbye.")
			assert.Empty(t, asker.translated)
			assert.Empty(t, asker.ran)
		})
	}
}

func TestConfiguredExitWordKeepsKoreanSentinel(t *testing.T) {
	for _, word := range []string{"quit", "종료"} {
		t.Run(word, func(t *testing.T) {
			var out bytes.Buffer
			asker := &scriptedAsker{}
			l := New(strings.NewReader(word+"\nexit\n"), &out, asker, "quit", logging.NewNop())

			require.NoError(t, l.Run(context.Background()))
			assert.Contains(t, out.String(), "Goodbye.")
			assert.Empty(t, asker.translated)
		})
	}
}

func TestEndOfInputTerminates(t *testing.T) {
	asker := &scriptedAsker{}
	out := runLoop(t, "", asker)

	assert.Contains(t, out, "Enter a question (type 'exit' to quit): ")
	assert.Empty(t, asker.translated)
}

func TestBlankLinesReprompt(t *testing.T) {
	asker := &scriptedAsker{}
	out := runLoop(t, "\n   \nexit\n", asker)

	assert.Equal(t, 3, strings.Count(out, "Enter a question"))
	assert.Empty(t, asker.translated)
}

func TestDepartmentsScenario(t *testing.T) {
	asker := &scriptedAsker{
		queries: map[string]string{"List all departments": departmentsQuery},
		results: map[string][]graph.Record{departmentsQuery: departmentRecords()},
	}
	out := runLoop(t, "List all departments\nexit\n", asker)

	assert.Contains(t, out, "Generated Cypher query: "+departmentsQuery)
	assert.Contains(t, out, "Neo4j results:")
	assert.Contains(t, out, `{dept: Node[Department] {"name":"IT"}}`)
	assert.Contains(t, out, `{dept: Node[Department] {"name":"HR"}}`)
	assert.Less(t, strings.Index(out, `"IT"`), strings.Index(out, `"HR"`))
	assert.Equal(t, []string{departmentsQuery}, asker.ran)
}

func TestRejectedQueryNeverRuns(t *testing.T) {
	prose := "I could not work out which department you mean."
	asker := &scriptedAsker{
		translate: map[string]error{"Which one?": &sanitize.RejectedError{Text: prose}},
	}
	out := runLoop(t, "Which one?\nexit\n", asker)

	assert.Contains(t, out, "Invalid Cypher query generated: "+prose)
	assert.NotContains(t, out, "Generated Cypher query:")
	assert.Empty(t, asker.ran)
}

func TestSyntaxErrorContinues(t *testing.T) {
	broken := "MATCH (n RETURN n"
	asker := &scriptedAsker{
		queries: map[string]string{
			"broken":               broken,
			"List all departments": departmentsQuery,
		},
		runErrs: map[string]error{
			broken: &graph.QueryError{Kind: graph.KindSyntax, Query: broken, Err: errors.New("Invalid input 'R'")},
		},
		results: map[string][]graph.Record{departmentsQuery: departmentRecords()},
	}
	out := runLoop(t, "broken\nList all departments\nexit\n", asker)

	assert.Contains(t, out, "Cypher syntax error: Invalid input 'R'")
	assert.Contains(t, out, "Neo4j results:")
	assert.Contains(t, out, "Goodbye.")
	assert.Equal(t, []string{broken, departmentsQuery}, asker.ran)
}

func TestZeroRows(t *testing.T) {
	q := "MATCH (p:Portal) WHERE p.name = 'none' RETURN p"
	asker := &scriptedAsker{queries: map[string]string{"portals": q}}
	out := runLoop(t, "portals\nexit\n", asker)

	assert.Contains(t, out, "No results from Neo4j. Check the question or the database.")
	assert.NotContains(t, out, "Neo4j results:")
}

func TestErrorCategories(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unavailable",
			err:  &graph.QueryError{Kind: graph.KindServiceUnavailable, Err: errors.New("connection refused")},
			want: "Neo4j service unavailable: connection refused",
		},
		{
			name: "retries exhausted",
			err:  &graph.QueryError{Kind: graph.KindRetriesExhausted, Attempts: 3, Err: errors.New("connection refused")},
			want: "Neo4j still unavailable after 3 attempts: connection refused",
		},
		{
			name: "execution",
			err:  &graph.QueryError{Kind: graph.KindExecution, Err: errors.New("unknown function")},
			want: "Error: unknown function",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := "MATCH (n) RETURN n"
			asker := &scriptedAsker{
				queries: map[string]string{"q": q},
				runErrs: map[string]error{q: tt.err},
			}
			out := runLoop(t, "q\nexit\n", asker)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestGenerationFailure(t *testing.T) {
	asker := &scriptedAsker{
		translate: map[string]error{"q": fmt.Errorf("%w: %w", pipeline.ErrGeneration, errors.New("401"))},
	}
	out := runLoop(t, "q\nexit\n", asker)

	assert.Contains(t, out, "Query generation failed:")
	assert.Empty(t, asker.ran)
}

func TestExportOnlyNonEmptyAnswers(t *testing.T) {
	empty := "MATCH (a:Admin) RETURN a"
	asker := &scriptedAsker{
		queries: map[string]string{"departments": departmentsQuery, "admins": empty},
		results: map[string][]graph.Record{departmentsQuery: departmentRecords()},
	}
	exp := &recordingExporter{}
	runLoop(t, "departments\nadmins\nexit\n", asker, WithExporter(exp))

	require.Len(t, exp.answers, 1)
	assert.Equal(t, departmentsQuery, exp.answers[0].Query)
}

func TestExportFailureIsAWarning(t *testing.T) {
	asker := &scriptedAsker{
		queries: map[string]string{"departments": departmentsQuery},
		results: map[string][]graph.Record{departmentsQuery: departmentRecords()},
	}
	exp := &recordingExporter{err: errors.New("quota exceeded")}
	out := runLoop(t, "departments\nexit\n", asker, WithExporter(exp))

	assert.Contains(t, out, "Warning: could not export results: quota exceeded")
	assert.Contains(t, out, "Goodbye.")
}

func TestOnceReturnsReportedError(t *testing.T) {
	var out bytes.Buffer
	asker := &scriptedAsker{
		translate: map[string]error{"q": &sanitize.RejectedError{Text: "nope"}},
	}
	l := New(strings.NewReader(""), &out, asker, "exit", logging.NewNop())

	err := l.Once(context.Background(), "q")
	require.ErrorIs(t, err, sanitize.ErrInvalidQuery)
	assert.Contains(t, out.String(), "Invalid Cypher query generated: nope")
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w := io.Pipe()
	defer w.Close()

	var out bytes.Buffer
	l := New(r, &out, &scriptedAsker{}, "exit", logging.NewNop())

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
