package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/honeycarbs/cypher-ask/internal/generator"
	"github.com/honeycarbs/cypher-ask/internal/graph"
	"github.com/honeycarbs/cypher-ask/internal/pipeline"
	"github.com/honeycarbs/cypher-ask/internal/sanitize"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
)

// Asker is the part of the pipeline the loop drives. Translation and execution are
// separate so the generated query can be shown before the database is hit.
type Asker interface {
	Translate(ctx context.Context, question string) (pipeline.Answer, error)
	Run(ctx context.Context, ans *pipeline.Answer) error
}

// Exporter receives every non-empty answer
type Exporter interface {
	Export(ctx context.Context, ans pipeline.Answer) error
}

type Option func(*Loop)

func WithExporter(e Exporter) Option {
	return func(l *Loop) {
		l.exporter = e
	}
}

// koreanExitWord always ends a session, whatever exit word is configured
const koreanExitWord = "종료"

// Loop reads questions line by line and prints generated queries and their results.
// It does not own the database connection.
type Loop struct {
	in       io.Reader
	out      io.Writer
	asker    Asker
	exitWord string
	exporter Exporter
	log      *logging.Logger
}

func New(in io.Reader, out io.Writer, asker Asker, exitWord string, log *logging.Logger, opts ...Option) *Loop {
	l := &Loop{
		in:       in,
		out:      out,
		asker:    asker,
		exitWord: exitWord,
		log:      log.Named("repl"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run prompts until the exit word, end of input or ctx cancellation.
// Only cancellation is reported as an error.
func (l *Loop) Run(ctx context.Context) error {
	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(l.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			l.log.Warn("reading input failed", "err", err)
		}
	}()

	for {
		fmt.Fprintf(l.out, "Enter a question (type '%s' to quit): ", l.exitWord)

		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out)
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(l.out)
				return nil
			}

			question := strings.TrimSpace(line)
			if question == "" {
				continue
			}

			if l.isExit(question) {
				fmt.Fprintln(l.out, "Goodbye.")
				return nil
			}

			l.handle(ctx, question)
		}
	}
}

func (l *Loop) isExit(question string) bool {
	return strings.EqualFold(question, l.exitWord) || question == koreanExitWord
}

// Once answers a single question and returns the error that was reported, if any
func (l *Loop) Once(ctx context.Context, question string) error {
	return l.handle(ctx, question)
}

func (l *Loop) handle(ctx context.Context, question string) error {
	ans, err := l.asker.Translate(ctx, question)
	if err != nil {
		l.report(err)
		return err
	}

	fmt.Fprintf(l.out, "Generated Cypher query: %s\n", ans.Query)

	if err := l.asker.Run(ctx, &ans); err != nil {
		l.report(err)
		return err
	}

	if len(ans.Records) == 0 {
		fmt.Fprintln(l.out, "No results from Neo4j. Check the question or the database.")
		return nil
	}

	fmt.Fprintln(l.out, "Neo4j results:")
	for _, rec := range ans.Records {
		fmt.Fprintln(l.out, rec.String())
	}

	if l.exporter != nil {
		if err := l.exporter.Export(ctx, ans); err != nil {
			l.log.Warn("export failed", "request_id", ans.ID.String(), "err", err)
			fmt.Fprintf(l.out, "Warning: could not export results: %v\n", err)
		}
	}

	return nil
}

func (l *Loop) report(err error) {
	var rejected *sanitize.RejectedError
	if errors.As(err, &rejected) {
		fmt.Fprintf(l.out, "Invalid Cypher query generated: %s\n", rejected.Text)
		return
	}

	var qe *graph.QueryError
	if errors.As(err, &qe) {
		switch qe.Kind {
		case graph.KindSyntax:
			fmt.Fprintf(l.out, "Cypher syntax error: %v\n", qe.Err)
		case graph.KindServiceUnavailable:
			fmt.Fprintf(l.out, "Neo4j service unavailable: %v\n", qe.Err)
		case graph.KindRetriesExhausted:
			fmt.Fprintf(l.out, "Neo4j still unavailable after %d attempts: %v\n", qe.Attempts, qe.Err)
		default:
			fmt.Fprintf(l.out, "Error: %v\n", qe.Err)
		}
		return
	}

	if errors.Is(err, pipeline.ErrGeneration) || errors.Is(err, generator.ErrUnavailable) {
		fmt.Fprintf(l.out, "Query generation failed: %v\n", err)
		return
	}

	fmt.Fprintf(l.out, "Error: %v\n", err)
}
