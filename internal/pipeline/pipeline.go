package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/honeycarbs/cypher-ask/internal/graph"
	"github.com/honeycarbs/cypher-ask/internal/sanitize"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
)

// ErrGeneration wraps failures of the language model call
var ErrGeneration = errors.New("query generation failed")

// PromptBuilder fills a question into the generation template
type PromptBuilder interface {
	Build(question string) (string, error)
}

// QueryGenerator returns raw model text for a prompt
type QueryGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QueryRunner executes a validated query
type QueryRunner interface {
	Run(ctx context.Context, query string) ([]graph.Record, error)
}

// Answer is the outcome of one question
type Answer struct {
	ID       uuid.UUID
	Question string
	Query    string
	Records  []graph.Record
}

// Pipeline wires prompt building, generation, sanitizing and execution together.
// It holds no per-question state and is safe for concurrent use when its dependencies are.
type Pipeline struct {
	prompts PromptBuilder
	gen     QueryGenerator
	runner  QueryRunner
	log     *logging.Logger
}

func New(prompts PromptBuilder, gen QueryGenerator, runner QueryRunner, log *logging.Logger) *Pipeline {
	return &Pipeline{
		prompts: prompts,
		gen:     gen,
		runner:  runner,
		log:     log.Named("pipeline"),
	}
}

// Translate turns question into a sanitized query without touching the database.
// A rejected completion returns an error matching sanitize.ErrInvalidQuery.
func (p *Pipeline) Translate(ctx context.Context, question string) (Answer, error) {
	ans := Answer{ID: uuid.New(), Question: question}
	log := p.log.With("request_id", ans.ID.String())

	prompt, err := p.prompts.Build(question)
	if err != nil {
		return ans, err
	}

	raw, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		log.Warn("generation failed", "err", err)
		return ans, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	query, err := sanitize.Clean(raw)
	if err != nil {
		log.Info("generated text rejected", "raw", raw)
		return ans, err
	}

	ans.Query = query
	log.Debug("query generated", "query", query)
	return ans, nil
}

// Run executes ans.Query and stores the records on ans
func (p *Pipeline) Run(ctx context.Context, ans *Answer) error {
	records, err := p.runner.Run(ctx, ans.Query)
	if err != nil {
		kind, _ := graph.KindOf(err)
		p.log.Warn("query failed", "request_id", ans.ID.String(), "kind", kind.String(), "err", err)
		return err
	}

	ans.Records = records
	p.log.Info("query answered", "request_id", ans.ID.String(), "rows", len(records))
	return nil
}

// Ask is Translate followed by Run
func (p *Pipeline) Ask(ctx context.Context, question string) (Answer, error) {
	ans, err := p.Translate(ctx, question)
	if err != nil {
		return ans, err
	}
	if err := p.Run(ctx, &ans); err != nil {
		return ans, err
	}
	return ans, nil
}

// Execute runs a caller-written query after the same structural check applied to generated text
func (p *Pipeline) Execute(ctx context.Context, query string) (Answer, error) {
	ans := Answer{ID: uuid.New()}

	q, err := sanitize.Clean(query)
	if err != nil {
		return ans, err
	}
	ans.Query = q

	if err := p.Run(ctx, &ans); err != nil {
		return ans, err
	}
	return ans, nil
}
