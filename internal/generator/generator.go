package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tmc/langchaingo/llms"

	"github.com/honeycarbs/cypher-ask/internal/config"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
)

// ErrUnavailable is returned while the circuit breaker is open
var ErrUnavailable = errors.New("language model temporarily unavailable")

// BreakerSettings controls when repeated model failures start failing fast
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// DefaultBreakerSettings trips after five straight failures and probes again after a minute
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 5,
		OpenTimeout:         60 * time.Second,
	}
}

// Generator turns a prompt into model text. It performs no retries
type Generator struct {
	model       llms.Model
	temperature float64
	maxTokens   int
	timeout     time.Duration
	breaker     *gobreaker.CircuitBreaker
	log         *logging.Logger
}

// New builds the provider model from cfg and wraps it
func New(ctx context.Context, cfg config.LLM, log *logging.Logger) (*Generator, error) {
	model, err := NewModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithModel(model, cfg, DefaultBreakerSettings(), log), nil
}

// NewWithModel wraps an existing langchaingo model
func NewWithModel(model llms.Model, cfg config.LLM, bs BreakerSettings, log *logging.Logger) *Generator {
	log = log.Named("generator")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm",
		Timeout: bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// a cancelled question says nothing about provider health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Generator{
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		breaker:     breaker,
		log:         log,
	}
}

// Generate sends prompt as a single request and returns the raw completion text
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := g.breaker.Execute(func() (any, error) {
		return llms.GenerateFromSinglePrompt(ctx, g.model, prompt,
			llms.WithTemperature(g.temperature),
			llms.WithMaxTokens(g.maxTokens),
		)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", fmt.Errorf("generate: %w", err)
	}

	text, _ := out.(string)
	g.log.Debug("completion received", "chars", len(text), "elapsed", time.Since(start))
	return text, nil
}
