package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/cypher-ask/internal/pipeline"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
)

// Pipeline answers questions and runs hand-written queries
type Pipeline interface {
	Ask(ctx context.Context, question string) (pipeline.Answer, error)
	Execute(ctx context.Context, query string) (pipeline.Answer, error)
}

// Exporter stores an answer outside the process
type Exporter interface {
	Export(ctx context.Context, ans pipeline.Answer) error
}

// Option configures which tools are registered
type Option func(*registry)

type registry struct {
	server *sdkmcp.Server
	log    *logging.Logger
}

// Register applies the provided tool options
func Register(server *sdkmcp.Server, log *logging.Logger, opts ...Option) {
	reg := &registry{server: server, log: log.Named("tools")}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(reg)
	}
}
