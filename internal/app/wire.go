//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/cypher-ask/internal/config"
	"github.com/honeycarbs/cypher-ask/internal/generator"
	"github.com/honeycarbs/cypher-ask/internal/graph"
	"github.com/honeycarbs/cypher-ask/internal/pipeline"
	"github.com/honeycarbs/cypher-ask/internal/prompt"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
	n4j "github.com/honeycarbs/cypher-ask/pkg/neo4j"
)

// InitializeApp connects to Neo4j and builds the pipeline. The returned cleanup closes the driver.
func InitializeApp(ctx context.Context, cfg config.Config, log *logging.Logger) (*App, func(), error) {
	wire.Build(
		wire.FieldsOf(new(config.Config), "LLM", "Neo4j", "Retry", "Sheets"),

		// Infrastructure - Neo4j
		provideNeo4jClient,
		wire.Bind(new(graph.Executor), new(*n4j.Client)),
		provideRetryPolicy,
		graph.NewGateway,
		wire.Bind(new(pipeline.QueryRunner), new(*graph.Gateway)),

		// Generation
		prompt.NewBuilder,
		wire.Bind(new(pipeline.PromptBuilder), new(*prompt.Builder)),
		generator.New,
		wire.Bind(new(pipeline.QueryGenerator), new(*generator.Generator)),

		pipeline.New,
		provideExporter,
		wire.Struct(new(App), "*"),
	)

	return nil, nil, nil
}
