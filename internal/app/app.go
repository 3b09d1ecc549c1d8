package app

import (
	"context"
	"time"

	"github.com/honeycarbs/cypher-ask/internal/config"
	"github.com/honeycarbs/cypher-ask/internal/export"
	"github.com/honeycarbs/cypher-ask/internal/graph"
	"github.com/honeycarbs/cypher-ask/internal/pipeline"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
	n4j "github.com/honeycarbs/cypher-ask/pkg/neo4j"
	"github.com/honeycarbs/cypher-ask/pkg/sheets"
)

const closeTimeout = 5 * time.Second

// Exporter is satisfied by *export.SheetsExporter
type Exporter interface {
	Export(ctx context.Context, ans pipeline.Answer) error
}

// App holds everything a session needs. Exporter is nil when Sheets is not configured.
type App struct {
	Pipeline *pipeline.Pipeline
	Exporter Exporter
}

func provideNeo4jClient(ctx context.Context, cfg config.Neo4j, log *logging.Logger) (*n4j.Client, func(), error) {
	client, err := n4j.NewClient(ctx, n4j.Config{
		URI:      cfg.URI,
		Username: cfg.Username,
		Password: cfg.Password,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("Neo4j client initialized", "uri", cfg.URI, "database", client.Database())

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := client.Close(ctx); err != nil {
			log.Warn("closing Neo4j driver failed", "err", err)
			return
		}
		log.Info("Neo4j connection closed")
	}

	return client, cleanup, nil
}

func provideRetryPolicy(retry config.Retry, db config.Neo4j) graph.RetryPolicy {
	return graph.RetryPolicy{
		MaxAttempts:     retry.MaxAttempts,
		InitialInterval: retry.InitialInterval,
		MaxInterval:     retry.MaxInterval,
		QueryTimeout:    db.QueryTimeout,
	}
}

// provideExporter returns a nil interface, not a typed nil, when exporting is off
func provideExporter(ctx context.Context, cfg config.Sheets, log *logging.Logger) (Exporter, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client, err := sheets.NewClient(ctx, sheets.Config{CredentialsPath: cfg.CredentialsPath})
	if err != nil {
		return nil, err
	}
	log.Info("Google Sheets export enabled", "spreadsheet_id", cfg.SpreadsheetID, "tab", cfg.Tab)

	return export.NewSheetsExporter(client, cfg.SpreadsheetID, cfg.Tab, log), nil
}
