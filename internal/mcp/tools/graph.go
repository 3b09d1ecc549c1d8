package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/cypher-ask/internal/graph"
	"github.com/honeycarbs/cypher-ask/internal/pipeline"
	"github.com/honeycarbs/cypher-ask/internal/sanitize"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
)

// GraphQuestionParams defines the arguments for the graph_question tool
type GraphQuestionParams struct {
	Question string `json:"question" jsonschema:"Natural language question about documents and their departments, admins, portals, events and targets"`
	Export   bool   `json:"export,omitempty" jsonschema:"Append the result rows to the configured Google Sheet"`
}

// RunCypherParams defines the arguments for the run_cypher tool
type RunCypherParams struct {
	Cypher string `json:"cypher" jsonschema:"Read-only Cypher query; must contain MATCH and RETURN"`
}

type graphHandler struct {
	pipeline Pipeline
	exporter Exporter
	log      *logging.Logger
}

// WithGraphQuestion registers graph_question. exporter may be nil.
func WithGraphQuestion(p Pipeline, exporter Exporter) Option {
	return func(reg *registry) {
		h := &graphHandler{pipeline: p, exporter: exporter, log: reg.log}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "graph_question",
			Description: "Translate a question into Cypher, run it against the document graph and return the rows",
		}, h.question)
	}
}

// WithRunCypher registers run_cypher
func WithRunCypher(p Pipeline) Option {
	return func(reg *registry) {
		h := &graphHandler{pipeline: p, log: reg.log}
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "run_cypher",
			Description: "Run a read-only Cypher query against the document graph and return the rows",
		}, h.runCypher)
	}
}

func (h *graphHandler) question(ctx context.Context, _ *sdkmcp.CallToolRequest, params GraphQuestionParams) (*sdkmcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.Question) == "" {
		return errorResult("graph_question requires a question"), nil, nil
	}

	ans, err := h.pipeline.Ask(ctx, params.Question)
	if err != nil {
		h.log.Warn("graph_question failed", "request_id", ans.ID.String(), "err", err)
		return errorResult(describe(err)), nil, nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Cypher: %s\n\n", ans.Query))
	sb.WriteString(graph.FormatRecords(ans.Records))

	if params.Export {
		sb.WriteString("\n")
		sb.WriteString(h.export(ctx, ans))
	}

	return textResult(sb.String()), nil, nil
}

func (h *graphHandler) export(ctx context.Context, ans pipeline.Answer) string {
	switch {
	case h.exporter == nil:
		return "Export skipped: Google Sheets is not configured"
	case len(ans.Records) == 0:
		return "Export skipped: no rows"
	}
	if err := h.exporter.Export(ctx, ans); err != nil {
		h.log.Warn("export failed", "request_id", ans.ID.String(), "err", err)
		return fmt.Sprintf("Export failed: %v", err)
	}
	return fmt.Sprintf("Exported %d row(s) to Google Sheets", len(ans.Records))
}

func (h *graphHandler) runCypher(ctx context.Context, _ *sdkmcp.CallToolRequest, params RunCypherParams) (*sdkmcp.CallToolResult, any, error) {
	ans, err := h.pipeline.Execute(ctx, params.Cypher)
	if err != nil {
		h.log.Warn("run_cypher failed", "request_id", ans.ID.String(), "err", err)
		return errorResult(describe(err)), nil, nil
	}

	return textResult(graph.FormatRecords(ans.Records)), nil, nil
}

func describe(err error) string {
	var rejected *sanitize.RejectedError
	if errors.As(err, &rejected) {
		return fmt.Sprintf("invalid cypher query: %s", rejected.Text)
	}

	var qe *graph.QueryError
	if errors.As(err, &qe) {
		switch qe.Kind {
		case graph.KindSyntax:
			return fmt.Sprintf("cypher syntax error: %v", qe.Err)
		case graph.KindServiceUnavailable:
			return fmt.Sprintf("neo4j unavailable: %v", qe.Err)
		case graph.KindRetriesExhausted:
			return qe.Error()
		}
		return fmt.Sprintf("query failed: %v", qe.Err)
	}

	return err.Error()
}
