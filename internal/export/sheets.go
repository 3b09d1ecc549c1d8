package export

import (
	"context"
	"fmt"

	"github.com/honeycarbs/cypher-ask/internal/graph"
	"github.com/honeycarbs/cypher-ask/internal/pipeline"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
	"github.com/honeycarbs/cypher-ask/pkg/sheets"
)

// Appender is the subset of the sheets client used for exports
type Appender interface {
	AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]any) (int, error)
}

// SheetsExporter writes answers to one tab of a spreadsheet
type SheetsExporter struct {
	client        Appender
	spreadsheetID string
	tab           string
	log           *logging.Logger
}

func NewSheetsExporter(client Appender, spreadsheetID, tab string, log *logging.Logger) *SheetsExporter {
	return &SheetsExporter{
		client:        client,
		spreadsheetID: spreadsheetID,
		tab:           tab,
		log:           log.Named("export"),
	}
}

// Export appends a header row (question, query, column names) and one row per record
func (e *SheetsExporter) Export(ctx context.Context, ans pipeline.Answer) error {
	if len(ans.Records) == 0 {
		return nil
	}

	n, err := e.client.AppendValues(ctx, e.spreadsheetID, sheets.TabRange(e.tab), rows(ans))
	if err != nil {
		return fmt.Errorf("export answer %s: %w", ans.ID, err)
	}

	e.log.Info("answer exported", "request_id", ans.ID.String(), "spreadsheet_id", e.spreadsheetID, "tab", e.tab, "rows", n)
	return nil
}

func rows(ans pipeline.Answer) [][]any {
	header := []any{ans.Question, ans.Query}
	for _, k := range ans.Records[0].Keys {
		header = append(header, k)
	}

	out := make([][]any, 0, len(ans.Records)+1)
	out = append(out, header)

	for _, rec := range ans.Records {
		row := []any{"", ""}
		for _, v := range rec.Values {
			row = append(row, cell(v))
		}
		out = append(out, row)
	}
	return out
}

// cell keeps plain strings unquoted; everything else uses the console rendering
func cell(v any) any {
	if s, ok := v.(string); ok {
		return s
	}
	return graph.FormatValue(v)
}
