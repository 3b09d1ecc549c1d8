// Command mcp-probe exercises a running `cypher-ask serve` endpoint: it lists the
// tools, then calls graph_question (or run_cypher with -cypher) and prints the text.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/cypher-ask/pkg/logging"
	"github.com/honeycarbs/cypher-ask/pkg/shutdown"
)

const (
	defaultEndpoint = "http://localhost:8080/mcp/stream"
	defaultQuestion = "List all departments"
)

func main() {
	endpoint := flag.String("endpoint", envOr("MCP_URL", defaultEndpoint), "streamable HTTP endpoint of the server")
	cypher := flag.String("cypher", "", "run this query with run_cypher instead of asking a question")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline")
	flag.Parse()

	log := logging.New(envOr("LOG_LEVEL", "info"), "console")
	defer func() { _ = log.Sync() }()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := callServer(ctx, log, os.Stdout, *endpoint, toolCall(*cypher, strings.Join(flag.Args(), " "))); err != nil {
		log.Error("call failed", "endpoint", *endpoint, "err", err)
		stop()
		cancel()
		os.Exit(1)
	}
}

// toolCall picks run_cypher when a query is given, graph_question otherwise
func toolCall(cypher, question string) *mcp.CallToolParams {
	if cypher != "" {
		return &mcp.CallToolParams{Name: "run_cypher", Arguments: map[string]any{"cypher": cypher}}
	}
	if strings.TrimSpace(question) == "" {
		question = defaultQuestion
	}
	return &mcp.CallToolParams{Name: "graph_question", Arguments: map[string]any{"question": question}}
}

func callServer(ctx context.Context, log *logging.Logger, out io.Writer, endpoint string, params *mcp.CallToolParams) error {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "cypher-ask-probe",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", endpoint, err)
	}
	defer func() { _ = session.Close() }()

	log.Info("connected", "session_id", session.ID())

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("list tools: %w", err)
	}
	for _, t := range tools.Tools {
		fmt.Fprintf(out, "tool %s: %s\n", t.Name, t.Description)
	}

	result, err := session.CallTool(ctx, params)
	if err != nil {
		return fmt.Errorf("call %s: %w", params.Name, err)
	}

	printResult(out, result)
	if result.IsError {
		return fmt.Errorf("%s reported an error", params.Name)
	}
	return nil
}

func printResult(out io.Writer, res *mcp.CallToolResult) {
	for _, c := range res.Content {
		if txt, ok := c.(*mcp.TextContent); ok {
			fmt.Fprintln(out, txt.Text)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
