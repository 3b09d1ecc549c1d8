package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/honeycarbs/cypher-ask/internal/mcp"
	"github.com/honeycarbs/cypher-ask/pkg/shutdown"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *globalOptions) *cobra.Command {
	var host, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the question pipeline as MCP tools over streamable HTTP",
		Long: `serve starts an MCP server on /mcp/stream with two tools:
  graph_question  translate a question to Cypher and run it
  run_cypher      run a read-only Cypher query

GET /healthz answers "ok" while the server is up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if host != "" {
				s.cfg.MCP.Host = host
			}
			if port != "" {
				s.cfg.MCP.Port = port
			}

			srv := mcp.NewServer(s.log, s.cfg.MCP, s.app.Pipeline, s.app.Exporter)

			// in-flight tool calls finish before the driver is closed
			closeSession := shutdown.StopFunc(func(context.Context) error {
				s.Close()
				return nil
			})
			go func() {
				_ = shutdown.Graceful(ctx, shutdownTimeout, s.log, srv, closeSession)
			}()

			if err := srv.Run(); err != nil {
				s.log.Error("MCP server exited with error", "err", err)
				return err
			}

			s.log.Info("MCP server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host; overrides MCP_HOST")
	cmd.Flags().StringVar(&port, "port", "", "listen port; overrides PORT")

	return cmd
}
