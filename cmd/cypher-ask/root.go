package main

import (
	"context"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/honeycarbs/cypher-ask/internal/app"
	"github.com/honeycarbs/cypher-ask/internal/config"
	"github.com/honeycarbs/cypher-ask/internal/repl"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
)

// globalOptions are flags shared by every command. Set flags win over the environment.
type globalOptions struct {
	envFile  string
	logLevel string
	database string
}

func (o *globalOptions) load() (config.Config, error) {
	cfg, err := config.LoadFile(o.envFile)
	if err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.database != "" {
		cfg.Neo4j.Database = o.database
	}
	return cfg, nil
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "cypher-ask",
		Short: "Ask questions about the document graph in plain language",
		Long: `cypher-ask translates natural-language questions into Cypher with a
language model, runs them against Neo4j and prints the records.

Without a subcommand it starts an interactive session that ends on the
exit word (EXIT_WORD, default "exit"), "종료" or end of input.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd.Context(), opts, in, out)
		},
	}

	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file read before the environment")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&opts.database, "database", "", "Neo4j database name; overrides NEO4J_DATABASE")

	cmd.AddCommand(
		newAskCmd(opts, out),
		newServeCmd(opts),
	)

	return cmd
}

// session is one configured, connected instance of the application
type session struct {
	cfg     config.Config
	log     *logging.Logger
	app     *app.App
	cleanup func()
	once    sync.Once
}

func openSession(ctx context.Context, opts *globalOptions) (*session, error) {
	cfg, err := opts.load()
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	a, cleanup, err := app.InitializeApp(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	return &session{cfg: cfg, log: log, app: a, cleanup: cleanup}, nil
}

// Close releases the Neo4j connection. Later calls do nothing.
func (s *session) Close() {
	s.once.Do(func() {
		s.cleanup()
		_ = s.log.Sync()
	})
}

func (s *session) loop(in io.Reader, out io.Writer) *repl.Loop {
	var opts []repl.Option
	if s.app.Exporter != nil {
		opts = append(opts, repl.WithExporter(s.app.Exporter))
	}
	return repl.New(in, out, s.app.Pipeline, s.cfg.ExitWord, s.log, opts...)
}

func runInteractive(ctx context.Context, opts *globalOptions, in io.Reader, out io.Writer) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	s.log.Info("interactive session started", "provider", s.cfg.LLM.Provider, "model", s.cfg.LLM.Model)
	return s.loop(in, out).Run(ctx)
}
