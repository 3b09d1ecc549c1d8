package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/honeycarbs/cypher-ask/internal/repl"
)

// errReported marks a failure the loop has already printed for the user
var errReported = errors.New("question failed")

func newAskCmd(opts *globalOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Answer a single question and exit",
		Example: `  cypher-ask ask "List all departments"
  cypher-ask ask --database docs Which portals does the IT department manage?`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			question := strings.TrimSpace(strings.Join(args, " "))
			return answerOnce(cmd.Context(), s.loop(strings.NewReader(""), out), question)
		},
	}
}

func answerOnce(ctx context.Context, l *repl.Loop, question string) error {
	if err := l.Once(ctx, question); err != nil {
		return fmt.Errorf("%w: %w", errReported, err)
	}
	return nil
}
