package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/cypher-ask/internal/pipeline"
	"github.com/honeycarbs/cypher-ask/internal/repl"
	"github.com/honeycarbs/cypher-ask/internal/sanitize"
	"github.com/honeycarbs/cypher-ask/pkg/logging"
	"github.com/honeycarbs/cypher-ask/pkg/shutdown"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "NEO4J_DATABASE", "LLM_MODEL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := execute(context.Background(), args, strings.NewReader(""), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestMissingConfigExitsWithError(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), "absent.env")

	for _, args := range [][]string{
		{"--env-file", envFile},
		{"--env-file", envFile, "ask", "List all departments"},
		{"--env-file", envFile, "serve"},
	} {
		code, _, stderr := run(t, args...)
		assert.Equal(t, exitError, code, args)
		assert.Contains(t, stderr, "missing required environment variables: NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD, LLM_MODEL")
	}
}

func TestAskRequiresQuestion(t *testing.T) {
	code, _, stderr := run(t, "ask")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "requires at least 1 arg")
}

func TestRootRejectsArguments(t *testing.T) {
	code, _, _ := run(t, "List", "all", "departments")
	assert.Equal(t, exitError, code)
}

func TestHelp(t *testing.T) {
	code, stdout, _ := run(t, "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "ask")
	assert.Contains(t, stdout, "serve")
	assert.Contains(t, stdout, "--database")
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(strings.Join([]string{
		"NEO4J_URI=neo4j://localhost:7687",
		"NEO4J_USERNAME=neo4j",
		"NEO4J_PASSWORD=secret",
		"NEO4J_DATABASE=neo4j",
		"LLM_MODEL=claude-3-5-haiku-latest",
		"LOG_LEVEL=info",
	}, "\n")), 0o600))
	// godotenv never overrides variables that exist, even empty ones
	for _, key := range []string{"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "NEO4J_DATABASE", "LLM_MODEL", "LOG_LEVEL"} {
		require.NoError(t, os.Unsetenv(key))
	}

	opts := &globalOptions{envFile: envFile, logLevel: "debug", database: "documents"}
	cfg, err := opts.load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "documents", cfg.Neo4j.Database)
	assert.Equal(t, "neo4j://localhost:7687", cfg.Neo4j.URI)
}

type rejectingAsker struct{}

func (rejectingAsker) Translate(context.Context, string) (pipeline.Answer, error) {
	return pipeline.Answer{}, &sanitize.RejectedError{Text: "I am not sure"}
}

func (rejectingAsker) Run(context.Context, *pipeline.Answer) error {
	return nil
}

func TestFailedQuestionIsPrintedOnce(t *testing.T) {
	var out, errOut bytes.Buffer
	l := repl.New(strings.NewReader(""), &out, rejectingAsker{}, "exit", logging.NewNop())

	err := answerOnce(context.Background(), l, "Which one?")
	require.ErrorIs(t, err, errReported)
	require.ErrorIs(t, err, sanitize.ErrInvalidQuery)

	assert.Equal(t, exitError, exitCode(err, &errOut))
	assert.Empty(t, errOut.String())
	assert.Equal(t, 1, strings.Count(out.String(), "I am not sure"))
}

func TestExitCode(t *testing.T) {
	var errOut bytes.Buffer

	assert.Equal(t, exitOK, exitCode(nil, &errOut))
	assert.Equal(t, exitOK, exitCode(context.Canceled, &errOut))
	assert.Empty(t, errOut.String())

	assert.Equal(t, exitError, exitCode(errors.New("connect failed"), &errOut))
	assert.Equal(t, "Error: connect failed\n", errOut.String())
}

func TestSessionCloseRunsCleanupOnce(t *testing.T) {
	closed := 0
	s := &session{log: logging.NewNop(), cleanup: func() { closed++ }}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := shutdown.Graceful(ctx, time.Second, logging.NewNop(), shutdown.StopFunc(func(context.Context) error {
		s.Close()
		return nil
	}))
	require.NoError(t, err)

	s.Close()
	assert.Equal(t, 1, closed)
}
