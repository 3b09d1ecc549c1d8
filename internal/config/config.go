package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LLM holds the language model settings. Temperature and MaxTokens are fixed for the process lifetime
type LLM struct {
	Provider    string // anthropic, openai, ollama or googleai
	APIKey      string
	Model       string
	BaseURL     string // optional provider endpoint override
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Neo4j holds graph database connection settings
type Neo4j struct {
	URI          string
	Username     string
	Password     string
	Database     string // empty selects the server default database
	QueryTimeout time.Duration
}

// Retry bounds the backoff applied when Neo4j is unavailable
type Retry struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// MCP holds the listener address for the serve command
type MCP struct {
	Host string
	Port string
}

// Sheets enables exporting result sets when SpreadsheetID and CredentialsPath are set
type Sheets struct {
	SpreadsheetID   string
	Tab             string
	CredentialsPath string
}

// Enabled reports whether exporting is configured
func (s Sheets) Enabled() bool {
	return s.SpreadsheetID != "" && s.CredentialsPath != ""
}

// Config contains runtime settings for cypher-ask
type Config struct {
	LogLevel  string
	LogFormat string // json or console
	ExitWord  string
	LLM       LLM
	Neo4j     Neo4j
	Retry     Retry
	MCP       MCP
	Sheets    Sheets
}

// Load populates config from a .env file (if present) and environment variables
func Load() (Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. Variables already set in the environment win
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	cfg := Config{
		LogLevel:  "info",
		LogFormat: "console",
		ExitWord:  "exit",
		LLM: LLM{
			Provider:    "anthropic",
			Temperature: 0.1,
			MaxTokens:   1024,
			Timeout:     60 * time.Second,
		},
		Neo4j: Neo4j{
			QueryTimeout: 30 * time.Second,
		},
		Retry: Retry{
			MaxAttempts:     3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		MCP: MCP{
			Host: "0.0.0.0",
			Port: "8080",
		},
		Sheets: Sheets{
			Tab: "Sheet1",
		},
	}

	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.ExitWord, "EXIT_WORD")

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	setString(&cfg.LLM.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.Model, "LLM_MODEL")
	setString(&cfg.LLM.BaseURL, "LLM_BASE_URL")

	cfg.Neo4j.URI = os.Getenv("NEO4J_URI")
	cfg.Neo4j.Username = os.Getenv("NEO4J_USERNAME")
	cfg.Neo4j.Password = os.Getenv("NEO4J_PASSWORD")
	cfg.Neo4j.Database = os.Getenv("NEO4J_DATABASE")

	setString(&cfg.MCP.Host, "MCP_HOST")
	setString(&cfg.MCP.Port, "PORT")

	cfg.Sheets.SpreadsheetID = os.Getenv("SHEETS_ID")
	cfg.Sheets.CredentialsPath = os.Getenv("SHEETS_CREDENTIALS")
	setString(&cfg.Sheets.Tab, "SHEETS_TAB")

	var errs []error
	errs = append(errs,
		setFloat(&cfg.LLM.Temperature, "LLM_TEMPERATURE"),
		setInt(&cfg.LLM.MaxTokens, "LLM_MAX_TOKENS"),
		setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT"),
		setDuration(&cfg.Neo4j.QueryTimeout, "NEO4J_QUERY_TIMEOUT"),
		setInt(&cfg.Retry.MaxAttempts, "RETRY_MAX_ATTEMPTS"),
	)
	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}

	var missingVars []string

	if cfg.Neo4j.URI == "" {
		missingVars = append(missingVars, "NEO4J_URI")
	}

	if cfg.Neo4j.Username == "" {
		missingVars = append(missingVars, "NEO4J_USERNAME")
	}

	if cfg.Neo4j.Password == "" {
		missingVars = append(missingVars, "NEO4J_PASSWORD")
	}

	if cfg.LLM.Model == "" {
		missingVars = append(missingVars, "LLM_MODEL")
	}

	if len(missingVars) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}

	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
