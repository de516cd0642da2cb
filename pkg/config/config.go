package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/jamaly87/codebase-qa/internal/models"
)

// DefaultUnsupportedQueryMessage is returned to users whose question falls
// outside the ingested codebase.
const DefaultUnsupportedQueryMessage = "I can only answer questions about the ingested Python codebase. " +
	"Please rephrase your request with details about the project files or architecture."

// Config holds all configuration for the codebase assistant
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Indexing   IndexingConfig   `yaml:"indexing"`
	Search     SearchConfig     `yaml:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	LLM        LLMConfig        `yaml:"llm"`
	VectorDB   VectorDBConfig   `yaml:"vectordb"`
	Guardrail  GuardrailConfig  `yaml:"guardrail"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
	Ignore     IgnoreConfig     `yaml:"ignore_patterns"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type IndexingConfig struct {
	MaxFileSizeMB   int `yaml:"max_file_size_mb"` // 0 disables the cap
	ParallelWorkers int `yaml:"parallel_workers"`
}

type SearchConfig struct {
	MaxResults int `yaml:"max_results"`
}

type EmbeddingsConfig struct {
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"-"`
	BatchSize  int    `yaml:"batch_size"`
	Dimensions int    `yaml:"dimensions"`
}

type LLMConfig struct {
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"-"`
	Temperature float64 `yaml:"temperature"`
}

// VectorDBConfig selects and configures the chunk store.
// Type is one of "postgres", "qdrant" or "embedded".
type VectorDBConfig struct {
	Type     string         `yaml:"type"`
	Postgres PostgresConfig `yaml:"postgres"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Embedded EmbeddedConfig `yaml:"embedded"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
	MaxConns int32  `yaml:"max_conns"`
}

type QdrantConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	APIKey         string `yaml:"-"`
	UseTLS         bool   `yaml:"use_tls"`
	CollectionName string `yaml:"collection_name"`
}

type EmbeddedConfig struct {
	Path           string `yaml:"path"` // empty keeps the store in memory
	Compress       bool   `yaml:"compress"`
	CollectionName string `yaml:"collection_name"`
}

type GuardrailConfig struct {
	UnsupportedQueryMessage string `yaml:"unsupported_query_message"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
	SessionID   string `yaml:"session_id"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
	File   string `yaml:"file"`   // empty logs to stderr
}

type IgnoreConfig struct {
	Patterns []string `yaml:"patterns"`
}

// Load loads configuration from file or returns defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	cfg.VectorDB.Embedded.Path = expandPath(cfg.VectorDB.Embedded.Path)
	cfg.Logging.File = expandPath(cfg.Logging.File)

	return cfg, nil
}

// LoadFile loads configuration from an explicit path, then applies env overrides
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadFromFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	applyEnvOverrides(cfg)
	cfg.VectorDB.Embedded.Path = expandPath(cfg.VectorDB.Embedded.Path)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	return cfg, nil
}

// LoadPath loads from path when set, otherwise falls back to Load
func LoadPath(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	return LoadFile(path)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "codebase-qa",
			Version: "0.1.0",
		},
		Indexing: IndexingConfig{
			MaxFileSizeMB:   0,
			ParallelWorkers: runtime.NumCPU(),
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Embeddings: EmbeddingsConfig{
			Model:      "text-embedding-3-small",
			BatchSize:  64,
			Dimensions: 1536,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0,
		},
		VectorDB: VectorDBConfig{
			Type: "postgres",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5433,
				User:     "assistant_user",
				Password: "assistant_pass",
				Database: "coding_assistant",
				Table:    "code_embeddings",
				MaxConns: 10,
			},
			Qdrant: QdrantConfig{
				Host:           "localhost",
				Port:           6334,
				CollectionName: "code_embeddings",
			},
			Embedded: EmbeddedConfig{
				Path:           "~/.codebase-qa/chromem",
				Compress:       false,
				CollectionName: "code_embeddings",
			},
		},
		Guardrail: GuardrailConfig{
			UnsupportedQueryMessage: DefaultUnsupportedQueryMessage,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "localhost:4318",
			Insecure:    true,
			ServiceName: "codebase-qa",
			SessionID:   "local-cli",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Ignore: IgnoreConfig{
			Patterns: []string{},
		},
	}
}

// DSN returns the connection string for the Postgres store
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

// UnsupportedQueryMessage returns the configured fallback, or the default when unset
func (c *Config) UnsupportedQueryMessage() string {
	if c.Guardrail.UnsupportedQueryMessage == "" {
		return DefaultUnsupportedQueryMessage
	}
	return c.Guardrail.UnsupportedQueryMessage
}

// RequireCredentials reports ErrMissingCredential when the model provider key is unset
func (c *Config) RequireCredentials() error {
	if c.Embeddings.APIKey == "" || c.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set: %w", models.ErrMissingCredential)
	}
	return nil
}

func getConfigPath() string {
	if path := os.Getenv("CODEBASE_QA_CONFIG"); path != "" {
		return path
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}

	home, err := os.UserHomeDir()
	if err == nil {
		path := filepath.Join(home, ".codebase-qa", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Embeddings.APIKey = key
		cfg.LLM.APIKey = key
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		cfg.Embeddings.BaseURL = url
		cfg.LLM.BaseURL = url
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if model := os.Getenv("EMBEDDINGS_MODEL"); model != "" {
		cfg.Embeddings.Model = model
	}

	if t := os.Getenv("VECTORDB_TYPE"); t != "" {
		cfg.VectorDB.Type = t
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		cfg.VectorDB.Postgres.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("POSTGRES_PORT")); err == nil {
		cfg.VectorDB.Postgres.Port = port
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		cfg.VectorDB.Postgres.User = user
	}
	if pass := os.Getenv("POSTGRES_PASSWORD"); pass != "" {
		cfg.VectorDB.Postgres.Password = pass
	}
	if db := os.Getenv("POSTGRES_DB"); db != "" {
		cfg.VectorDB.Postgres.Database = db
	}
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		cfg.VectorDB.Qdrant.Host = host
	}
	if port, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil {
		cfg.VectorDB.Qdrant.Port = port
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		cfg.VectorDB.Qdrant.APIKey = key
	}

	if msg := os.Getenv("UNSUPPORTED_QUERY_MESSAGE"); msg != "" {
		cfg.Guardrail.UnsupportedQueryMessage = msg
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Telemetry.Endpoint = endpoint
		cfg.Telemetry.Enabled = true
	}
	if session := os.Getenv("TELEMETRY_SESSION_ID"); session != "" {
		cfg.Telemetry.SessionID = session
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
