package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the engine.
// Configuration comes from config.yaml with environment variable
// overrides; environment always wins. Secrets (API keys, passwords,
// the cookie secret) must only come from environment variables.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// SessionSecret signs the visitor cookie.
	SessionSecret string `yaml:"-" env:"SESSION_SECRET"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Museum   MuseumConfig   `yaml:"museum"`
	Chat     ChatConfig     `yaml:"chat"`
	Style    StyleConfig    `yaml:"style"`
	Corpus   CorpusConfig   `yaml:"corpus"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"atelier"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"atelier_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds the session store configuration. An empty host
// selects the in-memory session store.
type RedisConfig struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port       int           `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password   string        `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB         int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"REDIS_SESSION_TTL" env-default:"24h"`
}

// AIConfig selects and configures the model providers.
type AIConfig struct {
	// Provider picks the generation backend: "openai" or "anthropic".
	// Embeddings always come from OpenAI.
	Provider  string          `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

// OpenAIConfig holds the OpenAI client configuration.
type OpenAIConfig struct {
	APIKey         string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML
	Model          string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	EmbeddingModel string `yaml:"embedding_model" env:"OPENAI_EMBEDDING_MODEL" env-default:"text-embedding-3-large"`
}

// AnthropicConfig holds the Anthropic client configuration.
type AnthropicConfig struct {
	APIKey    string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
	Model     string `yaml:"model" env:"ANTHROPIC_MODEL" env-default:"claude-sonnet-4-20250514"`
	MaxTokens int    `yaml:"max_tokens" env:"ANTHROPIC_MAX_TOKENS" env-default:"1024"`
}

// MuseumConfig configures the linked-data metadata client and cache.
type MuseumConfig struct {
	SearchURL string        `yaml:"search_url" env:"MUSEUM_SEARCH_URL" env-default:""`
	Profile   string        `yaml:"profile" env:"MUSEUM_PROFILE" env-default:"la"`
	MediaType string        `yaml:"mediatype" env:"MUSEUM_MEDIATYPE" env-default:"application/ld+json"`
	Timeout   time.Duration `yaml:"timeout" env:"MUSEUM_TIMEOUT" env-default:"30s"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env:"MUSEUM_CACHE_TTL" env-default:"12h"`

	// Objects maps artwork ids to museum object numbers. Artworks
	// without an entry converse without museum grounding.
	Objects []ObjectMapping `yaml:"objects"`
}

// ObjectMapping ties a catalog artwork to its museum object number.
type ObjectMapping struct {
	ArtworkID    string `yaml:"artwork_id"`
	ObjectNumber string `yaml:"object_number"`
}

// ChatConfig tunes the conversation state machine.
type ChatConfig struct {
	MaxQuestions  int `yaml:"max_questions" env:"MAX_QUESTIONS" env-default:"5"`
	StyleExamples int `yaml:"style_examples" env:"CHAT_STYLE_EXAMPLES" env-default:"6"`
	RetrievalTopK int `yaml:"retrieval_top_k" env:"CHAT_RETRIEVAL_TOP_K" env-default:"5"`
}

// StyleConfig locates the per-persona exemplar texts.
type StyleConfig struct {
	SnippetChars int         `yaml:"snippet_chars" env:"STYLE_SNIPPET_CHARS" env-default:"800"`
	Pools        []StylePool `yaml:"pools"`
}

// StylePool is one persona's exemplar directory.
type StylePool struct {
	Persona string `yaml:"persona"`
	Dir     string `yaml:"dir"`
}

// CorpusConfig locates the build-time data files.
type CorpusConfig struct {
	Path             string `yaml:"path" env:"CORPUS_PATH" env-default:"data/corpus.json"`
	CatalogPath      string `yaml:"catalog_path" env:"CATALOG_PATH" env-default:"data/catalog.yaml"`
	PresetEmbeddings string `yaml:"preset_embeddings" env:"PRESET_EMBEDDINGS_PATH" env-default:"data/preset_embeddings.json"`
	ChunkSize        int    `yaml:"chunk_size" env:"CORPUS_CHUNK_SIZE" env-default:"800"`
}

// Load reads configuration from the given YAML file with environment
// variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return cfg, nil
}
