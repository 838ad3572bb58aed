// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (SAGE_ prefix, runtime override)
//  2. Config file (~/.sage/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: model and embedder selection, Gemini API key
//   - Store: vector store path and collection name
//   - RAG: chunk size/overlap, similarity cutoff, top-K, fallback markers
//   - Web: search result limit, scraper behavior
//   - Email: SendGrid sender and API key
//
// The loaded *Config is constructed once at startup and passed into each
// component constructor; no component reads process environment state directly.
//
// Error handling uses sentinel errors so callers can match with errors.Is().
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidChunking indicates chunk size/overlap values are out of range.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrInvalidCutoff indicates the similarity cutoff is outside [0,1].
	ErrInvalidCutoff = errors.New("invalid similarity cutoff")

	// ErrInvalidTopK indicates the retrieval top-K is not positive.
	ErrInvalidTopK = errors.New("invalid top-k")

	// ErrInvalidMaxTurns indicates the agent iteration cap is not positive.
	ErrInvalidMaxTurns = errors.New("invalid max turns")

	// ErrInvalidSearchResults indicates the web search result limit is not positive.
	ErrInvalidSearchResults = errors.New("invalid search result limit")

	// ErrNoMarkerPhrases indicates the fallback trigger has no marker phrases.
	ErrNoMarkerPhrases = errors.New("no fallback marker phrases configured")
)

// Defaults mirror the corpus the index was originally built for: documentation
// pages chunked at 500 runes with 100 overlap, top-3 retrieval with a 0.5
// similarity cutoff.
const (
	DefaultModelName     = "gemini-2.5-flash"
	DefaultEmbedderModel = "gemini-embedding-001"

	DefaultCollection   = "saved_pages"
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
	DefaultCutoff       = 0.5
	DefaultTopK         = 3

	DefaultMaxTurns         = 5
	DefaultSearchMaxResults = 3
)

// DefaultMarkerPhrases are the low-confidence markers checked by the fallback
// trigger. Matching is a case-insensitive substring test: an answer that merely
// mentions one of these phrases also triggers fallback. Known limitation,
// configurable via rag.marker_phrases.
var DefaultMarkerPhrases = []string{
	"empty response",
	"context does not provide",
}

// ScraperConfig holds corpus scraper behavior.
type ScraperConfig struct {
	// Selector is the CSS selector for the content fragment to save.
	Selector string `mapstructure:"selector"`
	// Parallelism is max concurrent requests per domain.
	Parallelism int `mapstructure:"parallelism"`
	// DelayMs is the delay between requests in milliseconds.
	DelayMs int `mapstructure:"delay_ms"`
	// TimeoutMs is the per-request timeout in milliseconds.
	TimeoutMs int `mapstructure:"timeout_ms"`
}

// EmailConfig holds transactional email settings.
// SENSITIVE: APIKey must never be logged.
type EmailConfig struct {
	Sender string `mapstructure:"sender"`
	APIKey string `mapstructure:"api_key"`
}

// Config stores application configuration.
type Config struct {
	// AI model configuration
	GeminiAPIKey  string `mapstructure:"gemini_api_key"` // SENSITIVE: never logged
	ModelName     string `mapstructure:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model"`

	// Corpus and vector store locations
	DataDir    string `mapstructure:"data_dir"`   // directory of saved corpus pages
	StorePath  string `mapstructure:"store_path"` // persistent vector store location
	Collection string `mapstructure:"collection"` // vector store namespace

	// RAG configuration
	ChunkSize        int      `mapstructure:"chunk_size"`
	ChunkOverlap     int      `mapstructure:"chunk_overlap"`
	SimilarityCutoff float32  `mapstructure:"similarity_cutoff"`
	TopK             int      `mapstructure:"top_k"`
	MarkerPhrases    []string `mapstructure:"marker_phrases"`

	// Agent configuration
	MaxTurns int `mapstructure:"max_turns"`

	// Web fallback configuration
	SearchMaxResults int `mapstructure:"search_max_results"`

	// Scraper configuration
	Scraper ScraperConfig `mapstructure:"scraper"`

	// Email configuration
	Email EmailConfig `mapstructure:"email"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}
	configDir := filepath.Join(home, ".sage")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	v.SetEnvPrefix("SAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; defaults plus env carry the day.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values on the viper instance.
func setDefaults(v *viper.Viper, configDir string) {
	// Empty defaults make viper aware of env-only keys so AutomaticEnv can
	// populate them during Unmarshal.
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("email.sender", "")
	v.SetDefault("email.api_key", "")

	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)

	v.SetDefault("data_dir", "saved_pages")
	v.SetDefault("store_path", filepath.Join(configDir, "store"))
	v.SetDefault("collection", DefaultCollection)

	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("similarity_cutoff", DefaultCutoff)
	v.SetDefault("top_k", DefaultTopK)
	v.SetDefault("marker_phrases", DefaultMarkerPhrases)

	v.SetDefault("max_turns", DefaultMaxTurns)
	v.SetDefault("search_max_results", DefaultSearchMaxResults)

	v.SetDefault("scraper.selector", "div.md-content")
	v.SetDefault("scraper.parallelism", 2)
	v.SetDefault("scraper.delay_ms", 1000)
	v.SetDefault("scraper.timeout_ms", 30000)
}

// Validate checks configuration invariants. It deliberately does not require
// API keys: commands that need them (ask, agent, index) check for their
// presence themselves, so offline commands like scrape keep working.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d", ErrInvalidChunking, c.ChunkOverlap)
	}
	if c.SimilarityCutoff < 0 || c.SimilarityCutoff > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidCutoff, c.SimilarityCutoff)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTopK, c.TopK)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxTurns, c.MaxTurns)
	}
	if c.SearchMaxResults <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSearchResults, c.SearchMaxResults)
	}
	if len(c.MarkerPhrases) == 0 {
		return ErrNoMarkerPhrases
	}
	return nil
}

// RequireGeminiKey returns an error if the Gemini API key is not configured.
func (c *Config) RequireGeminiKey() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: set SAGE_GEMINI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}

// RequireEmailKey returns an error if the email provider is not configured.
func (c *Config) RequireEmailKey() error {
	if c.Email.APIKey == "" || c.Email.Sender == "" {
		return fmt.Errorf("%w: set SAGE_EMAIL_API_KEY and SAGE_EMAIL_SENDER", ErrMissingAPIKey)
	}
	return nil
}
