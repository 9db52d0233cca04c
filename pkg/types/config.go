package types

import "time"

// Backend identifies a model provider.
type Backend string

const (
	BackendHF     Backend = "hf"
	BackendOllama Backend = "ollama"
	BackendOpenAI Backend = "openai"
	BackendGemini Backend = "gemini"
	BackendClaude Backend = "claude"
)

// LogConfig selects the slog handler and level.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// HTTPConfig holds shared HTTP settings used by backends that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds retries on 429 and 503 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ModelConfig selects the backend and model for one model role.
type ModelConfig struct {
	Backend Backend `json:"backend" yaml:"backend" mapstructure:"backend"`
	Model   string  `json:"model" yaml:"model" mapstructure:"model"`
}

// CacheConfig controls the embedding cache.
type CacheConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Size is the number of vectors kept in memory (default 4096).
	Size int `json:"size" yaml:"size" mapstructure:"size"`

	// Path is an optional SQLite file for vectors that outlive the process.
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
}

// EmbeddingConfig configures the embedding role.
type EmbeddingConfig struct {
	ModelConfig `yaml:",inline" mapstructure:",squash"`

	Cache CacheConfig `json:"cache" yaml:"cache" mapstructure:"cache"`
}

// SummarizationConfig configures the summarization role.
type SummarizationConfig struct {
	ModelConfig `yaml:",inline" mapstructure:",squash"`

	// MaxWords bounds the returned summary (default 150).
	MaxWords int `json:"max_words" yaml:"max_words" mapstructure:"max_words"`
}

// EndpointConfig holds the location and credentials of one provider.
type EndpointConfig struct {
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// PDFBackend identifies the PDF text extraction tool.
type PDFBackend string

const (
	PDFMarkitdown PDFBackend = "markitdown"
	PDFService    PDFBackend = "service"
)

// ExtractionConfig configures the text extractor.
type ExtractionConfig struct {
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend" mapstructure:"pdf_backend"`

	// ServiceURL is the base URL of the parse service when PDFBackend is "service".
	ServiceURL string `json:"service_url,omitempty" yaml:"service_url,omitempty" mapstructure:"service_url"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr        string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	SessionTTL  time.Duration `json:"session_ttl" yaml:"session_ttl" mapstructure:"session_ttl"`
	MaxSessions int           `json:"max_sessions" yaml:"max_sessions" mapstructure:"max_sessions"`

	// MaxUploadBytes bounds a single document upload (default 32 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// Config is the full application configuration.
type Config struct {
	Log           LogConfig           `json:"log" yaml:"log" mapstructure:"log"`
	HTTP          HTTPConfig          `json:"http" yaml:"http" mapstructure:"http"`
	QA            ModelConfig         `json:"qa" yaml:"qa" mapstructure:"qa"`
	Embedding     EmbeddingConfig     `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Generation    ModelConfig         `json:"generation" yaml:"generation" mapstructure:"generation"`
	Summarization SummarizationConfig `json:"summarization" yaml:"summarization" mapstructure:"summarization"`
	HF            EndpointConfig      `json:"hf" yaml:"hf" mapstructure:"hf"`
	Ollama        EndpointConfig      `json:"ollama" yaml:"ollama" mapstructure:"ollama"`
	OpenAI        EndpointConfig      `json:"openai" yaml:"openai" mapstructure:"openai"`
	Gemini        EndpointConfig      `json:"gemini" yaml:"gemini" mapstructure:"gemini"`
	Claude        EndpointConfig      `json:"claude" yaml:"claude" mapstructure:"claude"`
	Extraction    ExtractionConfig    `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Server        ServerConfig        `json:"server" yaml:"server" mapstructure:"server"`
}

// Redacted returns a copy of c with API keys masked, suitable for printing.
func (c Config) Redacted() Config {
	mask := func(e *EndpointConfig) {
		if e.APIKey != "" {
			e.APIKey = "****"
		}
	}
	mask(&c.HF)
	mask(&c.Ollama)
	mask(&c.OpenAI)
	mask(&c.Gemini)
	mask(&c.Claude)
	return c
}
