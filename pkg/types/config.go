package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-finder/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig holds settings for the primary paper metadata store.
type StoreConfig struct {
	// DBPath is the SQLite database file holding the papers table.
	DBPath string `json:"db_path" yaml:"db_path"`

	// QueryTimeout bounds a single query execution (default 30s).
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout"`

	// MaxRetries is the number of retry attempts for transient store
	// errors (default 3). Fatal errors are never retried.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the completion length (default 1024).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout bounds one completion call (default 20s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// CitationConfig holds settings for the citation resolver.
type CitationConfig struct {
	HTTPConfig `yaml:",inline"`

	// LocalBaseURL is the local citation index service (primary source).
	// Empty disables the primary source.
	LocalBaseURL string `json:"local_base_url" yaml:"local_base_url"`

	// PublicBaseURL is the OpenCitations index API (secondary source).
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url"`

	// AccessToken authenticates against the public API.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`

	// Workers caps concurrent per-paper lookups (default 8).
	Workers int `json:"workers" yaml:"workers"`

	// LookupTimeout bounds one source attempt for one paper (default 10s).
	LookupTimeout time.Duration `json:"lookup_timeout" yaml:"lookup_timeout"`

	// BatchDeadline caps the total wait for one resolve batch; pending
	// lookups past it resolve as unavailable (default 60s).
	BatchDeadline time.Duration `json:"batch_deadline" yaml:"batch_deadline"`

	// SampleSize is the number of citing-paper ids kept per record (default 3).
	SampleSize int `json:"sample_size" yaml:"sample_size"`
}

// QueryConfig holds settings for query understanding and analysis.
type QueryConfig struct {
	// DefaultResultCount is used when the query does not specify one.
	// Zero falls back to the package default.
	DefaultResultCount int `json:"default_result_count" yaml:"default_result_count"`

	// EnableRewrite turns on the LLM query rewriter ahead of extraction.
	EnableRewrite bool `json:"enable_rewrite" yaml:"enable_rewrite"`

	// EnableAnalysis allows the analysis generator to run when the query
	// asks for it.
	EnableAnalysis bool `json:"enable_analysis" yaml:"enable_analysis"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Store     StoreConfig    `json:"store" yaml:"store"`
	AI        AIConfig       `json:"ai" yaml:"ai"`
	Citations CitationConfig `json:"citations" yaml:"citations"`
	Query     QueryConfig    `json:"query" yaml:"query"`
}

// DefaultPipelineConfig returns a config with every timeout and cap at its
// documented default. Callers overlay loaded values on top of it.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Store: StoreConfig{
			DBPath:       "papers/index/papers.db",
			QueryTimeout: 30 * time.Second,
			MaxRetries:   3,
		},
		AI: AIConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 1024,
			Timeout:   20 * time.Second,
		},
		Citations: CitationConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "research-finder/0.1",
			},
			PublicBaseURL: "https://api.opencitations.net/index/v1",
			Workers:       8,
			LookupTimeout: 10 * time.Second,
			BatchDeadline: 60 * time.Second,
			SampleSize:    3,
		},
		Query: QueryConfig{
			DefaultResultCount: DefaultResultCount,
			EnableAnalysis:     true,
		},
	}
}
