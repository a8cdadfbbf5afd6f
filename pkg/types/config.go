package types

import "time"

// HTTPConfig holds shared HTTP settings for talking to the backend.
type HTTPConfig struct {
	// BaseURL is the API root, e.g. "http://localhost:8000/api".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Token is the bearer token sent with authenticated requests.
	Token string `json:"-" yaml:"-"`
}

// BrowseConfig holds settings for local and server-backed browsing.
type BrowseConfig struct {
	// PageSize is the grid page size for local filtering (default 12).
	PageSize int `json:"page_size" yaml:"page_size"`

	// RemotePageSize is the page size the backend paginates with (default 10).
	RemotePageSize int `json:"remote_page_size" yaml:"remote_page_size"`

	// Debounce is the quiet period before free-text search fires (default 300ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// SavedBackend selects where saved-paper bookmarks are stored.
type SavedBackend string

const (
	SavedSQLite SavedBackend = "sqlite"
	SavedFile   SavedBackend = "file"
)

// SavedConfig holds settings for saved-paper bookmarks.
type SavedConfig struct {
	// Backend is sqlite or file.
	Backend SavedBackend `json:"backend" yaml:"backend"`

	// Dir is the directory holding the bookmark database or files.
	Dir string `json:"dir" yaml:"dir"`

	// UserID keys bookmarks for a signed-in user. Empty means guest.
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format"`
}

// Config groups all harvest settings.
type Config struct {
	API     HTTPConfig    `json:"api" yaml:"api"`
	Browse  BrowseConfig  `json:"browse" yaml:"browse"`
	Saved   SavedConfig   `json:"saved" yaml:"saved"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}
