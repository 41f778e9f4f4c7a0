package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-query/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EntrezConfig holds settings for the NCBI E-utilities search client.
type EntrezConfig struct {
	HTTPConfig `yaml:",inline"`

	// Tool identifies the calling project. NCBI asks every client to send it.
	Tool string `json:"tool" yaml:"tool"`

	// Email is a contact address NCBI can use when a client misbehaves.
	Email string `json:"email" yaml:"email"`

	// APIKey raises the NCBI rate limit from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize is the number of records requested per efetch call (default 250).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// RequestDelay is the pause between consecutive E-utilities calls.
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MaxRetries bounds retries on HTTP 429 (0 uses the helper's default).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ExportFormat selects the output file format.
type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
	FormatCSL  ExportFormat = "csl"
)

// ExportConfig holds settings for writing the result table.
type ExportConfig struct {
	// Format selects the writer. Empty means infer from the output path.
	Format ExportFormat `json:"format" yaml:"format"`

	// SheetName is the worksheet name for spreadsheet output (default "PMquery").
	SheetName string `json:"sheet_name" yaml:"sheet_name"`
}
