package enrichment

import (
	"context"
	"encoding/json"
	"time"

	"accpipeline/matching"
	"accpipeline/transform"
)

// ContactResult holds what one provider returned for a single target
// record: skip-trace contacts and, for assessor lookups, the mailing
// address on file with the county.
type ContactResult struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`

	Phones []matching.PersonPhone `json:"phones,omitempty"`
	Emails []matching.PersonEmail `json:"emails,omitempty"`

	// Assessor fields.
	OwnerName          string `json:"owner_name,omitempty"`
	MailingAddressLine string `json:"mailing_address,omitempty"`
	MailingCity        string `json:"mailing_city,omitempty"`
	MailingState       string `json:"mailing_state,omitempty"`
	MailingZip         string `json:"mailing_zip,omitempty"`

	// Confidence is the provider's own match confidence, 0 to 1.
	Confidence float64 `json:"confidence"`
	RawData    string  `json:"raw_data,omitempty"`
}

// Enricher is one contact-lookup provider.
type Enricher interface {
	// Enrich looks up contacts for a single target record.
	Enrich(ctx context.Context, rec *transform.TargetRecord) (*ContactResult, error)

	// Supports reports whether this provider can handle the record at
	// all, before any network call is made.
	Supports(rec *transform.TargetRecord) bool

	// Name returns the provider name used in logs and result rows.
	Name() string

	// Priority orders providers; lower runs first.
	Priority() int

	// IsAvailable reports whether the provider is configured and enabled.
	IsAvailable() bool
}

// EnricherConfig configures one provider.
type EnricherConfig struct {
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	Timeout     time.Duration `json:"timeout"`
	MaxRequests int           `json:"max_requests"` // per minute
	MaxRetries  int           `json:"max_retries"`
	Enabled     bool          `json:"enabled"`
	Priority    int           `json:"priority"`
}

// CacheConfig configures the shared response cache.
type CacheConfig struct {
	Enabled         bool          `json:"enabled"`
	TTL             time.Duration `json:"ttl"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// EnrichmentResponse aggregates the outcome across providers for one
// record.
type EnrichmentResponse struct {
	Success bool             `json:"success"`
	Results []*ContactResult `json:"results"`
	Errors  []string         `json:"errors,omitempty"`
}

// ToJSON serializes the result for checkpoint storage.
func (r *ContactResult) ToJSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSON parses a stored checkpoint back into a result.
func FromJSON(data string) (*ContactResult, error) {
	var result ContactResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
