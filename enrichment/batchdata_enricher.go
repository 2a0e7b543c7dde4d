package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"accpipeline/matching"
	"accpipeline/normalization"
	"accpipeline/transform"
)

// BatchDataEnricher looks up phones and emails through the BatchData
// skip-trace API.
type BatchDataEnricher struct {
	config  *EnricherConfig
	client  *resty.Client
	limiter *rate.Limiter
	cache   *ResultCache
	logger  *slog.Logger
}

// NewBatchDataEnricher creates a skip-trace client with defaults for
// timeout, retries and the per-minute request budget.
func NewBatchDataEnricher(config *EnricherConfig) *BatchDataEnricher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRequests == 0 {
		config.MaxRequests = 60
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.batchdata.com"
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(config.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(30*time.Second).
		SetAuthToken(config.APIKey).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() == 429 || resp.StatusCode() >= 500
		})

	return &BatchDataEnricher{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.MaxRequests)), 1),
		logger:  slog.Default().With("enricher", "batchdata"),
	}
}

// SetCache attaches the shared response cache.
func (e *BatchDataEnricher) SetCache(cache *ResultCache) {
	e.cache = cache
}

// skipTraceRequest is the BatchData skip-trace request body.
type skipTraceRequest struct {
	Requests []skipTraceQuery `json:"requests"`
}

type skipTraceQuery struct {
	Name            *skipTraceName   `json:"name,omitempty"`
	PropertyAddress skipTraceAddress `json:"propertyAddress"`
}

type skipTraceName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type skipTraceAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// skipTraceResponse is the BatchData skip-trace response body.
type skipTraceResponse struct {
	Results struct {
		Persons []skipTracePerson `json:"persons"`
	} `json:"results"`
	Status struct {
		Code int    `json:"code"`
		Text string `json:"text"`
	} `json:"status"`
}

type skipTracePerson struct {
	Name struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	PhoneNumbers []struct {
		Number    string  `json:"number"`
		Score     float64 `json:"score"`
		Reachable bool    `json:"reachable"`
	} `json:"phoneNumbers"`
	Emails []struct {
		Email string `json:"email"`
	} `json:"emails"`
	Match struct {
		Confidence float64 `json:"confidence"`
	} `json:"match"`
}

// Name implements Enricher.
func (e *BatchDataEnricher) Name() string { return "batchdata" }

// Priority implements Enricher.
func (e *BatchDataEnricher) Priority() int { return e.config.Priority }

// IsAvailable implements Enricher.
func (e *BatchDataEnricher) IsAvailable() bool {
	return e.config.Enabled && e.config.APIKey != ""
}

// Supports reports whether the record carries enough of an address for a
// skip-trace query.
func (e *BatchDataEnricher) Supports(rec *transform.TargetRecord) bool {
	return rec.AddressLine1 != "" && (rec.Zip != "" || (rec.City != "" && rec.State != ""))
}

// Enrich runs one skip-trace lookup, consulting the cache first.
func (e *BatchDataEnricher) Enrich(ctx context.Context, rec *transform.TargetRecord) (*ContactResult, error) {
	cacheKey := e.cacheKey(rec)
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	query := skipTraceQuery{
		PropertyAddress: skipTraceAddress{
			Street: rec.AddressLine1,
			City:   rec.City,
			State:  rec.State,
			Zip:    rec.Zip,
		},
	}
	if rec.FirstName != "" || rec.LastName != "" {
		query.Name = &skipTraceName{First: rec.FirstName, Last: rec.LastName}
	}

	var body skipTraceResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(skipTraceRequest{Requests: []skipTraceQuery{query}}).
		SetResult(&body).
		Post("/api/v1/property/skip-trace")
	if err != nil {
		return nil, fmt.Errorf("skip-trace request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("skip-trace request: status %d: %s", resp.StatusCode(), resp.String())
	}

	result := e.toResult(&body, string(resp.Body()))
	if e.cache != nil {
		e.cache.Set(cacheKey, result)
	}

	e.logger.Debug("skip-trace done",
		"record_id", rec.RecordID,
		"phones", len(result.Phones),
		"emails", len(result.Emails))
	return result, nil
}

func (e *BatchDataEnricher) cacheKey(rec *transform.TargetRecord) string {
	return strings.ToUpper(strings.Join([]string{
		"batchdata", rec.FirstName, rec.LastName,
		rec.AddressLine1, rec.City, rec.State, rec.Zip,
	}, "|"))
}

func (e *BatchDataEnricher) toResult(body *skipTraceResponse, raw string) *ContactResult {
	result := &ContactResult{
		Source:    e.Name(),
		Timestamp: time.Now(),
		RawData:   raw,
	}

	for _, person := range body.Results.Persons {
		if person.Match.Confidence > result.Confidence {
			result.Confidence = person.Match.Confidence
		}
		for _, phone := range person.PhoneNumbers {
			number := normalization.NormalizePhoneE164(phone.Number)
			if number == "" {
				continue
			}
			result.Phones = append(result.Phones, matching.PersonPhone{
				Number:    number,
				FirstName: person.Name.First,
				LastName:  person.Name.Last,
			})
		}
		for _, email := range person.Emails {
			addr := strings.TrimSpace(strings.ToLower(email.Email))
			if addr == "" {
				continue
			}
			result.Emails = append(result.Emails, matching.PersonEmail{
				Address:   addr,
				FirstName: person.Name.First,
				LastName:  person.Name.Last,
			})
		}
	}

	result.Success = len(result.Phones) > 0 || len(result.Emails) > 0
	return result
}
