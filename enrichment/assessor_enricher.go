package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"accpipeline/normalization"
	"accpipeline/transform"
)

// AssessorEnricher queries a county assessor's ArcGIS parcel layer for
// the owner name and mailing address on file. It returns no phones or
// emails; its results backfill addresses for records whose registry
// address is a registered-agent office.
type AssessorEnricher struct {
	config  *EnricherConfig
	client  *resty.Client
	limiter *rate.Limiter
	cache   *ResultCache
	logger  *slog.Logger

	// counties lists the county names the configured layer covers,
	// uppercase.
	counties map[string]struct{}
}

// NewAssessorEnricher creates an assessor client for the given counties.
func NewAssessorEnricher(config *EnricherConfig, counties ...string) *AssessorEnricher {
	if config.Timeout == 0 {
		config.Timeout = 20 * time.Second
	}
	if config.MaxRequests == 0 {
		config.MaxRequests = 120
	}
	if len(counties) == 0 {
		counties = []string{"MARICOPA"}
	}

	covered := make(map[string]struct{}, len(counties))
	for _, county := range counties {
		covered[strings.ToUpper(strings.TrimSpace(county))] = struct{}{}
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(config.MaxRetries).
		SetRetryWaitTime(time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		})

	return &AssessorEnricher{
		config:   config,
		client:   client,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.MaxRequests)), 1),
		logger:   slog.Default().With("enricher", "assessor"),
		counties: covered,
	}
}

// SetCache attaches the shared response cache.
func (e *AssessorEnricher) SetCache(cache *ResultCache) {
	e.cache = cache
}

// parcelResponse is the ArcGIS feature-query response, reduced to the
// attributes the pipeline reads.
type parcelResponse struct {
	Features []struct {
		Attributes struct {
			OwnerName   string `json:"OWNER_NAME"`
			MailAddress string `json:"MAIL_ADDRESS"`
			MailCity    string `json:"MAIL_CITY"`
			MailState   string `json:"MAIL_STATE"`
			MailZip     string `json:"MAIL_ZIP"`
		} `json:"attributes"`
	} `json:"features"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Name implements Enricher.
func (e *AssessorEnricher) Name() string { return "assessor" }

// Priority implements Enricher.
func (e *AssessorEnricher) Priority() int { return e.config.Priority }

// IsAvailable implements Enricher.
func (e *AssessorEnricher) IsAvailable() bool {
	return e.config.Enabled && e.config.BaseURL != ""
}

// Supports reports whether the record's county is covered by the
// configured parcel layer.
func (e *AssessorEnricher) Supports(rec *transform.TargetRecord) bool {
	if rec.AddressLine1 == "" {
		return false
	}
	_, ok := e.counties[strings.ToUpper(strings.TrimSpace(rec.County))]
	return ok
}

// Enrich queries the parcel layer by situs address.
func (e *AssessorEnricher) Enrich(ctx context.Context, rec *transform.TargetRecord) (*ContactResult, error) {
	cacheKey := strings.ToUpper("assessor|" + rec.AddressLine1 + "|" + rec.Zip)
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			return cached, nil
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	situs := strings.ToUpper(normalization.CleanAddressLine(rec.AddressLine1))
	where := fmt.Sprintf("UPPER(SITUS_ADDRESS) = '%s'", strings.ReplaceAll(situs, "'", "''"))

	var body parcelResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"where":     where,
			"outFields": "OWNER_NAME,MAIL_ADDRESS,MAIL_CITY,MAIL_STATE,MAIL_ZIP",
			"f":         "json",
		}).
		SetResult(&body).
		Get("/query")
	if err != nil {
		return nil, fmt.Errorf("parcel query: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("parcel query: status %d", resp.StatusCode())
	}
	if body.Error != nil {
		return nil, fmt.Errorf("parcel query: %s (code %d)", body.Error.Message, body.Error.Code)
	}

	result := &ContactResult{
		Source:    e.Name(),
		Timestamp: time.Now(),
		RawData:   string(resp.Body()),
	}
	if len(body.Features) > 0 {
		attrs := body.Features[0].Attributes
		result.Success = attrs.OwnerName != "" || attrs.MailAddress != ""
		result.OwnerName = strings.TrimSpace(attrs.OwnerName)
		result.MailingAddressLine = normalization.CleanAddressLine(attrs.MailAddress)
		result.MailingCity = strings.TrimSpace(attrs.MailCity)
		result.MailingState = normalization.NormalizeState(attrs.MailState, "")
		result.MailingZip = normalization.NormalizeZipCode(attrs.MailZip)
		if result.Success {
			result.Confidence = 0.9
		}
	}

	if e.cache != nil {
		e.cache.Set(cacheKey, result)
	}

	e.logger.Debug("parcel lookup done",
		"record_id", rec.RecordID,
		"matched", result.Success)
	return result, nil
}
