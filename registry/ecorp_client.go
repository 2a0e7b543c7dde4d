package registry

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"accpipeline/normalization"
	"accpipeline/transform"
)

// ClientConfig configures the corporation-registry client.
type ClientConfig struct {
	BaseURL     string        `json:"base_url"`
	Timeout     time.Duration `json:"timeout"`
	MaxRequests int           `json:"max_requests"` // per minute
	MaxRetries  int           `json:"max_retries"`
}

// Client scrapes entity pages from the state corporation registry. Each
// entity detail page becomes one source record ready for the transform
// stage.
type Client struct {
	config  *ClientConfig
	client  *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// EntitySummary is one row of a registry search result.
type EntitySummary struct {
	EntityID   string
	EntityName string
	Status     string
}

// NewClient creates a registry client. The registry throttles scrapers
// aggressively, so the default budget is conservative.
func NewClient(config *ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRequests == 0 {
		config.MaxRequests = 30
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(config.MaxRetries).
		SetRetryWaitTime(3*time.Second).
		SetHeader("User-Agent", "accpipeline/1.0").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() == 429 || resp.StatusCode() >= 500
		})

	return &Client{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.MaxRequests)), 1),
		logger:  slog.Default().With("component", "registry_client"),
	}
}

// SearchEntities queries the registry by entity name and returns the
// result rows.
func (c *Client) SearchEntities(ctx context.Context, name string) ([]EntitySummary, error) {
	doc, err := c.fetchDocument(ctx, "/search", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}

	var results []EntitySummary
	doc.Find("table.search-results tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		summary := EntitySummary{
			EntityID:   strings.TrimSpace(cells.Eq(0).Text()),
			EntityName: strings.TrimSpace(cells.Eq(1).Text()),
			Status:     strings.TrimSpace(cells.Eq(2).Text()),
		}
		if summary.EntityID != "" {
			results = append(results, summary)
		}
	})

	c.logger.Debug("registry search done", "query", name, "results", len(results))
	return results, nil
}

// FetchEntity loads an entity detail page and converts it into a source
// record.
func (c *Client) FetchEntity(ctx context.Context, entityID string) (*transform.SourceRecord, error) {
	doc, err := c.fetchDocument(ctx, "/entity/"+entityID, nil)
	if err != nil {
		return nil, err
	}

	rec := &transform.SourceRecord{EntityID: entityID}

	doc.Find("table.entity-info tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())
		switch strings.ToUpper(strings.TrimSuffix(label, ":")) {
		case "ENTITY NAME":
			rec.EntityName = value
		case "ENTITY ID":
			if value != "" {
				rec.EntityID = value
			}
		case "COUNTY":
			rec.County = strings.ToUpper(value)
		case "DOMICILE STATE":
			rec.DomicileState = value
		case "AGENT ADDRESS":
			rec.AgentAddress = normalization.CleanAddressLine(value)
		}
	})

	if rec.EntityName == "" {
		return nil, fmt.Errorf("entity %s: page has no entity name", entityID)
	}

	c.fillPrincipals(rec, doc)

	c.logger.Debug("entity fetched",
		"entity_id", rec.EntityID,
		"entity_name", rec.EntityName,
		"principals", len(rec.PrincipalNames()))
	return rec, nil
}

// fillPrincipals distributes the principals table into the fixed role
// slots. Rows past a role's slot count are dropped, matching the column
// layout of the master workbook.
func (c *Client) fillPrincipals(rec *transform.SourceRecord, doc *goquery.Document) {
	counts := map[string]int{}

	doc.Find("table.principals tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		role := strings.TrimSpace(cells.Eq(0).Text())
		principal := transform.Principal{
			Name: strings.TrimSpace(cells.Eq(1).Text()),
		}
		if cells.Length() > 2 {
			principal.Address = normalization.CleanAddressLine(cells.Eq(2).Text())
		}
		if principal.Name == "" {
			return
		}

		n := counts[role]
		switch role {
		case transform.RoleStatutoryAgent:
			if n < len(rec.StatutoryAgents) {
				rec.StatutoryAgents[n] = principal
			}
		case transform.RoleManager:
			if n < len(rec.Managers) {
				rec.Managers[n] = principal
			}
		case transform.RoleMember:
			if n < len(rec.Members) {
				rec.Members[n] = principal
			}
		case transform.RoleManagerMember:
			if n < len(rec.ManagerMembers) {
				rec.ManagerMembers[n] = principal
			}
		case transform.RoleIndividual:
			if n < len(rec.Individuals) {
				rec.Individuals[n] = principal
			}
		default:
			c.logger.Warn("unknown principal role", "role", role, "entity_id", rec.EntityID)
			return
		}
		counts[role] = n + 1
	})
}

// FetchAll fetches every entity ID in order, skipping pages that fail
// after retries so one bad entity does not abort a long crawl.
func (c *Client) FetchAll(ctx context.Context, entityIDs []string) ([]transform.SourceRecord, error) {
	records := make([]transform.SourceRecord, 0, len(entityIDs))
	var failed int

	for _, id := range entityIDs {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		rec, err := c.FetchEntity(ctx, id)
		if err != nil {
			c.logger.Warn("entity fetch failed", "entity_id", id, "error", err)
			failed++
			continue
		}
		records = append(records, *rec)
	}

	c.logger.Info("registry crawl done", "fetched", len(records), "failed", failed)
	return records, nil
}

func (c *Client) fetchDocument(ctx context.Context, path string, params map[string]string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req := c.client.R().SetContext(ctx)
	if params != nil {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: status %d", path, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}
