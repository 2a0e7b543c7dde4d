package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"accpipeline/transform"
)

// EnricherFactory assembles providers from configuration and runs them
// in priority order.
type EnricherFactory struct {
	enrichers []Enricher
	cache     *ResultCache
	logger    *slog.Logger
}

// NewEnricherFactory builds the configured providers. Known config keys
// are "batchdata" and "assessor"; unknown keys are ignored.
func NewEnricherFactory(configs map[string]*EnricherConfig) *EnricherFactory {
	factory := &EnricherFactory{
		logger: slog.Default().With("component", "enricher_factory"),
	}

	factory.cache = NewResultCache(&CacheConfig{
		Enabled:         true,
		TTL:             24 * time.Hour,
		CleanupInterval: time.Hour,
	})

	if config, exists := configs["batchdata"]; exists && config.Enabled {
		batchdata := NewBatchDataEnricher(config)
		batchdata.SetCache(factory.cache)
		factory.enrichers = append(factory.enrichers, batchdata)
	}

	if config, exists := configs["assessor"]; exists && config.Enabled {
		assessor := NewAssessorEnricher(config)
		assessor.SetCache(factory.cache)
		factory.enrichers = append(factory.enrichers, assessor)
	}

	factory.sortByPriority()
	return factory
}

// Register adds a provider directly, for tests and custom setups.
func (f *EnricherFactory) Register(enricher Enricher) {
	f.enrichers = append(f.enrichers, enricher)
	f.sortByPriority()
}

func (f *EnricherFactory) sortByPriority() {
	sort.SliceStable(f.enrichers, func(i, j int) bool {
		return f.enrichers[i].Priority() < f.enrichers[j].Priority()
	})
}

// Enrichers returns the providers that can handle the record right now.
func (f *EnricherFactory) Enrichers(rec *transform.TargetRecord) []Enricher {
	var supported []Enricher
	for _, enricher := range f.enrichers {
		if enricher.IsAvailable() && enricher.Supports(rec) {
			supported = append(supported, enricher)
		}
	}
	return supported
}

// Enrich asks each supporting provider in turn and stops once one
// answers with high confidence.
func (f *EnricherFactory) Enrich(ctx context.Context, rec *transform.TargetRecord) *EnrichmentResponse {
	response := &EnrichmentResponse{
		Results: make([]*ContactResult, 0),
	}

	enrichers := f.Enrichers(rec)
	if len(enrichers) == 0 {
		response.Errors = append(response.Errors, "no available provider for record")
		return response
	}

	for _, enricher := range enrichers {
		result, err := enricher.Enrich(ctx, rec)
		if err != nil {
			f.logger.Warn("provider failed",
				"provider", enricher.Name(),
				"record_id", rec.RecordID,
				"error", err)
			response.Errors = append(response.Errors,
				fmt.Sprintf("%s: %v", enricher.Name(), err))
			continue
		}

		response.Results = append(response.Results, result)
		if result.Success && result.Confidence >= 0.8 {
			break
		}
	}

	for _, result := range response.Results {
		if result.Success {
			response.Success = true
			break
		}
	}
	return response
}

// BestResult picks the successful result with the highest confidence.
func (f *EnricherFactory) BestResult(results []*ContactResult) *ContactResult {
	var best *ContactResult
	for _, result := range results {
		if !result.Success {
			continue
		}
		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
	}
	return best
}

// CacheStats exposes the shared cache statistics.
func (f *EnricherFactory) CacheStats() CacheStats {
	return f.cache.Stats()
}

// Close releases background resources, currently the cache's eviction
// goroutine.
func (f *EnricherFactory) Close() {
	f.cache.Close()
}
