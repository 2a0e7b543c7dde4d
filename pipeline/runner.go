package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"accpipeline/blacklist"
	"accpipeline/database"
	"accpipeline/enrichment"
	"accpipeline/matching"
	"accpipeline/transform"
	"accpipeline/workbook"
)

// Options configures a pipeline runner. DB and Enrichers are optional:
// without a DB the runner skips checkpoints and agent-frequency
// tracking, without enrichers the enrich stage passes records through
// with empty contact lists.
type Options struct {
	MatchThreshold              float64
	BlacklistFrequencyThreshold int

	DB        *database.TrackerDB
	Enrichers *enrichment.EnricherFactory
}

// Runner drives the full workbook pipeline: load, transform, filter,
// dedupe, enrich, match, export.
type Runner struct {
	opts Options

	reader      *workbook.Reader
	writer      *workbook.Writer
	transformer *transform.EntityTransformer
	dedup       *transform.Deduplicator
	matcher     *matching.NameMatcher
	logger      *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(opts Options) *Runner {
	if opts.BlacklistFrequencyThreshold <= 0 {
		opts.BlacklistFrequencyThreshold = 3
	}
	return &Runner{
		opts:        opts,
		reader:      workbook.NewReader(),
		writer:      workbook.NewWriter(),
		transformer: transform.NewEntityTransformer(),
		dedup:       transform.NewDeduplicator(),
		matcher:     matching.NewNameMatcher(opts.MatchThreshold),
		logger:      slog.Default().With("component", "pipeline"),
	}
}

// PrepareRequest names the input workbook and where the skip-trace
// input rows go.
type PrepareRequest struct {
	InputPath  string
	OutputPath string

	// CSVPath additionally writes the rows as CSV when set.
	CSVPath string
}

// PrepareResult reports row counts per stage.
type PrepareResult struct {
	SourceRows      int `json:"source_rows"`
	TransformedRows int `json:"transformed_rows"`
	FilteredRows    int `json:"filtered_rows"`
	FinalRows       int `json:"final_rows"`
}

// PrepareInput runs the front half of the pipeline: registry rows in,
// deduplicated skip-trace input rows out.
func (r *Runner) PrepareInput(ctx context.Context, req PrepareRequest) (*PrepareResult, error) {
	started := time.Now()

	sources, err := r.reader.ReadSourceRecords(req.InputPath, "")
	if err != nil {
		return nil, fmt.Errorf("load source records: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := r.loadBlacklist(req.InputPath)
	if err != nil {
		return nil, err
	}

	targets := r.transformer.TransformAll(sources)
	filtered := blacklist.ApplyFilter(targets, set)
	final := r.dedup.Deduplicate(filtered)

	r.trackAgents(sources)

	if err := r.writer.WriteTargetRecords(req.OutputPath, final); err != nil {
		return nil, fmt.Errorf("write target records: %w", err)
	}
	if req.CSVPath != "" {
		if err := r.writer.WriteTargetRecordsCSV(req.CSVPath, final); err != nil {
			return nil, fmt.Errorf("write target csv: %w", err)
		}
	}

	result := &PrepareResult{
		SourceRows:      len(sources),
		TransformedRows: len(targets),
		FilteredRows:    len(filtered),
		FinalRows:       len(final),
	}

	r.checkpoint("prepare_input", result.SourceRows, result.FinalRows, started)
	r.logger.Info("input prepared",
		"source_rows", result.SourceRows,
		"transformed", result.TransformedRows,
		"after_blacklist", result.FilteredRows,
		"after_dedupe", result.FinalRows)
	return result, nil
}

// Enrich runs every record through the configured providers. Records no
// provider supports pass through with empty contact lists so the match
// stage still sees them.
func (r *Runner) Enrich(ctx context.Context, records []transform.TargetRecord) ([]matching.EnrichedRecord, error) {
	started := time.Now()
	enriched := make([]matching.EnrichedRecord, 0, len(records))
	var hits int

	for i := range records {
		if err := ctx.Err(); err != nil {
			return enriched, err
		}

		rec := matching.EnrichedRecord{TargetRecord: records[i]}
		if r.opts.Enrichers != nil {
			response := r.opts.Enrichers.Enrich(ctx, &records[i])
			if best := r.opts.Enrichers.BestResult(response.Results); best != nil {
				rec.Phones = best.Phones
				rec.Emails = best.Emails
				hits++
			}
		}
		enriched = append(enriched, rec)
	}

	r.checkpoint("enrich", len(records), hits, started)
	r.logger.Info("enrichment done", "records", len(records), "with_contacts", hits)
	return enriched, nil
}

// ReportRequest names the original input workbook, the skip-trace
// results workbook and the report destination.
type ReportRequest struct {
	InputPath   string
	ResultsPath string
	ReportPath  string
}

// ReportResult reports match-label counts.
type ReportResult struct {
	Records      int `json:"records"`
	FullMatches  int `json:"full_matches"`
	ExtraMatches int `json:"extra_matches"`
	JoinMisses   int `json:"join_misses"`
}

// BuildMatchReport runs the back half of the pipeline: skip-trace
// results in, scored match report out.
func (r *Runner) BuildMatchReport(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	started := time.Now()

	sources, err := r.reader.ReadSourceRecords(req.InputPath, "")
	if err != nil {
		return nil, fmt.Errorf("load source records: %w", err)
	}
	enriched, err := r.reader.ReadEnrichedRecords(req.ResultsPath, "")
	if err != nil {
		return nil, fmt.Errorf("load skip-trace results: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := matching.BuildSourceNameIndex(sources)
	matching.ApplyNameMatching(r.matcherFor(req.InputPath), enriched, index)

	if err := r.writer.WriteMatchReport(req.ReportPath, enriched); err != nil {
		return nil, fmt.Errorf("write match report: %w", err)
	}

	result := &ReportResult{Records: len(enriched)}
	for i := range enriched {
		switch enriched[i].Match.Percentage {
		case matching.LabelFullMatch:
			result.FullMatches++
		case matching.LabelExtraMatches:
			result.ExtraMatches++
		case matching.LabelNotAvailable:
			result.JoinMisses++
		}
	}

	r.checkpoint("match_report", len(enriched), result.FullMatches+result.ExtraMatches, started)
	r.logger.Info("match report written",
		"records", result.Records,
		"full", result.FullMatches,
		"extra", result.ExtraMatches,
		"misses", result.JoinMisses)
	return result, nil
}

// loadBlacklist merges the workbook's blacklist sheet with names
// approved in the tracker database. A workbook without the sheet is
// fine; filtering then runs on approved names alone.
func (r *Runner) loadBlacklist(path string) (blacklist.Set, error) {
	names, err := r.reader.ReadBlacklistNames(path, "")
	if err != nil {
		r.logger.Debug("no blacklist sheet", "path", path, "error", err)
		names = nil
	}

	if r.opts.DB != nil {
		approved, err := r.opts.DB.ApprovedBlacklistNames()
		if err != nil {
			return nil, fmt.Errorf("load approved blacklist: %w", err)
		}
		names = append(names, approved...)
	}

	return blacklist.NewSet(names), nil
}

// matcherFor resolves the matcher for one request. A match_threshold
// entry on the workbook's CONFIG sheet applies to that workbook only;
// the runner itself is shared across requests and never mutated here.
// Unknown keys and bad values fall back to the configured matcher.
func (r *Runner) matcherFor(path string) *matching.NameMatcher {
	settings, err := r.reader.ReadConfigSheet(path, "")
	if err != nil {
		return r.matcher
	}

	if raw, ok := settings["match_threshold"]; ok {
		if threshold, err := strconv.ParseFloat(raw, 64); err == nil && threshold > 0 {
			r.logger.Info("match threshold overridden", "path", path, "threshold", threshold)
			return matching.NewNameMatcher(threshold)
		}
	}
	return r.matcher
}

// trackAgents records statutory-agent sightings for blacklist
// suggestions.
func (r *Runner) trackAgents(sources []transform.SourceRecord) {
	if r.opts.DB == nil {
		return
	}

	tracker := blacklist.NewTracker(r.opts.DB)
	for i := range sources {
		for _, agent := range sources[i].StatutoryAgents {
			if agent.Name != "" {
				tracker.Record(agent.Name)
			}
		}
	}
	if err := tracker.Flush(); err != nil {
		r.logger.Warn("agent tracking flush failed", "error", err)
	}
}

// Suggestions lists frequently seen agents that are not yet
// blacklisted.
func (r *Runner) Suggestions(current blacklist.Set) ([]blacklist.Suggestion, error) {
	if r.opts.DB == nil {
		return nil, nil
	}
	tracker := blacklist.NewTracker(r.opts.DB)
	return tracker.Suggestions(r.opts.BlacklistFrequencyThreshold, current)
}

func (r *Runner) checkpoint(stage string, in, out int, started time.Time) {
	if r.opts.DB == nil {
		return
	}
	if err := r.opts.DB.RecordRunCheckpoint(stage, in, out, started); err != nil {
		r.logger.Warn("checkpoint write failed", "stage", stage, "error", err)
	}
}
