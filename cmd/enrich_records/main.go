package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"accpipeline/database"
	"accpipeline/enrichment"
	"accpipeline/internal/config"
	"accpipeline/pipeline"
	"accpipeline/transform"
	"accpipeline/workbook"
)

func main() {
	inputPath := flag.String("input", "", "Path to the skip-trace input workbook (BATCHDATA_INPUT sheet)")
	outputPath := flag.String("output", "batchdata_results.xlsx", "Where to write the results workbook")
	configPath := flag.String("config", "", "Path to a JSON config file (environment-only when empty)")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("-input is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Enrichment == nil || !cfg.Enrichment.Enabled {
		log.Fatal("enrichment is disabled in the config")
	}

	db, err := database.NewTrackerDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open tracker database: %v", err)
	}
	defer db.Close()

	enriched, err := workbook.NewReader().ReadEnrichedRecords(*inputPath, workbook.SheetBatchInput)
	if err != nil {
		log.Fatalf("failed to read input records: %v", err)
	}
	records := make([]transform.TargetRecord, len(enriched))
	for i := range enriched {
		records[i] = enriched[i].TargetRecord
	}

	enrichers := enrichment.NewEnricherFactory(cfg.Enrichment.Services)
	defer enrichers.Close()

	runner := pipeline.NewRunner(pipeline.Options{
		DB:        db,
		Enrichers: enrichers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := runner.Enrich(ctx, records)
	if err != nil {
		log.Fatalf("enrichment aborted: %v", err)
	}
	if err := workbook.NewWriter().WriteEnrichedRecords(*outputPath, results); err != nil {
		log.Fatalf("failed to write results: %v", err)
	}

	var withContacts int
	for i := range results {
		if len(results[i].Phones) > 0 || len(results[i].Emails) > 0 {
			withContacts++
		}
	}

	fmt.Println("\n--- Contact Enrichment ---")
	fmt.Printf("Records processed: %d\n", len(results))
	fmt.Printf("With contacts: %d\n", withContacts)
	fmt.Printf("Output: %s\n", *outputPath)
}
