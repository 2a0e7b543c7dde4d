package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"accpipeline/database"
	"accpipeline/pipeline"
)

func main() {
	inputPath := flag.String("input", "", "Path to the master workbook (INPUT_MASTER sheet)")
	resultsPath := flag.String("results", "", "Path to the skip-trace results workbook (BATCHDATA_RESULTS sheet)")
	reportPath := flag.String("report", "match_report.xlsx", "Where to write the match report")
	threshold := flag.Float64("threshold", 85, "Fuzzy match threshold, 0-100")
	dbPath := flag.String("db", "", "Path to the tracker database (empty to skip checkpoints)")
	flag.Parse()

	if *inputPath == "" || *resultsPath == "" {
		log.Fatal("-input and -results are required")
	}

	opts := pipeline.Options{MatchThreshold: *threshold}
	if *dbPath != "" {
		db, err := database.NewTrackerDB(*dbPath)
		if err != nil {
			log.Fatalf("failed to open tracker database: %v", err)
		}
		defer db.Close()
		opts.DB = db
	}

	runner := pipeline.NewRunner(opts)
	result, err := runner.BuildMatchReport(context.Background(), pipeline.ReportRequest{
		InputPath:   *inputPath,
		ResultsPath: *resultsPath,
		ReportPath:  *reportPath,
	})
	if err != nil {
		log.Fatalf("failed to build match report: %v", err)
	}

	fmt.Println("\n--- Name Match Report ---")
	fmt.Printf("Records scored: %d\n", result.Records)
	fmt.Printf("Full matches (100): %d\n", result.FullMatches)
	fmt.Printf("Extra matches (100+): %d\n", result.ExtraMatches)
	fmt.Printf("Join misses (N/A): %d\n", result.JoinMisses)
	fmt.Printf("Report: %s\n", *reportPath)
}
