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
	outputPath := flag.String("output", "batchdata_input.xlsx", "Where to write the skip-trace input workbook")
	csvPath := flag.String("csv", "", "Additionally write the rows as CSV")
	dbPath := flag.String("db", "tracker.db", "Path to the tracker database (empty to skip tracking)")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("-input is required")
	}

	opts := pipeline.Options{}
	if *dbPath != "" {
		db, err := database.NewTrackerDB(*dbPath)
		if err != nil {
			log.Fatalf("failed to open tracker database: %v", err)
		}
		defer db.Close()
		opts.DB = db
	}

	runner := pipeline.NewRunner(opts)
	result, err := runner.PrepareInput(context.Background(), pipeline.PrepareRequest{
		InputPath:  *inputPath,
		OutputPath: *outputPath,
		CSVPath:    *csvPath,
	})
	if err != nil {
		log.Fatalf("failed to prepare input: %v", err)
	}

	fmt.Println("\n--- Skip-Trace Input Preparation ---")
	fmt.Printf("Source entities: %d\n", result.SourceRows)
	fmt.Printf("Transformed rows: %d\n", result.TransformedRows)
	fmt.Printf("After blacklist: %d\n", result.FilteredRows)
	fmt.Printf("After dedupe: %d\n", result.FinalRows)
	fmt.Printf("Output: %s\n", *outputPath)
}
