package main

import (
	"flag"
	"fmt"
	"log"

	"accpipeline/transform"
	"accpipeline/workbook"
)

func main() {
	inputPath := flag.String("input", "", "Path to a workbook with a BATCHDATA_INPUT sheet")
	outputPath := flag.String("output", "", "Where to write the deduplicated workbook (defaults to overwriting -input)")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("-input is required")
	}
	if *outputPath == "" {
		*outputPath = *inputPath
	}

	enriched, err := workbook.NewReader().ReadEnrichedRecords(*inputPath, workbook.SheetBatchInput)
	if err != nil {
		log.Fatalf("failed to read records: %v", err)
	}

	records := make([]transform.TargetRecord, len(enriched))
	for i := range enriched {
		records[i] = enriched[i].TargetRecord
	}

	deduped := transform.NewDeduplicator().Deduplicate(records)
	if err := workbook.NewWriter().WriteTargetRecords(*outputPath, deduped); err != nil {
		log.Fatalf("failed to write records: %v", err)
	}

	fmt.Println("\n--- Record Deduplication ---")
	fmt.Printf("Input rows: %d\n", len(records))
	fmt.Printf("Output rows: %d\n", len(deduped))
	fmt.Printf("Removed: %d\n", len(records)-len(deduped))
	fmt.Printf("Output: %s\n", *outputPath)
}
