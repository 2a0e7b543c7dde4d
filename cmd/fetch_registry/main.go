package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"accpipeline/internal/config"
	"accpipeline/registry"
)

// Reads entity IDs (one per line) and crawls their registry pages,
// printing a summary per entity. Useful for spot-checking the scraper
// against live pages before a full run.
func main() {
	idsPath := flag.String("ids", "", "File with one entity ID per line (stdin when empty)")
	configPath := flag.String("config", "", "Path to a JSON config file (environment-only when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Registry == nil || cfg.Registry.BaseURL == "" {
		log.Fatal("registry base URL is not configured (set REGISTRY_BASE_URL)")
	}

	in := os.Stdin
	if *idsPath != "" {
		f, err := os.Open(*idsPath)
		if err != nil {
			log.Fatalf("failed to open ids file: %v", err)
		}
		defer f.Close()
		in = f
	}

	var ids []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if id := strings.TrimSpace(scanner.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("failed to read ids: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := registry.NewClient(cfg.Registry)
	records, err := client.FetchAll(ctx, ids)
	if err != nil {
		log.Fatalf("crawl aborted: %v", err)
	}

	fmt.Println("\n--- Registry Crawl ---")
	for i := range records {
		rec := &records[i]
		fmt.Printf("%-12s %-50s principals=%d county=%s\n",
			rec.EntityID, rec.EntityName, len(rec.PrincipalNames()), rec.County)
	}
	fmt.Printf("\nFetched %d of %d entities.\n", len(records), len(ids))
}
