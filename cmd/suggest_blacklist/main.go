package main

import (
	"flag"
	"fmt"
	"log"

	"accpipeline/blacklist"
	"accpipeline/database"
)

func main() {
	dbPath := flag.String("db", "tracker.db", "Path to the tracker database")
	threshold := flag.Int("threshold", 3, "Minimum sightings before a name is suggested")
	approve := flag.String("approve", "", "Approve this name instead of listing suggestions")
	flag.Parse()

	db, err := database.NewTrackerDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open tracker database: %v", err)
	}
	defer db.Close()

	if *approve != "" {
		if err := db.ApproveBlacklistName(*approve); err != nil {
			log.Fatalf("failed to approve name: %v", err)
		}
		fmt.Printf("Approved: %s\n", *approve)
		return
	}

	approved, err := db.ApprovedBlacklistNames()
	if err != nil {
		log.Fatalf("failed to load approved names: %v", err)
	}

	tracker := blacklist.NewTracker(db)
	suggestions, err := tracker.Suggestions(*threshold, blacklist.NewSet(approved))
	if err != nil {
		log.Fatalf("failed to load suggestions: %v", err)
	}

	fmt.Println("\n--- Blacklist Suggestions ---")
	if len(suggestions) == 0 {
		fmt.Println("No candidates above the threshold.")
		return
	}
	for _, s := range suggestions {
		fmt.Printf("%5d  %-50s %s\n", s.Sightings, s.Name, s.Reason)
	}
	fmt.Printf("\n%d candidate(s). Approve with -approve \"NAME\".\n", len(suggestions))
}
