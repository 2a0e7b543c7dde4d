package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TrackerDB is the pipeline's local state database: agent-name frequency
// counts for the blacklist learning tracker, plus per-run checkpoints.
// Single-process use only.
type TrackerDB struct {
	conn *sql.DB
}

// NewTrackerDB opens (or creates) the tracker database and applies
// migrations. In-memory paths get a single connection so every query sees
// the migrated schema.
func NewTrackerDB(dbPath string) (*TrackerDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open tracker database: %w", err)
	}

	if isInMemoryPath(dbPath) {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	db := &TrackerDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func isInMemoryPath(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// Close closes the underlying connection.
func (db *TrackerDB) Close() error {
	return db.conn.Close()
}

type migration struct {
	name string
	stmt string
}

var migrations = []migration{
	{
		name: "001_agent_frequency",
		stmt: `CREATE TABLE IF NOT EXISTS agent_frequency (
			name TEXT PRIMARY KEY,
			sightings INTEGER NOT NULL DEFAULT 0,
			first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "002_pipeline_runs",
		stmt: `CREATE TABLE IF NOT EXISTS pipeline_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			stage TEXT NOT NULL,
			input_rows INTEGER NOT NULL,
			output_rows INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		name: "003_approved_blacklist",
		stmt: `CREATE TABLE IF NOT EXISTS approved_blacklist (
			name TEXT PRIMARY KEY,
			approved_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

func (db *TrackerDB) migrate() error {
	_, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var applied sql.NullTime
		err := db.conn.QueryRow(`SELECT applied_at FROM schema_migrations WHERE name = ?`, m.name).Scan(&applied)
		if err == nil && applied.Valid {
			continue
		}
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("check migration %s: %w", m.name, err)
		}

		if _, err := db.conn.Exec(m.stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		if _, err := db.conn.Exec(`INSERT INTO schema_migrations (name) VALUES (?)`, m.name); err != nil {
			return fmt.Errorf("mark migration %s: %w", m.name, err)
		}
	}
	return nil
}

// IncrementAgentCount adds n sightings for an agent name, inserting the
// row on first sight. Implements blacklist.Store.
func (db *TrackerDB) IncrementAgentCount(name string, n int) error {
	_, err := db.conn.Exec(`
		INSERT INTO agent_frequency (name, sightings) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			sightings = sightings + excluded.sightings,
			last_seen = CURRENT_TIMESTAMP`,
		name, n)
	if err != nil {
		return fmt.Errorf("increment agent count: %w", err)
	}
	return nil
}

// AgentCounts returns every agent name seen at least minSightings times.
// Implements blacklist.Store.
func (db *TrackerDB) AgentCounts(minSightings int) (map[string]int, error) {
	rows, err := db.conn.Query(
		`SELECT name, sightings FROM agent_frequency WHERE sightings >= ?`, minSightings)
	if err != nil {
		return nil, fmt.Errorf("query agent counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan agent count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// ApproveBlacklistName records a manually approved blacklist addition.
func (db *TrackerDB) ApproveBlacklistName(name string) error {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return fmt.Errorf("approve blacklist name: empty name")
	}
	_, err := db.conn.Exec(
		`INSERT OR IGNORE INTO approved_blacklist (name) VALUES (?)`, normalized)
	if err != nil {
		return fmt.Errorf("approve blacklist name: %w", err)
	}
	return nil
}

// ApprovedBlacklistNames returns every manually approved addition.
func (db *TrackerDB) ApprovedBlacklistNames() ([]string, error) {
	rows, err := db.conn.Query(`SELECT name FROM approved_blacklist ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query approved blacklist: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan approved blacklist name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// RecordRunCheckpoint stores one pipeline-stage checkpoint.
func (db *TrackerDB) RecordRunCheckpoint(stage string, inputRows, outputRows int, startedAt time.Time) error {
	_, err := db.conn.Exec(`
		INSERT INTO pipeline_runs (stage, input_rows, output_rows, started_at)
		VALUES (?, ?, ?, ?)`,
		stage, inputRows, outputRows, startedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record run checkpoint: %w", err)
	}
	return nil
}

// RunCheckpoint is one recorded pipeline-stage run.
type RunCheckpoint struct {
	ID         int
	Stage      string
	InputRows  int
	OutputRows int
	StartedAt  string
	FinishedAt string
}

// RecentRunCheckpoints returns the latest checkpoints, newest first.
func (db *TrackerDB) RecentRunCheckpoints(limit int) ([]RunCheckpoint, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, stage, input_rows, output_rows, started_at, COALESCE(finished_at, '')
		FROM pipeline_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []RunCheckpoint
	for rows.Next() {
		var cp RunCheckpoint
		if err := rows.Scan(&cp.ID, &cp.Stage, &cp.InputRows, &cp.OutputRows, &cp.StartedAt, &cp.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, cp)
	}
	return checkpoints, rows.Err()
}
