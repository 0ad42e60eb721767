package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/exploopio/nessus-convert/pkg/report"
)

// SQLiteSink stores each run and its findings in a SQLite database. Runs
// accumulate: writing another report adds a new run.
type SQLiteSink struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteSink opens (or creates) the database at path.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	s := &SQLiteSink{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT,
		parser TEXT,
		blocks INTEGER NOT NULL DEFAULT 0,
		findings INTEGER NOT NULL DEFAULT 0,
		structural_violations INTEGER NOT NULL DEFAULT 0,
		empty_binding_sets INTEGER NOT NULL DEFAULT 0,
		truncated_blocks INTEGER NOT NULL DEFAULT 0,
		malformed_port_specs INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		summary TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		vuln_id TEXT NOT NULL,
		title TEXT,
		synopsis TEXT,
		description TEXT,
		risk TEXT,
		cvss TEXT,
		solution TEXT,
		hostname TEXT,
		protocol TEXT,
		port TEXT,
		refs TEXT,
		severity TEXT,
		fingerprint TEXT NOT NULL,
		UNIQUE(run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS diagnostics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		vuln_id TEXT,
		anchor_text TEXT,
		label TEXT,
		message TEXT,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_findings_run_id ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_fingerprint ON findings(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_findings_vuln_id ON findings(vuln_id);
	CREATE INDEX IF NOT EXISTS idx_diagnostics_run_id ON diagnostics(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Write stores the run, its findings and its diagnostics in one transaction.
func (s *SQLiteSink) Write(ctx context.Context, r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaryJSON, err := json.Marshal(r.Summary)
	if err != nil {
		summaryJSON = []byte("{}")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := r.Metadata.Timestamp
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, source, parser, blocks, findings, structural_violations,
			empty_binding_sets, truncated_blocks, malformed_port_specs,
			duration_ms, summary, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.Metadata.ID, r.Metadata.Source, r.Metadata.Parser,
		r.Summary.Blocks, len(r.Findings), r.Summary.StructuralViolations,
		r.Summary.EmptyBindingSets, r.Summary.TruncatedBlocks, r.Summary.MalformedPortSpecs,
		r.Metadata.DurationMs, string(summaryJSON), created,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	findingStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (
			run_id, seq, vuln_id, title, synopsis, description, risk, cvss,
			solution, hostname, protocol, port, refs, severity, fingerprint
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare finding insert: %w", err)
	}
	defer findingStmt.Close()

	for i, f := range r.Findings {
		_, err := findingStmt.ExecContext(ctx,
			r.Metadata.ID, i, f.VulnID, f.Title, f.Synopsis, f.Description, f.Risk, f.CVSS,
			f.Solution, f.Hostname, f.Protocol, f.Port, f.References,
			f.Severity().String(), f.Fingerprint(),
		)
		if err != nil {
			return fmt.Errorf("insert finding %d: %w", i, err)
		}
	}

	for _, d := range r.Diagnostics {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO diagnostics (run_id, kind, vuln_id, anchor_text, label, message)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.Metadata.ID, d.Kind.String(), d.VulnID, d.AnchorText, d.Label, d.Message)
		if err != nil {
			return fmt.Errorf("insert diagnostic: %w", err)
		}
	}

	return tx.Commit()
}

// DB exposes the database handle for queries.
func (s *SQLiteSink) DB() *sql.DB {
	return s.db
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

var _ Sink = (*SQLiteSink)(nil)
