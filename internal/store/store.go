// Package store persists completed audit runs to SQLite so past corpus runs
// can be listed and re-read without recomputing.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/HarshaB45/AIDocumentIntelligence/internal/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	completed_at TEXT NOT NULL,
	doc_count    INTEGER NOT NULL,
	rules        TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS run_documents (
	run_id           TEXT NOT NULL,
	doc_id           TEXT NOT NULL,
	party_key        TEXT NOT NULL DEFAULT '',
	governing_law    TEXT NOT NULL DEFAULT '',
	effective_date   TEXT NOT NULL DEFAULT '',
	payment_net_days INTEGER,
	payment_amount   REAL,
	risk_score       REAL NOT NULL,
	risk_bucket      TEXT NOT NULL,
	issues_count     INTEGER NOT NULL,
	issue_kinds      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, doc_id)
);

CREATE TABLE IF NOT EXISTS run_findings (
	run_id  TEXT NOT NULL,
	seq     INTEGER NOT NULL,
	doc_id  TEXT NOT NULL,
	kind    TEXT NOT NULL,
	field   TEXT NOT NULL DEFAULT '',
	detail  TEXT NOT NULL DEFAULT '{}',
	quote   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS run_kpis (
	run_id TEXT PRIMARY KEY,
	kpis   TEXT NOT NULL DEFAULT '{}'
);
`

// Store is a SQLite-backed archive of audit runs.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the run store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RunSummary is one row of the runs listing.
type RunSummary struct {
	RunID       string    `db:"run_id"`
	StartedAt   time.Time `db:"-"`
	CompletedAt time.Time `db:"-"`
	DocCount    int       `db:"doc_count"`
}

// SaveRun archives a completed run and returns its generated id. The whole
// run is written in one transaction: a partially stored run is never visible.
func (s *Store) SaveRun(result *audit.RunResult, rules audit.Rules, started, completed time.Time) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, started_at, completed_at, doc_count, rules) VALUES (?, ?, ?, ?, ?)`,
		runID, timeToString(started), timeToString(completed), len(result.Table), marshalJSON(rules),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, row := range result.Table {
		if _, err := tx.Exec(
			`INSERT INTO run_documents (run_id, doc_id, party_key, governing_law, effective_date,
				payment_net_days, payment_amount, risk_score, risk_bucket, issues_count, issue_kinds)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, row.DocID, row.PartyKey, row.GoverningLaw, row.EffectiveDate,
			row.PaymentNetDays, row.PaymentAmount, row.RiskScore, string(row.RiskBucket),
			row.IssueCount, row.IssueKinds,
		); err != nil {
			return "", fmt.Errorf("insert document %s: %w", row.DocID, err)
		}
	}

	for seq, f := range result.Findings {
		if _, err := tx.Exec(
			`INSERT INTO run_findings (run_id, seq, doc_id, kind, field, detail, quote)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, seq, f.DocID, string(f.Kind), f.Field, marshalJSON(f.Detail), f.Quote,
		); err != nil {
			return "", fmt.Errorf("insert finding %d: %w", seq, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO run_kpis (run_id, kpis) VALUES (?, ?)`,
		runID, marshalJSON(result.KPIs),
	); err != nil {
		return "", fmt.Errorf("insert kpis: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns run summaries, most recent first.
func (s *Store) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(`SELECT run_id, started_at, completed_at, doc_count FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var started, completed string
		if err := rows.Scan(&r.RunID, &started, &completed, &r.DocCount); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.CompletedAt, _ = time.Parse(time.RFC3339Nano, completed)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunTable re-reads the per-document table of a stored run in doc_id order.
func (s *Store) RunTable(runID string) ([]audit.DocumentRow, error) {
	rows, err := s.db.Query(
		`SELECT doc_id, party_key, governing_law, effective_date, payment_net_days,
			payment_amount, risk_score, risk_bucket, issues_count, issue_kinds
		FROM run_documents WHERE run_id = ? ORDER BY doc_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("run table: %w", err)
	}
	defer rows.Close()

	var out []audit.DocumentRow
	for rows.Next() {
		var row audit.DocumentRow
		var bucket string
		if err := rows.Scan(&row.DocID, &row.PartyKey, &row.GoverningLaw, &row.EffectiveDate,
			&row.PaymentNetDays, &row.PaymentAmount, &row.RiskScore, &bucket,
			&row.IssueCount, &row.IssueKinds); err != nil {
			return nil, err
		}
		row.RiskBucket = audit.Bucket(bucket)
		out = append(out, row)
	}
	return out, rows.Err()
}

// RunFindings re-reads the findings of a stored run in insertion order.
func (s *Store) RunFindings(runID string) ([]audit.FindingRow, error) {
	rows, err := s.db.Query(
		`SELECT doc_id, kind, field, detail, quote FROM run_findings WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("run findings: %w", err)
	}
	defer rows.Close()

	var out []audit.FindingRow
	for rows.Next() {
		var f audit.FindingRow
		var kind, detail string
		if err := rows.Scan(&f.DocID, &kind, &f.Field, &detail, &f.Quote); err != nil {
			return nil, err
		}
		f.Kind = audit.IssueKind(kind)
		if detail != "" && detail != "{}" {
			_ = json.Unmarshal([]byte(detail), &f.Detail)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// RunKPIs re-reads the corpus KPIs of a stored run.
func (s *Store) RunKPIs(runID string) (audit.CorpusKPIs, error) {
	var raw string
	if err := s.db.QueryRow(`SELECT kpis FROM run_kpis WHERE run_id = ?`, runID).Scan(&raw); err != nil {
		return audit.CorpusKPIs{}, fmt.Errorf("run kpis: %w", err)
	}
	var kpis audit.CorpusKPIs
	if err := json.Unmarshal([]byte(raw), &kpis); err != nil {
		return audit.CorpusKPIs{}, fmt.Errorf("decode kpis: %w", err)
	}
	return kpis, nil
}

func timeToString(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
