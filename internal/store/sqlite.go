// SQLite persistence for metric samples and alert transitions.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fleetops-sim/internal/metrics"

	_ "modernc.org/sqlite"
)

// AlertRecord is the persisted form of an alert transition.
type AlertRecord struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Severity     string     `json:"severity"`
	MetricName   string     `json:"metric"`
	Threshold    float64    `json:"threshold"`
	CurrentValue float64    `json:"current_value"`
	Status       string     `json:"status"`
	FiredAt      time.Time  `json:"fired_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// Store provides database operations.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database and runs migrations.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite single-writer
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			value REAL NOT NULL,
			unit TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			labels TEXT DEFAULT '',
			service TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_name_time ON metrics(name, timestamp)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			severity TEXT NOT NULL,
			metric_name TEXT NOT NULL,
			threshold REAL NOT NULL,
			current_value REAL NOT NULL,
			fired_at TEXT NOT NULL,
			status TEXT NOT NULL,
			resolved_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertMetric appends one metric sample.
func (s *Store) InsertMetric(m metrics.Metric) error {
	labels := ""
	if len(m.Labels) > 0 {
		b, err := json.Marshal(m.Labels)
		if err != nil {
			return fmt.Errorf("marshal labels: %w", err)
		}
		labels = string(b)
	}
	_, err := s.db.Exec(
		`INSERT INTO metrics (name, value, unit, timestamp, labels, service) VALUES (?, ?, ?, ?, ?, ?)`,
		m.Name, m.Value, m.Unit, m.Timestamp.UTC().Format(time.RFC3339Nano), labels, m.Service,
	)
	return err
}

// UpsertAlert stores a firing alert, replacing any previous record with the
// same id.
func (s *Store) UpsertAlert(a AlertRecord) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO alerts
		 (id, name, description, severity, metric_name, threshold, current_value, fired_at, status, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		a.ID, a.Name, a.Description, a.Severity, a.MetricName,
		a.Threshold, a.CurrentValue, a.FiredAt.UTC().Format(time.RFC3339Nano), a.Status,
	)
	return err
}

// ResolveAlert marks a stored alert as resolved with its final value.
func (s *Store) ResolveAlert(id string, currentValue float64, resolvedAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE alerts SET current_value = ?, status = 'RESOLVED', resolved_at = ? WHERE id = ?`,
		currentValue, resolvedAt.UTC().Format(time.RFC3339Nano), id,
	)
	return err
}

// AlertHistory returns the most recent alert records, newest first.
func (s *Store) AlertHistory(limit int) ([]AlertRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, severity, metric_name, threshold, current_value, fired_at, status, resolved_at
		 FROM alerts ORDER BY fired_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AlertRecord
	for rows.Next() {
		var a AlertRecord
		var firedAt string
		var resolvedAt sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Severity, &a.MetricName,
			&a.Threshold, &a.CurrentValue, &firedAt, &a.Status, &resolvedAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, firedAt); err == nil {
			a.FiredAt = t
		}
		if resolvedAt.Valid {
			if t, err := time.Parse(time.RFC3339Nano, resolvedAt.String); err == nil {
				a.ResolvedAt = &t
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
