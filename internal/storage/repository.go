// Package storage owns the durable history ledger: daily spending snapshots
// keyed by (date, category) and the append-only spending alert log, both in
// SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetwatch/internal/core"

	_ "modernc.org/sqlite"
)

// HistoryStore persists daily snapshots and alerts. Writes are fatal on
// failure; reads degrade to empty results so a missing or broken store
// skips the trend and alert sections instead of aborting a run.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &HistoryStore{db: db}, nil
}

func (s *HistoryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// UpsertDailySpending writes one snapshot row per category for the given
// date. Re-running for the same day replaces the prior values instead of
// adding rows; the (date, category) key makes same-day runs idempotent.
func (s *HistoryStore) UpsertDailySpending(ctx context.Context, date time.Time, metrics map[string]core.Metric) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_spending (date, category, amount_cents, target_cents, percentage)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, category) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			target_cents = excluded.target_cents,
			percentage = excluded.percentage`)
	if err != nil {
		return fmt.Errorf("prepare snapshot upsert: %w", err)
	}
	defer stmt.Close()

	day := core.DayKey(date)
	for category, m := range metrics {
		if _, err := stmt.ExecContext(ctx, day, category, m.Spent.Cents, m.Target.Cents, m.Percentage); err != nil {
			return fmt.Errorf("upsert snapshot for %s: %w", category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshots: %w", err)
	}

	slog.InfoContext(ctx, "Daily snapshots saved",
		"date", day,
		"categories", len(metrics))

	return nil
}

// SpendingSince returns snapshots on or after the cutoff, grouped by
// category, ascending by date within each group. A failing store yields an
// empty map, not an error.
func (s *HistoryStore) SpendingSince(ctx context.Context, since time.Time) map[string][]core.DailySnapshot {
	history := make(map[string][]core.DailySnapshot)

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, category, amount_cents, target_cents, percentage
		FROM daily_spending
		WHERE date >= ?
		ORDER BY date ASC, category ASC`, core.DayKey(since))
	if err != nil {
		slog.WarnContext(ctx, "History unavailable, returning empty result", "error", err)
		return history
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day        string
			snap       core.DailySnapshot
			amount     int64
			target     int64
			percentage float64
		)
		if err := rows.Scan(&day, &snap.Category, &amount, &target, &percentage); err != nil {
			slog.WarnContext(ctx, "Skipping unreadable snapshot row", "error", err)
			continue
		}
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			slog.WarnContext(ctx, "Skipping snapshot with bad date", "date", day, "error", err)
			continue
		}
		snap.Date = date
		snap.Spent = core.Money{Cents: amount}
		snap.Target = core.Money{Cents: target}
		snap.Percentage = percentage
		history[snap.Category] = append(history[snap.Category], snap)
	}
	if err := rows.Err(); err != nil {
		slog.WarnContext(ctx, "History read interrupted", "error", err)
	}

	return history
}

// RecordAlert appends one alert to the log. Never updates, never dedups.
func (s *HistoryStore) RecordAlert(ctx context.Context, a core.Alert) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid alert: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spending_alerts (date, category, alert_type, severity, message)
		VALUES (?, ?, ?, ?, ?)`,
		core.DayKey(a.Date), a.Category, string(a.Kind), string(a.Severity), a.Message)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}

	return nil
}

// AlertsSince returns alerts on or after the cutoff, most recent first,
// bounded by limit. Degrades to empty on read failure.
func (s *HistoryStore) AlertsSince(ctx context.Context, since time.Time, limit int) []core.Alert {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, category, alert_type, severity, message
		FROM spending_alerts
		WHERE date >= ?
		ORDER BY id DESC
		LIMIT ?`, core.DayKey(since), limit)
	if err != nil {
		slog.WarnContext(ctx, "Alert log unavailable, returning empty result", "error", err)
		return nil
	}
	defer rows.Close()

	var alerts []core.Alert
	for rows.Next() {
		var (
			day      string
			a        core.Alert
			kind     string
			severity string
		)
		if err := rows.Scan(&day, &a.Category, &kind, &severity, &a.Message); err != nil {
			slog.WarnContext(ctx, "Skipping unreadable alert row", "error", err)
			continue
		}
		if date, err := time.Parse("2006-01-02", day); err == nil {
			a.Date = date
		}
		a.Kind = core.AlertKind(kind)
		a.Severity = core.Severity(severity)
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		slog.WarnContext(ctx, "Alert read interrupted", "error", err)
	}

	return alerts
}
