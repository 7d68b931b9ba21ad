package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"BoostPull/internal/domain/models"
	"BoostPull/internal/domain/repository"
)

// ArchiveSchema returns the idempotent DDL for the cycle-results table.
func ArchiveSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			cycle_id String,
			mode LowCardinality(String),
			completed_at DateTime64(3),
			duration_ms Int64,
			asset_id String,
			classification LowCardinality(String),
			predicted Float64,
			actual Float64,
			start_price Float64,
			end_price Float64,
			correct UInt8,
			method LowCardinality(String),
			abs_error Float64
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(completed_at)
		ORDER BY (completed_at, cycle_id, asset_id)`, database, table),
	}
}

// ClickHouseArchive sinks per-asset validation rows of completed cycles into
// ClickHouse.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
}

// NewClickHouseArchive creates a result archive writing to the given table.
func NewClickHouseArchive(db *sql.DB, table string) repository.ResultArchive {
	return &ClickHouseArchive{db: db, table: table}
}

func (a *ClickHouseArchive) ArchiveResults(ctx context.Context, c *models.Cycle) error {
	if c == nil || len(c.Results) == 0 {
		return nil
	}
	completedAt := c.EndTime
	if c.CompletedAt != nil {
		completedAt = *c.CompletedAt
	}

	values := make([]string, 0, len(c.Results))
	args := make([]interface{}, 0, len(c.Results)*13)
	for _, r := range c.Results {
		correct := uint8(0)
		if r.Correct {
			correct = 1
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			c.ID,
			c.Mode,
			completedAt,
			c.DurationMs,
			r.AssetID,
			string(r.Classification),
			r.Predicted,
			r.Actual,
			r.StartPrice,
			r.EndPrice,
			correct,
			r.Method,
			r.AbsError,
		)
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (cycle_id, mode, completed_at, duration_ms, asset_id, classification, predicted, actual, start_price, end_price, correct, method, abs_error) VALUES %s",
		a.table, strings.Join(values, ","),
	)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("archive cycle %s: %w", c.ID, err)
	}
	return nil
}

func (a *ClickHouseArchive) Close() error {
	return nil // pool is owned by the clickhouse client
}

// NoopArchive discards results; used when ClickHouse is disabled.
type NoopArchive struct{}

func (NoopArchive) ArchiveResults(ctx context.Context, c *models.Cycle) error { return nil }
func (NoopArchive) Close() error                                              { return nil }
