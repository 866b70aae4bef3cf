package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

// ReadingRepository persists readings in the panel and beban Postgres tables:
//
//	CREATE TABLE panel (
//	    id         BIGSERIAL PRIMARY KEY,
//	    voltage    DOUBLE PRECISION NOT NULL,
//	    current    DOUBLE PRECISION NOT NULL,
//	    power      DOUBLE PRECISION NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// beban has the same shape.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository returns repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// InsertPair stores both rows in one transaction.
func (r *ReadingRepository) InsertPair(ctx context.Context, panel, beban models.Reading) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertReading(ctx, tx, TablePanel, panel); err != nil {
		return err
	}
	if err = insertReading(ctx, tx, TableBeban, beban); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertReading(ctx context.Context, tx *sql.Tx, table Table, reading models.Reading) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (voltage, current, power, created_at)
		VALUES ($1, $2, $3, $4)
	`, table)
	if _, err := tx.ExecContext(ctx, query, reading.Voltage, reading.Current, reading.Power, reading.RecordedAt); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Latest returns the row with the highest id.
func (r *ReadingRepository) Latest(ctx context.Context, table Table) (models.Reading, error) {
	if err := table.Validate(); err != nil {
		return models.Reading{}, err
	}
	query := fmt.Sprintf(`
		SELECT voltage, current, power, created_at
		FROM %s
		ORDER BY id DESC
		LIMIT 1
	`, table)

	var reading models.Reading
	err := r.db.QueryRowContext(ctx, query).Scan(&reading.Voltage, &reading.Current, &reading.Power, &reading.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Reading{}, ErrNoRows
	}
	if err != nil {
		return models.Reading{}, fmt.Errorf("latest %s: %w", table, err)
	}
	return reading, nil
}

// DailyTotals groups rows by their created_at date in loc.
func (r *ReadingRepository) DailyTotals(ctx context.Context, table Table, loc *time.Location, limit int) ([]models.DailyTotal, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`
		SELECT to_char((created_at AT TIME ZONE $1)::date, 'YYYY-MM-DD') AS day,
		       SUM(power)
		FROM %s
		GROUP BY day
		ORDER BY day DESC
		LIMIT $2
	`, table)

	rows, err := r.db.QueryContext(ctx, query, zoneName(loc), limit)
	if err != nil {
		return nil, fmt.Errorf("daily totals %s: %w", table, err)
	}
	defer rows.Close()

	totals := make([]models.DailyTotal, 0, limit)
	for rows.Next() {
		var total models.DailyTotal
		if err := rows.Scan(&total.Date, &total.SumPower); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		totals = append(totals, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily totals %s: %w", table, err)
	}
	return totals, nil
}

// Stats aggregates power over [from, to).
func (r *ReadingRepository) Stats(ctx context.Context, table Table, from, to time.Time) (models.PowerStats, error) {
	if err := table.Validate(); err != nil {
		return models.PowerStats{}, err
	}
	query := fmt.Sprintf(`
		SELECT COUNT(*),
		       COALESCE(SUM(power), 0),
		       COALESCE(MAX(power), 0),
		       COALESCE(AVG(power), 0)
		FROM %s
		WHERE created_at >= $1 AND created_at < $2
	`, table)

	var stats models.PowerStats
	if err := r.db.QueryRowContext(ctx, query, from, to).Scan(&stats.Count, &stats.Sum, &stats.Max, &stats.Avg); err != nil {
		return models.PowerStats{}, fmt.Errorf("stats %s: %w", table, err)
	}
	return stats, nil
}

// zoneName maps a location to a name Postgres understands.
func zoneName(loc *time.Location) string {
	return NormalizeZone(loc).String()
}
