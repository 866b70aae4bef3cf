package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

// MemoryStore keeps readings in process. It backs the "memory" database driver
// and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Table][]models.Reading
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: map[Table][]models.Reading{
			TablePanel: nil,
			TableBeban: nil,
		},
	}
}

// InsertPair appends both rows under one lock.
func (s *MemoryStore) InsertPair(ctx context.Context, panel, beban models.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[TablePanel] = append(s.tables[TablePanel], panel)
	s.tables[TableBeban] = append(s.tables[TableBeban], beban)
	return nil
}

// Latest returns the last appended row.
func (s *MemoryStore) Latest(ctx context.Context, table Table) (models.Reading, error) {
	if err := table.Validate(); err != nil {
		return models.Reading{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Reading{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.tables[table]
	if len(rows) == 0 {
		return models.Reading{}, ErrNoRows
	}
	return rows[len(rows)-1], nil
}

// DailyTotals groups rows by date in loc.
func (s *MemoryStore) DailyTotals(ctx context.Context, table Table, loc *time.Location, limit int) ([]models.DailyTotal, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc = NormalizeZone(loc)

	s.mu.RLock()
	sums := make(map[string]float64)
	for _, row := range s.tables[table] {
		sums[row.RecordedAt.In(loc).Format(time.DateOnly)] += row.Power
	}
	s.mu.RUnlock()

	totals := make([]models.DailyTotal, 0, len(sums))
	for date, sum := range sums {
		totals = append(totals, models.DailyTotal{Date: date, SumPower: sum})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date > totals[j].Date })
	if limit > 0 && len(totals) > limit {
		totals = totals[:limit]
	}
	return totals, nil
}

// Stats aggregates power over [from, to).
func (s *MemoryStore) Stats(ctx context.Context, table Table, from, to time.Time) (models.PowerStats, error) {
	if err := table.Validate(); err != nil {
		return models.PowerStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.PowerStats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.PowerStats
	for _, row := range s.tables[table] {
		if row.RecordedAt.Before(from) || !row.RecordedAt.Before(to) {
			continue
		}
		if stats.Count == 0 || row.Power > stats.Max {
			stats.Max = row.Power
		}
		stats.Count++
		stats.Sum += row.Power
	}
	if stats.Count > 0 {
		stats.Avg = stats.Sum / float64(stats.Count)
	}
	return stats, nil
}

// Len reports how many rows table holds.
func (s *MemoryStore) Len(table Table) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables[table])
}
