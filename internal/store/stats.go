package store

import (
	"context"
	"os"
)

// Stats holds journal statistics.
type Stats struct {
	DBPath          string        `json:"db_path"`
	DBSizeBytes     int64         `json:"db_size_bytes"`
	TotalDispatches int           `json:"total_dispatches"`
	InvalidInputs   int           `json:"invalid_inputs"`
	AvgDurationMS   float64       `json:"avg_duration_ms"`
	Statuses        []StatusStats `json:"statuses"`
	Levels          []LevelStats  `json:"levels"`
}

// StatusStats holds per-status counts.
type StatusStats struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// LevelStats holds per-level counts.
type LevelStats struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// Stats returns journal statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatches`).Scan(&st.TotalDispatches)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatches WHERE valid = 0`).Scan(&st.InvalidInputs)
	s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(duration_ms), 0) FROM dispatches WHERE duration_ms IS NOT NULL`).Scan(&st.AvgDurationMS)

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) AS cnt
		FROM dispatches GROUP BY status ORDER BY cnt DESC, status`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var ss StatusStats
		rows.Scan(&ss.Status, &ss.Count)
		st.Statuses = append(st.Statuses, ss)
	}

	lrows, err := s.db.QueryContext(ctx, `
		SELECT input_lv, COUNT(*) AS cnt
		FROM dispatches GROUP BY input_lv ORDER BY input_lv`)
	if err != nil {
		return st, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var ls LevelStats
		lrows.Scan(&ls.Level, &ls.Count)
		st.Levels = append(st.Levels, ls)
	}

	return st, nil
}
