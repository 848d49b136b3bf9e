package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/d6calc/internal/model"
)

// ExportAll returns every dispatch in creation order, optionally filtered by session.
func (s *SQLiteStore) ExportAll(ctx context.Context, session string) ([]model.Dispatch, error) {
	query := `SELECT ` + dispatchColumns + ` FROM dispatches`
	var args []interface{}
	if session != "" {
		query += ` WHERE session = ?`
		args = append(args, session)
	}
	query += ` ORDER BY id`
	return s.query(ctx, query, args...)
}

// Import stores dispatches from an export. Records whose id already exists are skipped.
func (s *SQLiteStore) Import(ctx context.Context, dispatches []model.Dispatch) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	for _, d := range dispatches {
		if d.ID == "" {
			return imported, fmt.Errorf("import: dispatch without id")
		}
		if !model.ValidStatuses[d.Status] {
			return imported, fmt.Errorf("import %s: invalid status %q", d.ID, d.Status)
		}

		var resolvedAt *string
		if d.ResolvedAt != nil {
			r := d.ResolvedAt.UTC().Format(time.RFC3339Nano)
			resolvedAt = &r
		}
		var result, errText *string
		if d.Result != "" {
			result = &d.Result
		}
		if d.Error != "" {
			errText = &d.Error
		}

		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO dispatches (`+dispatchColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.Session, int64(d.Seq), d.InputD6, d.InputLv, d.Valid, d.Status,
			result, errText, d.CreatedAt.UTC().Format(time.RFC3339Nano), resolvedAt, d.DurationMS)
		if err != nil {
			return imported, fmt.Errorf("import %s: %w", d.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}
