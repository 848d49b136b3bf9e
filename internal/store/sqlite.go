package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/d6calc/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy io.Reader
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// newID returns a ULID. Ids sort in creation order.
func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS dispatches (
		id          TEXT PRIMARY KEY,
		session     TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		input_d6    TEXT NOT NULL,
		input_lv    TEXT NOT NULL,
		valid       INTEGER NOT NULL,
		status      TEXT NOT NULL DEFAULT 'pending',
		result      TEXT,
		error       TEXT,
		created_at  TEXT NOT NULL,
		resolved_at TEXT,
		duration_ms INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_dispatches_session ON dispatches(session, seq);
	CREATE INDEX IF NOT EXISTS idx_dispatches_status ON dispatches(status);
	CREATE INDEX IF NOT EXISTS idx_dispatches_created ON dispatches(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Begin(ctx context.Context, p BeginParams) (*model.Dispatch, error) {
	now := time.Now().UTC()
	id := s.newID(now)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dispatches (id, session, seq, input_d6, input_lv, valid, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Session, int64(p.Seq), p.InputD6, p.InputLv, p.Valid, model.StatusPending,
		now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert dispatch: %w", err)
	}

	return &model.Dispatch{
		ID:        id,
		Session:   p.Session,
		Seq:       p.Seq,
		InputD6:   p.InputD6,
		InputLv:   p.InputLv,
		Valid:     p.Valid,
		Status:    model.StatusPending,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) Finish(ctx context.Context, p FinishParams) error {
	if p.Status == model.StatusPending || !model.ValidStatuses[p.Status] {
		return fmt.Errorf("invalid finish status %q", p.Status)
	}

	d, err := s.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	dur := now.Sub(d.CreatedAt).Milliseconds()

	var result, errText *string
	if p.Result != "" {
		result = &p.Result
	}
	if p.Error != "" {
		errText = &p.Error
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE dispatches SET status = ?, result = ?, error = ?, resolved_at = ?, duration_ms = ?
		 WHERE id = ?`,
		p.Status, result, errText, now.Format(time.RFC3339Nano), dur, p.ID)
	if err != nil {
		return fmt.Errorf("update dispatch: %w", err)
	}
	return nil
}

const dispatchColumns = `id, session, seq, input_d6, input_lv, valid, status, result, error, created_at, resolved_at, duration_ms`

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Dispatch, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dispatchColumns+` FROM dispatches WHERE id = ?`, id)
	d, err := scanDispatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Dispatch, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	var args []interface{}

	if p.Session != "" {
		where = append(where, "session = ?")
		args = append(args, p.Session)
	}
	if p.Status != "" {
		where = append(where, "status = ?")
		args = append(args, p.Status)
	}

	query := fmt.Sprintf(`SELECT %s FROM dispatches WHERE %s ORDER BY id DESC LIMIT ?`,
		dispatchColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.query(ctx, query, args...)
}

func (s *SQLiteStore) Prune(ctx context.Context, p PruneParams) (int64, error) {
	var res sql.Result
	var err error
	switch {
	case p.All:
		res, err = s.db.ExecContext(ctx, `DELETE FROM dispatches`)
	case !p.Before.IsZero():
		// ids encode creation time, so compare against the smallest id at Before
		bound := ulid.MustNew(ulid.Timestamp(p.Before), zeroReader{}).String()
		res, err = s.db.ExecContext(ctx, `DELETE FROM dispatches WHERE id < ?`, bound)
	default:
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]model.Dispatch, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Dispatch
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDispatch(row scanner) (model.Dispatch, error) {
	var d model.Dispatch
	var result, errText, resolvedAt sql.NullString
	var duration sql.NullInt64
	var createdAt string
	var seq int64

	err := row.Scan(
		&d.ID, &d.Session, &seq, &d.InputD6, &d.InputLv, &d.Valid,
		&d.Status, &result, &errText, &createdAt, &resolvedAt, &duration,
	)
	if err != nil {
		return d, err
	}

	d.Seq = uint64(seq)
	d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if result.Valid {
		d.Result = result.String
	}
	if errText.Valid {
		d.Error = errText.String
	}
	if resolvedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, resolvedAt.String)
		d.ResolvedAt = &t
	}
	if duration.Valid {
		d.DurationMS = duration.Int64
	}
	return d, nil
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
