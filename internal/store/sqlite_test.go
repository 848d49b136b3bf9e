package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/d6calc/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBeginAndFinish(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	d, err := s.Begin(ctx, BeginParams{Session: "s1", Seq: 1, InputD6: "1|2|3", InputLv: "2", Valid: true})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if d.ID == "" {
		t.Error("expected non-empty ID")
	}
	if d.Status != model.StatusPending {
		t.Errorf("expected pending, got %q", d.Status)
	}

	if err := s.Finish(ctx, FinishParams{ID: d.ID, Status: model.StatusCompleted, Result: "1+2*3 = 7"}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.StatusCompleted || got.Result != "1+2*3 = 7" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.ResolvedAt == nil {
		t.Error("expected resolved_at to be set")
	}
	if got.InputD6 != "1|2|3" || got.InputLv != "2" || !got.Valid || got.Seq != 1 {
		t.Errorf("inputs not persisted: %+v", got)
	}
}

func TestFinishFailed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	d, _ := s.Begin(ctx, BeginParams{Session: "s1", Seq: 1, InputD6: "7", InputLv: "0"})
	if err := s.Finish(ctx, FinishParams{ID: d.ID, Status: model.StatusFailed, Error: "connection refused"}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	got, _ := s.Get(ctx, d.ID)
	if got.Error != "connection refused" || got.Result != "" || got.Valid {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestFinishRejectsBadStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	d, _ := s.Begin(ctx, BeginParams{Session: "s1", Seq: 1, InputD6: "1", InputLv: "0"})
	for _, status := range []string{"", "pending", "done"} {
		if err := s.Finish(ctx, FinishParams{ID: d.ID, Status: status}); err == nil {
			t.Errorf("expected error for status %q", status)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	err = s.Finish(context.Background(), FinishParams{ID: "nope", Status: model.StatusCompleted})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from finish, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 1; i <= 3; i++ {
		s.Begin(ctx, BeginParams{Session: "a", Seq: uint64(i), InputD6: "1", InputLv: "0"})
	}
	other, _ := s.Begin(ctx, BeginParams{Session: "b", Seq: 1, InputD6: "2", InputLv: "1"})
	s.Finish(ctx, FinishParams{ID: other.ID, Status: model.StatusCompleted, Result: "N/A"})

	all, _ := s.List(ctx, ListParams{})
	if len(all) != 4 {
		t.Fatalf("expected 4, got %d", len(all))
	}
	if all[0].ID != other.ID {
		t.Errorf("expected newest first, got %s", all[0].ID)
	}

	sess, _ := s.List(ctx, ListParams{Session: "a"})
	if len(sess) != 3 || sess[0].Seq != 3 || sess[2].Seq != 1 {
		t.Errorf("unexpected session listing: %+v", sess)
	}

	done, _ := s.List(ctx, ListParams{Status: model.StatusCompleted})
	if len(done) != 1 {
		t.Errorf("expected 1 completed, got %d", len(done))
	}

	limited, _ := s.List(ctx, ListParams{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("expected 2 with limit, got %d", len(limited))
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Begin(ctx, BeginParams{Session: "a", Seq: 1, InputD6: "1", InputLv: "0"})
	s.Begin(ctx, BeginParams{Session: "a", Seq: 2, InputD6: "2", InputLv: "0"})

	n, err := s.Prune(ctx, PruneParams{})
	if err != nil || n != 0 {
		t.Errorf("empty prune = %d, %v", n, err)
	}

	n, err = s.Prune(ctx, PruneParams{Before: time.Now().Add(-time.Hour)})
	if err != nil || n != 0 {
		t.Errorf("prune before an hour ago = %d, %v", n, err)
	}

	n, err = s.Prune(ctx, PruneParams{Before: time.Now().Add(time.Second)})
	if err != nil || n != 2 {
		t.Errorf("prune before now = %d, %v", n, err)
	}

	s.Begin(ctx, BeginParams{Session: "a", Seq: 3, InputD6: "3", InputLv: "0"})
	n, err = s.Prune(ctx, PruneParams{All: true})
	if err != nil || n != 1 {
		t.Errorf("prune all = %d, %v", n, err)
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	d1, _ := src.Begin(ctx, BeginParams{Session: "a", Seq: 1, InputD6: "1|2", InputLv: "3", Valid: true})
	src.Finish(ctx, FinishParams{ID: d1.ID, Status: model.StatusCompleted, Result: "1+2 = 3"})
	src.Begin(ctx, BeginParams{Session: "b", Seq: 1, InputD6: "x", InputLv: "0"})

	all, err := src.ExportAll(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(all) != 2 || all[0].ID != d1.ID {
		t.Fatalf("unexpected export: %+v", all)
	}
	onlyA, _ := src.ExportAll(ctx, "a")
	if len(onlyA) != 1 {
		t.Errorf("expected 1 for session a, got %d", len(onlyA))
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, all)
	if err != nil || n != 2 {
		t.Fatalf("import = %d, %v", n, err)
	}
	// duplicates are skipped
	n, err = dst.Import(ctx, all)
	if err != nil || n != 0 {
		t.Errorf("re-import = %d, %v", n, err)
	}

	got, err := dst.Get(ctx, d1.ID)
	if err != nil {
		t.Fatalf("get imported: %v", err)
	}
	if got.Result != "1+2 = 3" || got.Status != model.StatusCompleted || got.ResolvedAt == nil {
		t.Errorf("imported record mismatch: %+v", got)
	}
}

func TestImportRejectsBadRecords(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Import(context.Background(), []model.Dispatch{{Status: model.StatusPending}}); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := s.Import(context.Background(), []model.Dispatch{{ID: "x", Status: "weird"}}); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	d, _ := s.Begin(ctx, BeginParams{Session: "a", Seq: 1, InputD6: "1", InputLv: "0", Valid: true})
	s.Finish(ctx, FinishParams{ID: d.ID, Status: model.StatusCompleted, Result: "N/A"})
	s.Begin(ctx, BeginParams{Session: "a", Seq: 2, InputD6: "9", InputLv: "4"})

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalDispatches != 2 || st.InvalidInputs != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
	if len(st.Statuses) != 2 || len(st.Levels) != 2 {
		t.Errorf("unexpected breakdown: %+v", st)
	}
	if st.DBPath != dbPath {
		t.Errorf("db path = %q", st.DBPath)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
