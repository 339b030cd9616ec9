package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewSQLiteDBUnopenablePath(t *testing.T) {
	// sql.Open is lazy; a missing parent directory surfaces on the first
	// statement and must come back as an error, not a half-open store.
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "missing", "history.db"))
	if err == nil {
		db.Close()
		t.Fatal("Expected error for unopenable database path")
	}
}

func TestSaveAndListResults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	res := GameResult{
		RoomID:     "room-1",
		RoomName:   "first",
		Turns:      10,
		FinishedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Ranking: []RankedPlayer{
			{ID: "p1", Name: "Player-1", Score: 0.4},
			{ID: "p2", Name: "Player-2", Score: 0.1},
		},
	}
	if err := db.SaveResult(ctx, res); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	results, err := db.ListResults(ctx, 10)
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.RoomID != res.RoomID || got.RoomName != res.RoomName || got.Turns != res.Turns {
		t.Errorf("Roundtrip mismatch: %+v", got)
	}
	if len(got.Ranking) != 2 || got.Ranking[0].Name != "Player-1" || got.Ranking[0].Score != 0.4 {
		t.Errorf("Ranking mismatch: %+v", got.Ranking)
	}
}

func TestListResultsNewestFirstWithLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := db.SaveResult(ctx, GameResult{
			RoomID:     "room-" + string(rune('a'+i)),
			RoomName:   "game",
			Turns:      5,
			FinishedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
	}

	results, err := db.ListResults(ctx, 2)
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].RoomID != "room-c" || results[1].RoomID != "room-b" {
		t.Errorf("Wrong order: %s, %s", results[0].RoomID, results[1].RoomID)
	}
}

func TestSaveResultUpsertsByRoom(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	res := GameResult{RoomID: "room-1", RoomName: "before", Turns: 3, FinishedAt: time.Now().UTC()}
	if err := db.SaveResult(ctx, res); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}
	res.RoomName = "after"
	if err := db.SaveResult(ctx, res); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	results, err := db.ListResults(ctx, 10)
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result after upsert, got %d", len(results))
	}
	if results[0].RoomName != "after" {
		t.Errorf("RoomName = %q, want %q", results[0].RoomName, "after")
	}
}
