package words

import (
	"context"
	"errors"
	"testing"

	"github.com/kanjiduel/api/internal/database"
	"github.com/kanjiduel/api/internal/game"
	"github.com/kanjiduel/api/internal/migrations"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return NewRepository(db)
}

func TestRandomFromEmptyCatalog(t *testing.T) {
	repo := testRepo(t)
	_, err := repo.Random(context.Background(), 0)
	if !errors.Is(err, ErrNoWords) {
		t.Errorf("got %v, want ErrNoWords", err)
	}
}

func TestRandomCollectsAllReadings(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, e := range []struct {
		kanji, reading string
		rank           int
	}{
		{"日本", "にほん", 100},
		{"日本", "にっぽん", 120},
	} {
		if err := repo.Insert(ctx, e.kanji, e.reading, e.rank); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	w, err := repo.Random(ctx, 0)
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if w.Kanji != "日本" {
		t.Fatalf("kanji = %q", w.Kanji)
	}
	if len(w.Readings) != 2 {
		t.Errorf("readings = %v, want both entries", w.Readings)
	}
	if !w.HasReading("にほん") || !w.HasReading("にっぽん") {
		t.Errorf("readings = %v", w.Readings)
	}
}

func TestRandomHonorsRankFilter(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	repo.Insert(ctx, "猫", "ねこ", 50)
	repo.Insert(ctx, "鬱", "うつ", 9000)

	for i := 0; i < 20; i++ {
		w, err := repo.Random(ctx, 100)
		if err != nil {
			t.Fatalf("random: %v", err)
		}
		if w.Kanji != "猫" {
			t.Fatalf("rank filter leaked %q (rank %d)", w.Kanji, w.Rank)
		}
	}

	if _, err := repo.Random(ctx, 10); !errors.Is(err, ErrNoWords) {
		t.Errorf("over-tight filter: got %v, want ErrNoWords", err)
	}
}

func TestInsertUpsertsRank(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	repo.Insert(ctx, "水", "みず", 10)
	if err := repo.Insert(ctx, "水", "みず", 7); err != nil {
		t.Fatalf("re-insert: %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	w, _ := repo.Random(ctx, 0)
	if w.Rank != 7 {
		t.Errorf("rank = %d, want updated 7", w.Rank)
	}
}

func TestStaticSource(t *testing.T) {
	src := NewStatic(
		game.Word{Kanji: "猫", Readings: []string{"ねこ"}, Rank: 50},
		game.Word{Kanji: "鬱", Readings: []string{"うつ"}, Rank: 9000},
	)

	w, err := src.Random(context.Background(), 100)
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	if w.Kanji != "猫" {
		t.Errorf("rank filter leaked %q", w.Kanji)
	}

	if _, err := src.Random(context.Background(), 1); !errors.Is(err, ErrNoWords) {
		t.Errorf("got %v, want ErrNoWords", err)
	}
}
