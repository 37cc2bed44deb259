// Package words is the read-side word catalog backing the game engine.
package words

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kanjiduel/api/internal/game"
)

// ErrNoWords is returned when the catalog has no entry matching the filter.
var ErrNoWords = errors.New("no words in catalog")

// Source is the narrow view the engine consumes. maxRank <= 0 means no
// difficulty filter.
type Source interface {
	Random(ctx context.Context, maxRank int) (game.Word, error)
}

// Repository reads the words table.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Random draws a uniformly random word, optionally capped by frequency rank,
// with all accepted readings for its kanji attached.
func (r *Repository) Random(ctx context.Context, maxRank int) (game.Word, error) {
	var w game.Word
	err := r.db.QueryRowContext(ctx, `
		SELECT id, kanji, rank FROM words
		WHERE ? <= 0 OR rank <= ?
		ORDER BY RANDOM() LIMIT 1
	`, maxRank, maxRank).Scan(&w.ID, &w.Kanji, &w.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return w, ErrNoWords
	}
	if err != nil {
		return w, fmt.Errorf("drawing word: %w", err)
	}

	w.Readings, err = r.Readings(ctx, w.Kanji)
	if err != nil {
		return w, err
	}
	return w, nil
}

// Readings returns every accepted reading recorded for kanji. A kanji written
// the same way can carry several readings across catalog entries.
func (r *Repository) Readings(ctx context.Context, kanji string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT reading FROM words WHERE kanji = ?
	`, kanji)
	if err != nil {
		return nil, fmt.Errorf("listing readings for %q: %w", kanji, err)
	}
	defer rows.Close()

	var readings []string
	for rows.Next() {
		var reading string
		if err := rows.Scan(&reading); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

// Count reports the catalog size.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n)
	return n, err
}

// Insert adds one catalog entry. Readings are stored pre-normalized so
// matching stays exact at play time.
func (r *Repository) Insert(ctx context.Context, kanji, reading string, rank int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO words (kanji, reading, rank) VALUES (?, ?, ?)
		ON CONFLICT (kanji, reading) DO UPDATE SET rank = excluded.rank
	`, kanji, reading, rank)
	if err != nil {
		return fmt.Errorf("inserting %q: %w", kanji, err)
	}
	return nil
}

// Clear removes every entry. Used by the seeder's --clear flag.
func (r *Repository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM words`)
	return err
}
