package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kanjiduel/api/internal/database"
	"github.com/kanjiduel/api/internal/game"
	"github.com/kanjiduel/api/internal/migrations"
	"github.com/kanjiduel/api/internal/words"
)

type options struct {
	dict    string
	freq    string
	dbPath  string
	limit   int
	maxRank int
	clear   bool
}

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Seed the word database from a Yomitan dictionary",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dict, "dict", "d", "", "path to Yomitan dictionary ZIP (e.g. jitendex-yomitan.zip)")
	cmd.Flags().StringVarP(&opts.freq, "freq", "f", "", "path to Yomitan frequency dictionary ZIP")
	cmd.Flags().StringVar(&opts.dbPath, "db", "data/words.db", "SQLite database path")
	cmd.Flags().IntVarP(&opts.limit, "limit", "l", 0, "maximum number of words to import (0 = unlimited)")
	cmd.Flags().IntVar(&opts.maxRank, "max-rank", 0, "only import words with frequency rank at or below this (0 = no cap)")
	cmd.Flags().BoolVar(&opts.clear, "clear", false, "clear existing words before import")
	_ = cmd.MarkFlagRequired("dict")

	return cmd
}

type importStats struct {
	filtered int
	inserted int
	skipped  int
}

func runSeed(ctx context.Context, cmd *cobra.Command, opts *options) error {
	db, err := database.Open(ctx, opts.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	repo := words.NewRepository(db)
	if opts.clear {
		cmd.Println("Clearing existing words...")
		if err := repo.Clear(ctx); err != nil {
			return fmt.Errorf("clearing words: %w", err)
		}
	}

	cmd.Printf("Parsing dictionary: %s\n", opts.dict)
	entries, err := parseDictionary(opts.dict)
	if err != nil {
		return fmt.Errorf("parsing dictionary: %w", err)
	}
	cmd.Printf("Found %d term entries\n", len(entries))

	freq := map[string]int{}
	if opts.freq != "" {
		cmd.Printf("Parsing frequency data: %s\n", opts.freq)
		freq, err = parseFrequency(opts.freq)
		if err != nil {
			return fmt.Errorf("parsing frequency data: %w", err)
		}
		cmd.Printf("Found frequency data for %d terms\n", len(freq))
	} else {
		cmd.Println("No frequency dictionary provided, importing without ranks")
	}

	cmd.Println("Importing words...")
	stats, err := importWords(ctx, repo, entries, freq, opts.limit, opts.maxRank)
	if err != nil {
		return fmt.Errorf("importing words: %w", err)
	}

	cmd.Println()
	cmd.Println("Import complete:")
	cmd.Printf("  Passed filters: %d\n", stats.filtered)
	cmd.Printf("  Inserted:       %d\n", stats.inserted)
	cmd.Printf("  Skipped:        %d\n", stats.skipped)
	return nil
}

type wordToInsert struct {
	kanji   string
	reading string
	rank    int
}

// importWords filters the dictionary down to kanji words worth quizzing:
// the term must differ from its reading, must not carry the JMdict
// "usually kana" tag, and when frequency data exists it must have a rank
// within the cap. Readings are normalized at import time so gameplay
// matching is a plain string compare.
func importWords(ctx context.Context, repo *words.Repository, entries []termEntry, freq map[string]int, limit, maxRank int) (importStats, error) {
	var stats importStats

	candidates := make([]wordToInsert, 0, len(entries))
	for _, e := range entries {
		if e.Reading == "" || e.Term == e.Reading || e.UsuallyKana {
			stats.skipped++
			continue
		}

		rank, ranked := freq[e.Term]
		if len(freq) > 0 && !ranked {
			stats.skipped++
			continue
		}
		if maxRank > 0 && rank > maxRank {
			stats.skipped++
			continue
		}

		candidates = append(candidates, wordToInsert{
			kanji:   e.Term,
			reading: game.Normalize(e.Reading),
			rank:    rank,
		})
	}

	// Most common words first, so a limit keeps the useful ones.
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].rank < candidates[j].rank })
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	stats.filtered = len(candidates)

	for _, w := range candidates {
		if err := repo.Insert(ctx, w.kanji, w.reading, w.rank); err != nil {
			return stats, fmt.Errorf("inserting %s: %w", w.kanji, err)
		}
		stats.inserted++
	}
	return stats, nil
}
