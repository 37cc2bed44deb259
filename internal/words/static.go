package words

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/kanjiduel/api/internal/game"
)

// Static is an in-memory Source for tests and offline runs. Draws respect
// the rank filter; order is random unless the source was built with a single
// word.
type Static struct {
	mu    sync.Mutex
	words []game.Word
}

func NewStatic(words ...game.Word) *Static {
	return &Static{words: words}
}

func (s *Static) Random(_ context.Context, maxRank int) (game.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pool []game.Word
	for _, w := range s.words {
		if maxRank <= 0 || w.Rank <= maxRank {
			pool = append(pool, w)
		}
	}
	if len(pool) == 0 {
		return game.Word{}, ErrNoWords
	}
	return pool[rand.IntN(len(pool))], nil
}
