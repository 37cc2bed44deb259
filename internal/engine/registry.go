package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kanjiduel/api/internal/game"
	"github.com/kanjiduel/api/internal/words"
)

// Registry is the concurrent directory of live games. The map itself is
// guarded by a single mutex, but entries are the unit of concurrency
// control: all per-game work happens on the game's own goroutine, so the
// lock is only ever held for map operations.
type Registry struct {
	logger *slog.Logger
	source words.Source
	cfg    Config

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.RWMutex
	games map[string]*ActiveGame
}

// New builds a registry. Games run until Close or their own teardown.
func New(logger *slog.Logger, source words.Source, cfg Config) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		logger: logger,
		source: source,
		cfg:    cfg.withDefaults(),
		ctx:    ctx,
		cancel: cancel,
		games:  make(map[string]*ActiveGame),
	}
}

// Client is a connection's handle on one game: its identity, the outbound
// frame channel, and event-posting methods. The channel closes when the
// game tears down or this subscriber is dropped for falling behind.
type Client struct {
	game     *ActiveGame
	PlayerID string
	GameCode string
	Messages <-chan []byte
}

func (c *Client) Answer(text string) error {
	return c.game.post(evAnswer{playerID: c.PlayerID, text: text})
}

func (c *Client) VoteSkip() error {
	return c.game.post(evSkip{playerID: c.PlayerID})
}

func (c *Client) PlayAgain() error {
	return c.game.post(evRematch{playerID: c.PlayerID})
}

func (c *Client) Leave() error {
	return c.game.post(evLeave{playerID: c.PlayerID})
}

// Create allocates a code, seats the host, and starts the game actor.
func (r *Registry) Create(hostName string) (*Client, error) {
	playerID := uuid.NewString()

	r.mu.Lock()
	code := game.UniqueCode(func(code string) bool {
		_, taken := r.games[code]
		return taken
	})
	sess, err := game.NewSession(code, playerID, hostName)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	sub := &subscriber{playerID: playerID, ch: make(chan []byte, outboundBuffer)}
	g := newActiveGame(r, sess, sub)
	r.games[code] = g
	r.mu.Unlock()

	go g.run(r.ctx)

	r.logger.Info("game created", "game", code, "host", hostName)
	return &Client{game: g, PlayerID: playerID, GameCode: code, Messages: sub.ch}, nil
}

// Join seats the guest in the pending game, or fails with ErrGameNotFound /
// game.ErrGameFull. The join itself runs on the game's goroutine; Join waits
// for its verdict so the caller gets a definitive answer.
func (r *Registry) Join(ctx context.Context, code, guestName string) (*Client, error) {
	g, err := r.Lookup(code)
	if err != nil {
		return nil, err
	}

	playerID := uuid.NewString()
	sub := &subscriber{playerID: playerID, ch: make(chan []byte, outboundBuffer)}
	reply := make(chan error, 1)

	if err := g.post(evJoin{playerID: playerID, name: guestName, sub: sub, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case err := <-reply:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Client{game: g, PlayerID: playerID, GameCode: code, Messages: sub.ch}, nil
}

// Lookup routes a code to its live game.
func (r *Registry) Lookup(code string) (*ActiveGame, error) {
	r.mu.RLock()
	g, ok := r.games[code]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// Len reports the number of live games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// PendingGame describes a game still waiting for an opponent.
type PendingGame struct {
	Code      string
	HostName  string
	CreatedAt time.Time
}

// Pending lists games waiting for a second player, for the lobby endpoint.
// It reads only fields fixed at construction; the session itself belongs to
// the game goroutine and is never touched here.
func (r *Registry) Pending() []PendingGame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PendingGame, 0)
	for code, g := range r.games {
		if g.started.Load() {
			continue
		}
		out = append(out, PendingGame{
			Code:      code,
			HostName:  g.hostName,
			CreatedAt: g.createdAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// RunReaper periodically nudges stale pending games. Eviction itself is
// decided on each game's goroutine so the check does not race the join path.
func (r *Registry) RunReaper(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.reapOnce()
		}
	}
}

func (r *Registry) reapOnce() {
	r.mu.RLock()
	stale := make([]*ActiveGame, 0)
	for _, g := range r.games {
		if !g.started.Load() && time.Since(g.createdAt) > r.cfg.LobbyTTL {
			stale = append(stale, g)
		}
	}
	r.mu.RUnlock()

	for _, g := range stale {
		g.post(evExpire{ttl: r.cfg.LobbyTTL})
	}
}

// Close tears down all games. Safe to call once at shutdown.
func (r *Registry) Close() {
	r.cancel()
}

// rebind moves a live game to a fresh code, for rematches. Called from the
// game's own goroutine.
func (r *Registry) rebind(oldCode string, g *ActiveGame) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.games, oldCode)
	code := game.UniqueCode(func(code string) bool {
		_, taken := r.games[code]
		return taken
	})
	r.games[code] = g
	return code
}

// remove drops the mapping when a game tears down. The game pointer is
// checked so a rematch rebind racing a teardown cannot delete a newer entry.
func (r *Registry) remove(code string, g *ActiveGame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.games[code]; ok && cur == g {
		delete(r.games, code)
	}
}
