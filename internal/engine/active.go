package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kanjiduel/api/internal/game"
	"github.com/kanjiduel/api/internal/words"
)

// outboundBuffer bounds each subscriber's delivery queue. A subscriber that
// falls this far behind is disconnected rather than allowed to stall the
// game; dropping individual frames would desync its client instead.
const outboundBuffer = 32

// inboxBuffer bounds the inbound event queue of one game.
const inboxBuffer = 64

// Inbound events. Exactly one goroutine (the game's run loop) consumes
// these, which is what serializes all session mutation.
type (
	evJoin struct {
		playerID string
		name     string
		sub      *subscriber
		reply    chan error
	}
	evAnswer struct {
		playerID string
		text     string
	}
	evSkip    struct{ playerID string }
	evRematch struct{ playerID string }
	evLeave   struct{ playerID string }

	evCountdownDone struct{}
	evRoundTimeout  struct{ round int }
	evExpire        struct{ ttl time.Duration }
)

type subscriber struct {
	playerID string
	ch       chan []byte
	closed   bool // owned by the game goroutine
}

// ActiveGame wraps one Session with its execution context: an inbound event
// queue, the countdown/round timers, and the fan-out subscriber set.
type ActiveGame struct {
	reg    *Registry
	source words.Source
	logger *slog.Logger
	cfg    Config

	session   *game.Session
	subs      map[string]*subscriber
	createdAt time.Time
	hostName  string      // fixed at creation; read by the lobby listing off-goroutine
	started   atomic.Bool // flipped once on join; read by the reaper and the lobby

	inbox chan any
	done  chan struct{}

	countdownTimer *time.Timer
	roundTimer     *time.Timer
}

func newActiveGame(reg *Registry, sess *game.Session, host *subscriber) *ActiveGame {
	g := &ActiveGame{
		reg:       reg,
		source:    reg.source,
		logger:    reg.logger.With("game", sess.Code),
		cfg:       reg.cfg,
		session:   sess,
		subs:      map[string]*subscriber{host.playerID: host},
		createdAt: time.Now(),
		hostName:  sess.PlayerName(host.playerID),
		inbox:     make(chan any, inboxBuffer),
		done:      make(chan struct{}),
	}
	sess.SetLimits(g.cfg.WinThreshold, g.cfg.RoundCap)
	return g
}

// post delivers an event to the game's inbox. After teardown every event
// fails with ErrGameNotFound.
func (g *ActiveGame) post(ev any) error {
	select {
	case <-g.done:
		return ErrGameNotFound
	default:
	}
	select {
	case g.inbox <- ev:
		return nil
	case <-g.done:
		return ErrGameNotFound
	}
}

// run is the single owner of the session. It processes events strictly in
// arrival order until the game reaches teardown.
func (g *ActiveGame) run(ctx context.Context) {
	defer g.teardown()

	// The host is already subscribed; greet it.
	g.sendTo(g.hostID(), game.GameCreated(g.session.Code))
	g.sendTo(g.hostID(), game.WaitingForOpponent())

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-g.inbox:
			if done := g.handle(ctx, ev); done {
				return
			}
		}
	}
}

func (g *ActiveGame) handle(ctx context.Context, ev any) (done bool) {
	switch ev := ev.(type) {
	case evJoin:
		return g.handleJoin(ev)
	case evAnswer:
		return g.handleAnswer(ctx, ev)
	case evSkip:
		return g.handleSkip(ctx, ev)
	case evRematch:
		return g.handleRematch(ev)
	case evLeave:
		return g.handleLeave(ev.playerID)
	case evCountdownDone:
		return g.handleCountdownDone(ctx)
	case evRoundTimeout:
		return g.handleRoundTimeout(ctx, ev.round)
	case evExpire:
		if g.session.State == game.StateWaitingForOpponent && time.Since(g.createdAt) > ev.ttl {
			g.logger.Info("evicting pending game", "age", time.Since(g.createdAt))
			g.sendTo(g.hostID(), game.GameNotFound())
			return true
		}
	}
	return false
}

func (g *ActiveGame) handleJoin(ev evJoin) bool {
	err := g.session.Join(ev.playerID, ev.name)
	if err != nil {
		ev.reply <- err
		return false
	}
	g.started.Store(true)
	g.subs[ev.playerID] = ev.sub
	ev.reply <- nil

	guestName := g.session.PlayerName(ev.playerID)
	g.sendTo(g.hostID(), game.OpponentJoined(guestName))
	g.sendTo(ev.playerID, game.OpponentJoined(g.session.PlayerName(g.hostID())))
	g.beginCountdown()
	g.logger.Info("game starting", "guest", guestName)
	return false
}

func (g *ActiveGame) handleAnswer(ctx context.Context, ev evAnswer) bool {
	verdict, err := g.session.SubmitAnswer(ev.playerID, ev.text)
	if err != nil {
		g.sendTo(ev.playerID, game.ErrorMessage("cannot answer right now"))
		return false
	}
	if !verdict.Sealed {
		g.sendTo(ev.playerID, game.AnswerResult(verdict.Correct, ""))
		return false
	}

	g.stopRoundTimer()
	g.sendTo(ev.playerID, game.AnswerResult(true, verdict.Reading))

	winner := g.session.PlayerName(ev.playerID)
	g.broadcast(game.RoundEnd(&winner, g.session.Scores()))
	g.logger.Info("round won", "round", g.currentRoundIndex(), "winner", winner)
	return g.finishOrContinue(ctx)
}

func (g *ActiveGame) handleSkip(ctx context.Context, ev evSkip) bool {
	verdict, err := g.session.VoteSkip(ev.playerID)
	if err != nil {
		g.sendTo(ev.playerID, game.ErrorMessage("cannot skip right now"))
		return false
	}
	if verdict != game.SkipSealed {
		return false
	}

	g.stopRoundTimer()
	g.broadcast(game.RoundEnd(nil, g.session.Scores()))
	g.logger.Info("round skipped", "round", g.currentRoundIndex())
	return g.finishOrContinue(ctx)
}

func (g *ActiveGame) handleRoundTimeout(ctx context.Context, round int) bool {
	if !g.session.TimeoutRound(round) {
		// The round sealed before the timer fired; stale, ignore.
		return false
	}
	g.broadcast(game.RoundEnd(nil, g.session.Scores()))
	g.logger.Info("round timed out", "round", round)
	return g.finishOrContinue(ctx)
}

func (g *ActiveGame) handleRematch(ev evRematch) bool {
	both, err := g.session.RequestRematch(ev.playerID)
	if err != nil {
		g.sendTo(ev.playerID, game.ErrorMessage("cannot request a rematch right now"))
		return false
	}
	if !both {
		return false
	}

	newCode := g.reg.rebind(g.session.Code, g)
	if err := g.session.ResetForRematch(newCode); err != nil {
		g.logger.Error("rematch reset failed", "error", err)
		return true
	}
	g.logger = g.reg.logger.With("game", newCode)
	g.logger.Info("rematch accepted")
	g.broadcast(game.GameCreated(newCode))
	g.beginCountdown()
	return false
}

func (g *ActiveGame) handleLeave(playerID string) bool {
	if !g.session.HasPlayer(playerID) {
		return false
	}
	wasTerminal := g.session.State.Terminal()
	if err := g.session.Leave(playerID); err != nil {
		return false
	}
	g.dropSubscriber(playerID)

	if opp, ok := g.session.Opponent(playerID); ok && opp.Connected {
		g.sendTo(opp.ID, game.OpponentDisconnected())
	}
	if !wasTerminal {
		g.logger.Info("player left, game abandoned", "player", playerID)
	}
	// With one seat empty no further play is possible; tear down.
	return true
}

func (g *ActiveGame) handleCountdownDone(ctx context.Context) bool {
	if g.session.State != game.StateCountdown {
		return false
	}
	return g.openRound(ctx)
}

// finishOrContinue is called after every round seal: it either announces the
// final result or opens the next round.
func (g *ActiveGame) finishOrContinue(ctx context.Context) bool {
	prog, err := g.session.FinishRound()
	if err != nil {
		g.logger.Error("finish round", "error", err)
		return true
	}
	if !prog.Over {
		return g.openRound(ctx)
	}

	var winner *string
	if prog.Winner != "" {
		name := g.session.PlayerName(prog.Winner)
		winner = &name
	}
	g.broadcast(game.GameEnd(winner, g.session.Scores()))
	g.logger.Info("game over", "winner", g.session.PlayerName(prog.Winner), "scores", g.session.Scores())
	// Stay alive: both players may still request a rematch.
	return false
}

func (g *ActiveGame) openRound(ctx context.Context) bool {
	drawCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	word, err := g.source.Random(drawCtx, g.cfg.MaxWordRank)
	cancel()
	if err != nil {
		g.logger.Error("drawing word", "error", err)
		g.broadcast(game.ErrorMessage("no words available"))
		return true
	}

	round, err := g.session.StartRound(word, time.Now().Add(g.cfg.RoundTimeout))
	if err != nil {
		g.logger.Error("starting round", "error", err)
		return true
	}

	g.broadcast(game.RoundStart(round.Index, g.cfg.RoundCap, word.Kanji))
	index := round.Index
	g.roundTimer = time.AfterFunc(g.cfg.RoundTimeout, func() {
		g.post(evRoundTimeout{round: index})
	})
	return false
}

func (g *ActiveGame) beginCountdown() {
	seconds := int(g.cfg.Countdown / time.Second)
	g.broadcast(game.GameStarting(seconds))
	g.countdownTimer = time.AfterFunc(g.cfg.Countdown, func() {
		g.post(evCountdownDone{})
	})
}

func (g *ActiveGame) stopRoundTimer() {
	if g.roundTimer != nil {
		g.roundTimer.Stop()
		g.roundTimer = nil
	}
}

// broadcast fans the frame out to every live subscriber. Delivery is
// per-subscriber buffered; a full buffer disconnects that subscriber only,
// never the game.
func (g *ActiveGame) broadcast(msg game.ServerMessage) {
	b := msg.Encode()
	for _, sub := range g.subs {
		g.deliver(sub, b)
	}
}

func (g *ActiveGame) sendTo(playerID string, msg game.ServerMessage) {
	if sub, ok := g.subs[playerID]; ok {
		g.deliver(sub, msg.Encode())
	}
}

func (g *ActiveGame) deliver(sub *subscriber, b []byte) {
	if sub.closed {
		return
	}
	select {
	case sub.ch <- b:
	default:
		g.logger.Warn("subscriber too slow, dropping connection", "player", sub.playerID)
		sub.closed = true
		close(sub.ch)
	}
}

func (g *ActiveGame) dropSubscriber(playerID string) {
	if sub, ok := g.subs[playerID]; ok {
		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
		delete(g.subs, playerID)
	}
}

func (g *ActiveGame) teardown() {
	g.stopRoundTimer()
	if g.countdownTimer != nil {
		g.countdownTimer.Stop()
		g.countdownTimer = nil
	}
	for id := range g.subs {
		g.dropSubscriber(id)
	}
	close(g.done)
	g.reg.remove(g.session.Code, g)
	g.logger.Debug("game torn down")
}

func (g *ActiveGame) hostID() string {
	return g.session.Players()[0].ID
}

func (g *ActiveGame) currentRoundIndex() int {
	if r, ok := g.session.CurrentRound(); ok {
		return r.Index
	}
	return 0
}
