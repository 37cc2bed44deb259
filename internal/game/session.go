package game

import (
	"strings"
	"time"
)

// Session is the synchronous decision core for one match. It holds no
// concurrency primitives; the engine feeds it one event at a time.
type Session struct {
	Code  string
	State State

	players [2]*Player
	rounds  []Round

	winThreshold int
	roundCap     int
}

// NewSession creates a session in StateWaitingForOpponent with the host in
// seat 0. The name is validated even though the transport checks it first.
func NewSession(code, hostID, hostName string) (*Session, error) {
	hostName = strings.TrimSpace(hostName)
	if !ValidName(hostName) {
		return nil, ErrInvalidName
	}
	s := &Session{
		Code:         code,
		State:        StateWaitingForOpponent,
		winThreshold: WinThreshold,
		roundCap:     RoundCap,
	}
	s.players[0] = &Player{ID: hostID, Name: hostName, Connected: true}
	return s, nil
}

// SetLimits overrides the win threshold and round cap. Intended for tests
// and configuration; must be called before the first round opens.
func (s *Session) SetLimits(winThreshold, roundCap int) {
	if winThreshold > 0 {
		s.winThreshold = winThreshold
	}
	if roundCap > 0 {
		s.roundCap = roundCap
	}
}

// Join seats the guest and moves the session to StateCountdown.
func (s *Session) Join(guestID, guestName string) error {
	if s.State != StateWaitingForOpponent {
		return ErrGameFull
	}
	if s.players[1] != nil {
		return ErrGameFull
	}
	guestName = strings.TrimSpace(guestName)
	if !ValidName(guestName) {
		return ErrInvalidName
	}
	// Same display name as the host gets a discriminator so scores stay
	// distinguishable client-side.
	if guestName == s.players[0].Name {
		guestName += " (2)"
	}
	s.players[1] = &Player{ID: guestID, Name: guestName, Connected: true}
	s.State = StateCountdown
	return nil
}

// StartRound opens the next round with the given word and deadline. Valid
// when the countdown has elapsed or the previous round finished without
// ending the game.
func (s *Session) StartRound(w Word, deadline time.Time) (*Round, error) {
	if s.State != StateCountdown && s.State != StateRoundComplete {
		return nil, ErrBadTransition
	}
	if len(s.rounds) >= s.roundCap {
		return nil, ErrBadTransition
	}
	for _, p := range s.players {
		p.SkipVote = false
	}
	s.rounds = append(s.rounds, Round{
		Index:    len(s.rounds) + 1,
		Word:     w,
		Deadline: deadline,
	})
	s.State = StateRoundActive
	return &s.rounds[len(s.rounds)-1], nil
}

// AnswerVerdict reports what a submission did to the current round.
type AnswerVerdict struct {
	Correct bool
	Sealed  bool   // this submission sealed the round
	Reading string // canonical reading, set when Sealed
}

// SubmitAnswer normalizes text and, if it matches an accepted reading of the
// current round's word and the round is still pending, seals the round as won
// by the player and credits the point. This check-and-seal is the single
// point of score mutation. A submission that arrives after the round sealed
// has no effect.
func (s *Session) SubmitAnswer(playerID, text string) (AnswerVerdict, error) {
	if !s.HasPlayer(playerID) {
		return AnswerVerdict{}, ErrNotInGame
	}
	switch s.State {
	case StateRoundActive:
	case StateRoundComplete:
		// Late answer for a round that already sealed: no effect.
		return AnswerVerdict{}, nil
	default:
		return AnswerVerdict{}, ErrBadTransition
	}

	round := &s.rounds[len(s.rounds)-1]
	reading := Normalize(text)
	if !round.Word.HasReading(reading) {
		return AnswerVerdict{Correct: false}, nil
	}
	if round.Outcome != OutcomePending {
		return AnswerVerdict{Correct: true}, nil
	}

	round.Outcome = OutcomeWon
	round.Winner = playerID
	s.player(playerID).Score++
	s.State = StateRoundComplete
	return AnswerVerdict{Correct: true, Sealed: true, Reading: reading}, nil
}

// SkipVerdict is the result of a skip vote.
type SkipVerdict int

const (
	SkipAlreadyVoted SkipVerdict = iota
	SkipWaiting
	SkipSealed
)

// VoteSkip records a skip vote. When both seats have voted, the round seals
// as skipped with no score change.
func (s *Session) VoteSkip(playerID string) (SkipVerdict, error) {
	if !s.HasPlayer(playerID) {
		return 0, ErrNotInGame
	}
	if s.State != StateRoundActive {
		return 0, ErrBadTransition
	}

	p := s.player(playerID)
	if p.SkipVote {
		return SkipAlreadyVoted, nil
	}
	p.SkipVote = true

	for _, q := range s.players {
		if !q.SkipVote {
			return SkipWaiting, nil
		}
	}

	round := &s.rounds[len(s.rounds)-1]
	if round.Outcome != OutcomePending {
		return SkipWaiting, nil
	}
	round.Outcome = OutcomeSkipped
	s.State = StateRoundComplete
	return SkipSealed, nil
}

// TimeoutRound seals round index as timed out, provided it is still the
// current pending round. A stale index (the round sealed before the timer
// fired) is a no-op; this is the double-seal guard.
func (s *Session) TimeoutRound(index int) bool {
	if s.State != StateRoundActive || len(s.rounds) == 0 {
		return false
	}
	round := &s.rounds[len(s.rounds)-1]
	if round.Index != index || round.Outcome != OutcomePending {
		return false
	}
	round.Outcome = OutcomeTimedOut
	s.State = StateRoundComplete
	return true
}

// Progress is the decision taken on entering round completion.
type Progress struct {
	Over   bool
	Winner string // player ID; empty means a draw (or game not over)
}

// FinishRound decides whether the game ends or another round should open.
// On game over the state moves to StateGameOver; otherwise it stays in
// StateRoundComplete until StartRound is called.
func (s *Session) FinishRound() (Progress, error) {
	if s.State != StateRoundComplete {
		return Progress{}, ErrBadTransition
	}

	host, guest := s.players[0], s.players[1]
	reached := host.Score >= s.winThreshold || guest.Score >= s.winThreshold
	if !reached && len(s.rounds) < s.roundCap {
		return Progress{}, nil
	}

	s.State = StateGameOver
	switch {
	case host.Score > guest.Score:
		return Progress{Over: true, Winner: host.ID}, nil
	case guest.Score > host.Score:
		return Progress{Over: true, Winner: guest.ID}, nil
	default:
		return Progress{Over: true}, nil
	}
}

// RequestRematch records a player's intent to play again. It reports whether
// both players have now signaled.
func (s *Session) RequestRematch(playerID string) (bool, error) {
	if !s.HasPlayer(playerID) {
		return false, ErrNotInGame
	}
	if s.State != StateGameOver {
		return false, ErrBadTransition
	}
	s.player(playerID).Rematch = true
	return s.players[0].Rematch && s.players[1].Rematch, nil
}

// ResetForRematch retires the finished match and produces a fresh one in the
// same session: scores zeroed, rounds cleared, new code, back to countdown.
func (s *Session) ResetForRematch(newCode string) error {
	if s.State != StateGameOver {
		return ErrBadTransition
	}
	if !s.players[0].Rematch || !s.players[1].Rematch {
		return ErrBadTransition
	}
	for _, p := range s.players {
		p.Score = 0
		p.SkipVote = false
		p.Rematch = false
	}
	s.rounds = nil
	s.Code = newCode
	s.State = StateCountdown
	return nil
}

// Leave marks the player gone and abandons the match unless it already
// reached a terminal state. Reconnection is not supported.
func (s *Session) Leave(playerID string) error {
	if !s.HasPlayer(playerID) {
		return ErrNotInGame
	}
	s.player(playerID).Connected = false
	if !s.State.Terminal() {
		s.State = StateAbandoned
	}
	return nil
}

// HasPlayer reports whether playerID occupies a seat.
func (s *Session) HasPlayer(playerID string) bool {
	return s.player(playerID) != nil
}

// Opponent returns the other seat's player.
func (s *Session) Opponent(playerID string) (*Player, bool) {
	for i, p := range s.players {
		if p != nil && p.ID == playerID {
			other := s.players[1-i]
			return other, other != nil
		}
	}
	return nil, false
}

// Players returns the occupied seats in order.
func (s *Session) Players() []*Player {
	out := make([]*Player, 0, 2)
	for _, p := range s.players {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Scores maps display names to current scores.
func (s *Session) Scores() map[string]int {
	out := make(map[string]int, 2)
	for _, p := range s.players {
		if p != nil {
			out[p.Name] = p.Score
		}
	}
	return out
}

// PlayerName resolves a player ID to its display name, or "" if absent.
func (s *Session) PlayerName(playerID string) string {
	if p := s.player(playerID); p != nil {
		return p.Name
	}
	return ""
}

// CurrentRound returns the most recent round, if any.
func (s *Session) CurrentRound() (*Round, bool) {
	if len(s.rounds) == 0 {
		return nil, false
	}
	return &s.rounds[len(s.rounds)-1], true
}

// Rounds returns all rounds played so far.
func (s *Session) Rounds() []Round {
	return s.rounds
}

func (s *Session) player(playerID string) *Player {
	for _, p := range s.players {
		if p != nil && p.ID == playerID {
			return p
		}
	}
	return nil
}
