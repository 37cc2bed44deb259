package game

import (
	"testing"
	"time"
)

func testWord() Word {
	return Word{ID: 1, Kanji: "日本", Readings: []string{"にほん", "にっぽん"}, Rank: 100}
}

func startedSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession("abc234", "p1", "Alice")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.Join("p2", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := s.StartRound(testWord(), time.Now().Add(RoundTimeout)); err != nil {
		t.Fatalf("start round: %v", err)
	}
	return s
}

func TestNewSessionValidatesName(t *testing.T) {
	if _, err := NewSession("abc234", "p1", "   "); err != ErrInvalidName {
		t.Errorf("empty name: got %v, want ErrInvalidName", err)
	}
	long := make([]rune, MaxNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := NewSession("abc234", "p1", string(long)); err != ErrInvalidName {
		t.Errorf("long name: got %v, want ErrInvalidName", err)
	}
	s, err := NewSession("abc234", "p1", "Alice")
	if err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
	if s.State != StateWaitingForOpponent {
		t.Errorf("state = %v, want waiting_for_opponent", s.State)
	}
}

func TestJoinFillsSecondSeat(t *testing.T) {
	s, _ := NewSession("abc234", "p1", "Alice")

	if err := s.Join("p2", "Bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if s.State != StateCountdown {
		t.Errorf("state = %v, want countdown", s.State)
	}
	if err := s.Join("p3", "Carol"); err != ErrGameFull {
		t.Errorf("third join: got %v, want ErrGameFull", err)
	}
}

func TestJoinDisambiguatesDuplicateName(t *testing.T) {
	s, _ := NewSession("abc234", "p1", "Alice")
	if err := s.Join("p2", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := s.PlayerName("p2"); got != "Alice (2)" {
		t.Errorf("guest name = %q, want %q", got, "Alice (2)")
	}
}

func TestCorrectAnswerSealsRoundOnce(t *testing.T) {
	s := startedSession(t)

	v, err := s.SubmitAnswer("p1", "にほん")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !v.Correct || !v.Sealed {
		t.Fatalf("verdict = %+v, want correct and sealed", v)
	}
	if s.State != StateRoundComplete {
		t.Errorf("state = %v, want round_complete", s.State)
	}

	// Second correct answer arrives after the seal: no effect.
	v2, err := s.SubmitAnswer("p2", "にほん")
	if err != nil {
		t.Fatalf("late submit: %v", err)
	}
	if v2.Sealed {
		t.Error("late answer sealed an already-sealed round")
	}

	scores := s.Scores()
	if scores["Alice"] != 1 || scores["Bob"] != 0 {
		t.Errorf("scores = %v, want Alice:1 Bob:0", scores)
	}
	round, _ := s.CurrentRound()
	if round.Outcome != OutcomeWon || round.Winner != "p1" {
		t.Errorf("round = %+v, want won by p1", round)
	}
}

func TestWrongAnswerLeavesRoundOpen(t *testing.T) {
	s := startedSession(t)

	v, err := s.SubmitAnswer("p2", "にちほん")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if v.Correct || v.Sealed {
		t.Errorf("verdict = %+v, want incorrect and unsealed", v)
	}
	if s.State != StateRoundActive {
		t.Errorf("state = %v, want round_active", s.State)
	}
}

func TestAlternateReadingAccepted(t *testing.T) {
	s := startedSession(t)

	v, err := s.SubmitAnswer("p2", "にっぽん")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !v.Sealed {
		t.Fatalf("alternate reading rejected: %+v", v)
	}
	if got := s.Scores()["Bob"]; got != 1 {
		t.Errorf("Bob score = %d, want 1", got)
	}
}

func TestAnswerFromStrangerRejected(t *testing.T) {
	s := startedSession(t)
	if _, err := s.SubmitAnswer("p9", "にほん"); err != ErrNotInGame {
		t.Errorf("got %v, want ErrNotInGame", err)
	}
}

func TestSkipNeedsBothPlayers(t *testing.T) {
	s := startedSession(t)

	v, err := s.VoteSkip("p1")
	if err != nil || v != SkipWaiting {
		t.Fatalf("first vote: %v %v, want SkipWaiting", v, err)
	}
	v, err = s.VoteSkip("p1")
	if err != nil || v != SkipAlreadyVoted {
		t.Fatalf("repeat vote: %v %v, want SkipAlreadyVoted", v, err)
	}
	v, err = s.VoteSkip("p2")
	if err != nil || v != SkipSealed {
		t.Fatalf("second vote: %v %v, want SkipSealed", v, err)
	}

	round, _ := s.CurrentRound()
	if round.Outcome != OutcomeSkipped {
		t.Errorf("outcome = %v, want skipped", round.Outcome)
	}
	if got := s.Scores(); got["Alice"]+got["Bob"] != 0 {
		t.Errorf("skip changed scores: %v", got)
	}

	// A correct answer after the skip seal has no effect.
	av, err := s.SubmitAnswer("p1", "にほん")
	if err != nil {
		t.Fatalf("late answer: %v", err)
	}
	if av.Sealed {
		t.Error("answer re-sealed a skipped round")
	}
	if round.Outcome != OutcomeSkipped {
		t.Errorf("outcome changed to %v after late answer", round.Outcome)
	}
}

func TestTimeoutSealsPendingRound(t *testing.T) {
	s := startedSession(t)

	if !s.TimeoutRound(1) {
		t.Fatal("timeout of pending round refused")
	}
	round, _ := s.CurrentRound()
	if round.Outcome != OutcomeTimedOut {
		t.Errorf("outcome = %v, want timed_out", round.Outcome)
	}
	if got := s.Scores(); got["Alice"]+got["Bob"] != 0 {
		t.Errorf("timeout changed scores: %v", got)
	}
}

func TestStaleTimeoutIgnored(t *testing.T) {
	s := startedSession(t)

	if _, err := s.SubmitAnswer("p1", "にほん"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if s.TimeoutRound(1) {
		t.Error("timer sealed a round that was already won")
	}
	round, _ := s.CurrentRound()
	if round.Outcome != OutcomeWon {
		t.Errorf("outcome = %v, want won", round.Outcome)
	}

	// Timer for round 1 firing after round 2 opened must not touch round 2.
	if _, err := s.FinishRound(); err != nil {
		t.Fatalf("finish round: %v", err)
	}
	if _, err := s.StartRound(testWord(), time.Now().Add(RoundTimeout)); err != nil {
		t.Fatalf("start round 2: %v", err)
	}
	if s.TimeoutRound(1) {
		t.Error("stale timer index sealed the wrong round")
	}
}

func TestWinThresholdEndsGame(t *testing.T) {
	s, _ := NewSession("abc234", "p1", "Alice")
	s.Join("p2", "Bob")
	s.SetLimits(3, RoundCap)

	for i := 0; i < 3; i++ {
		if _, err := s.StartRound(testWord(), time.Now().Add(RoundTimeout)); err != nil {
			t.Fatalf("round %d: %v", i+1, err)
		}
		if _, err := s.SubmitAnswer("p1", "にほん"); err != nil {
			t.Fatalf("answer %d: %v", i+1, err)
		}
		prog, err := s.FinishRound()
		if err != nil {
			t.Fatalf("finish %d: %v", i+1, err)
		}
		if i < 2 && prog.Over {
			t.Fatalf("game over after %d wins, threshold 3", i+1)
		}
		if i == 2 {
			if !prog.Over || prog.Winner != "p1" {
				t.Fatalf("progress = %+v, want win by p1", prog)
			}
		}
	}
	if s.State != StateGameOver {
		t.Errorf("state = %v, want game_over", s.State)
	}
	if _, err := s.StartRound(testWord(), time.Now()); err != ErrBadTransition {
		t.Errorf("round opened after game over: %v", err)
	}
}

func TestRoundCapDrawEndsGame(t *testing.T) {
	s, _ := NewSession("abc234", "p1", "Alice")
	s.Join("p2", "Bob")
	s.SetLimits(WinThreshold, 2)

	for i := 0; i < 2; i++ {
		s.StartRound(testWord(), time.Now().Add(RoundTimeout))
		if !s.TimeoutRound(i + 1) {
			t.Fatalf("timeout round %d refused", i+1)
		}
		prog, err := s.FinishRound()
		if err != nil {
			t.Fatalf("finish %d: %v", i+1, err)
		}
		if i == 1 {
			if !prog.Over || prog.Winner != "" {
				t.Fatalf("progress = %+v, want draw", prog)
			}
		}
	}
}

func TestScoreSumMatchesWonRounds(t *testing.T) {
	s, _ := NewSession("abc234", "p1", "Alice")
	s.Join("p2", "Bob")
	s.SetLimits(WinThreshold, 6)

	steps := []func(){
		func() { s.SubmitAnswer("p1", "にほん") },
		func() { s.TimeoutRound(2) },
		func() { s.SubmitAnswer("p2", "にっぽん") },
		func() { s.VoteSkip("p1"); s.VoteSkip("p2") },
		func() { s.SubmitAnswer("p1", "にほん") },
		func() { s.TimeoutRound(6) },
	}
	for _, step := range steps {
		s.StartRound(testWord(), time.Now().Add(RoundTimeout))
		step()
		s.FinishRound()
	}

	won := 0
	for _, r := range s.Rounds() {
		if r.Outcome == OutcomePending {
			t.Errorf("round %d left pending", r.Index)
		}
		if r.Outcome == OutcomeWon {
			won++
		}
	}
	scores := s.Scores()
	if scores["Alice"]+scores["Bob"] != won {
		t.Errorf("score sum %d != won rounds %d", scores["Alice"]+scores["Bob"], won)
	}
}

func TestRematchRequiresBothPlayers(t *testing.T) {
	s, _ := NewSession("abc234", "p1", "Alice")
	s.Join("p2", "Bob")
	s.SetLimits(1, RoundCap)
	s.StartRound(testWord(), time.Now().Add(RoundTimeout))
	s.SubmitAnswer("p1", "にほん")
	s.FinishRound()

	both, err := s.RequestRematch("p1")
	if err != nil || both {
		t.Fatalf("first rematch: both=%v err=%v", both, err)
	}
	if err := s.ResetForRematch("xyz789"); err != ErrBadTransition {
		t.Errorf("reset with one vote: %v, want ErrBadTransition", err)
	}
	both, err = s.RequestRematch("p2")
	if err != nil || !both {
		t.Fatalf("second rematch: both=%v err=%v", both, err)
	}
	if err := s.ResetForRematch("xyz789"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.State != StateCountdown || s.Code != "xyz789" {
		t.Errorf("after reset: state=%v code=%q", s.State, s.Code)
	}
	if got := s.Scores(); got["Alice"] != 0 || got["Bob"] != 0 {
		t.Errorf("scores not reset: %v", got)
	}
	if len(s.Rounds()) != 0 {
		t.Errorf("rounds not cleared: %d", len(s.Rounds()))
	}
}

func TestRematchBeforeGameOverRejected(t *testing.T) {
	s := startedSession(t)
	if _, err := s.RequestRematch("p1"); err != ErrBadTransition {
		t.Errorf("got %v, want ErrBadTransition", err)
	}
}

func TestLeaveAbandonsGame(t *testing.T) {
	s := startedSession(t)

	if err := s.Leave("p2"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if s.State != StateAbandoned {
		t.Errorf("state = %v, want abandoned", s.State)
	}
	opp, ok := s.Opponent("p2")
	if !ok || opp.ID != "p1" {
		t.Errorf("opponent of p2 = %v", opp)
	}
}

func TestAnswerDuringCountdownRejected(t *testing.T) {
	s, _ := NewSession("abc234", "p1", "Alice")
	s.Join("p2", "Bob")

	if _, err := s.SubmitAnswer("p1", "にほん"); err != ErrBadTransition {
		t.Errorf("answer in countdown: %v, want ErrBadTransition", err)
	}
	if _, err := s.VoteSkip("p1"); err != ErrBadTransition {
		t.Errorf("skip in countdown: %v, want ErrBadTransition", err)
	}
}

func TestCurrentRoundReportsPresence(t *testing.T) {
	s, _ := NewSession("abc234", "p1", "Alice")
	if r, ok := s.CurrentRound(); ok || r != nil {
		t.Errorf("before any round: got %v, %v, want nil, false", r, ok)
	}

	s = startedSession(t)
	r, ok := s.CurrentRound()
	if !ok || r == nil {
		t.Fatalf("after StartRound: got %v, %v, want round, true", r, ok)
	}
	if r.Index != 1 {
		t.Errorf("round index = %d, want 1", r.Index)
	}
}
