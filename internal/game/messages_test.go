package game

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeCreateGame(t *testing.T) {
	raw := `{"type": "create_game", "player_name": "Alice"}`
	var msg ClientMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != TypeCreateGame || msg.PlayerName != "Alice" {
		t.Errorf("decoded %+v", msg)
	}
	if err := msg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestDecodeJoinGame(t *testing.T) {
	raw := `{"type": "join_game", "game_id": "abc234", "player_name": "Bob"}`
	var msg ClientMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.GameID != "abc234" || msg.PlayerName != "Bob" {
		t.Errorf("decoded %+v", msg)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	cases := []ClientMessage{
		{Type: TypeCreateGame},
		{Type: TypeJoinGame, PlayerName: "Bob"},
		{Type: TypeJoinGame, GameID: "abc234"},
		{Type: TypeAnswer},
		{Type: "reboot"},
		{},
	}
	for _, msg := range cases {
		if err := msg.Validate(); err == nil {
			t.Errorf("Validate(%+v) accepted an invalid frame", msg)
		}
	}
}

func TestEncodeGameCreated(t *testing.T) {
	got := string(GameCreated("abc234").Encode())
	if !strings.Contains(got, `"type":"game_created"`) || !strings.Contains(got, `"game_id":"abc234"`) {
		t.Errorf("encoded %s", got)
	}
}

func TestEncodeBareFrames(t *testing.T) {
	cases := map[string]ServerMessage{
		`{"type":"waiting_for_opponent"}`:  WaitingForOpponent(),
		`{"type":"game_full"}`:             GameFull(),
		`{"type":"game_not_found"}`:        GameNotFound(),
		`{"type":"opponent_disconnected"}`: OpponentDisconnected(),
	}
	for want, msg := range cases {
		if got := string(msg.Encode()); got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}
}

func TestEncodeRoundEndDistinguishesNoWinner(t *testing.T) {
	scores := map[string]int{"Alice": 1, "Bob": 0}

	winner := "Alice"
	got := string(RoundEnd(&winner, scores).Encode())
	if !strings.Contains(got, `"winner":"Alice"`) {
		t.Errorf("winner missing: %s", got)
	}

	got = string(RoundEnd(nil, scores).Encode())
	if strings.Contains(got, `"winner"`) {
		t.Errorf("nil winner should be omitted: %s", got)
	}
}

func TestEncodeAnswerResultKeepsFalse(t *testing.T) {
	got := string(AnswerResult(false, "").Encode())
	if !strings.Contains(got, `"correct":false`) {
		t.Errorf("correct:false must survive encoding: %s", got)
	}
}
