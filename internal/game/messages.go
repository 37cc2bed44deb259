package game

import (
	"encoding/json"
	"fmt"
)

// Client → server message types.
const (
	TypeCreateGame = "create_game"
	TypeJoinGame   = "join_game"
	TypeAnswer     = "answer"
	TypeVoteSkip   = "vote_skip"
	TypePlayAgain  = "play_again"
	TypeLeaveGame  = "leave_game"
)

// Server → client message types.
const (
	TypeGameCreated          = "game_created"
	TypeWaitingForOpponent   = "waiting_for_opponent"
	TypeOpponentJoined       = "opponent_joined"
	TypeGameFull             = "game_full"
	TypeGameNotFound         = "game_not_found"
	TypeGameStarting         = "game_starting"
	TypeRoundStart           = "round_start"
	TypeAnswerResult         = "answer_result"
	TypeRoundEnd             = "round_end"
	TypeGameEnd              = "game_end"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeError                = "error"
)

// ClientMessage is one inbound protocol frame. Which fields are meaningful
// depends on Type.
type ClientMessage struct {
	Type       string `json:"type"`
	PlayerName string `json:"player_name,omitempty"`
	GameID     string `json:"game_id,omitempty"`
	Answer     string `json:"answer,omitempty"`
}

// Validate checks that the frame carries the fields its type requires.
func (m ClientMessage) Validate() error {
	switch m.Type {
	case TypeCreateGame:
		if m.PlayerName == "" {
			return fmt.Errorf("%s: player_name required", m.Type)
		}
	case TypeJoinGame:
		if m.GameID == "" || m.PlayerName == "" {
			return fmt.Errorf("%s: game_id and player_name required", m.Type)
		}
	case TypeAnswer:
		if m.Answer == "" {
			return fmt.Errorf("%s: answer required", m.Type)
		}
	case TypeVoteSkip, TypePlayAgain, TypeLeaveGame:
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// ServerMessage is one outbound protocol frame.
type ServerMessage struct {
	Type string `json:"type"`

	GameID           string         `json:"game_id,omitempty"`
	OpponentName     string         `json:"opponent_name,omitempty"`
	CountdownSeconds int            `json:"countdown_seconds,omitempty"`
	Round            int            `json:"round,omitempty"`
	TotalRounds      int            `json:"total_rounds,omitempty"`
	Kanji            string         `json:"kanji,omitempty"`
	Correct          *bool          `json:"correct,omitempty"`
	CorrectReading   string         `json:"correct_reading,omitempty"`
	Winner           *string        `json:"winner,omitempty"`
	Scores           map[string]int `json:"scores,omitempty"`
	FinalScores      map[string]int `json:"final_scores,omitempty"`
	Message          string         `json:"message,omitempty"`
}

// Encode marshals the frame for the wire.
func (m ServerMessage) Encode() []byte {
	b, _ := json.Marshal(m)
	return b
}

func GameCreated(gameID string) ServerMessage {
	return ServerMessage{Type: TypeGameCreated, GameID: gameID}
}

func WaitingForOpponent() ServerMessage {
	return ServerMessage{Type: TypeWaitingForOpponent}
}

func OpponentJoined(name string) ServerMessage {
	return ServerMessage{Type: TypeOpponentJoined, OpponentName: name}
}

func GameFull() ServerMessage {
	return ServerMessage{Type: TypeGameFull}
}

func GameNotFound() ServerMessage {
	return ServerMessage{Type: TypeGameNotFound}
}

func GameStarting(countdown int) ServerMessage {
	return ServerMessage{Type: TypeGameStarting, CountdownSeconds: countdown}
}

func RoundStart(round, totalRounds int, kanji string) ServerMessage {
	// The reading is withheld; clients only ever see the kanji.
	return ServerMessage{Type: TypeRoundStart, Round: round, TotalRounds: totalRounds, Kanji: kanji}
}

func AnswerResult(correct bool, correctReading string) ServerMessage {
	return ServerMessage{Type: TypeAnswerResult, Correct: &correct, CorrectReading: correctReading}
}

// RoundEnd reports a sealed round. winner is the display name; nil means the
// round ended with no winner (skipped or timed out).
func RoundEnd(winner *string, scores map[string]int) ServerMessage {
	return ServerMessage{Type: TypeRoundEnd, Winner: winner, Scores: scores}
}

// GameEnd reports the final result. winner nil means a draw.
func GameEnd(winner *string, finalScores map[string]int) ServerMessage {
	return ServerMessage{Type: TypeGameEnd, Winner: winner, FinalScores: finalScores}
}

func OpponentDisconnected() ServerMessage {
	return ServerMessage{Type: TypeOpponentDisconnected}
}

func ErrorMessage(msg string) ServerMessage {
	return ServerMessage{Type: TypeError, Message: msg}
}
