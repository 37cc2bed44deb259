package server

import (
	"net/http"
	"time"

	"github.com/kanjiduel/api/internal/engine"
)

type lobbyGame struct {
	GameID   string `json:"game_id"`
	HostName string `json:"host_name"`
	// Seconds since the game was created.
	CreatedAtSecs int64 `json:"created_at_secs"`
}

type lobbyList struct {
	Games []lobbyGame `json:"games"`
}

// handleLobby lists games still waiting for an opponent, oldest first.
func handleLobby(reg *engine.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending := reg.Pending()
		now := time.Now()

		list := lobbyList{Games: make([]lobbyGame, 0, len(pending))}
		for _, p := range pending {
			list.Games = append(list.Games, lobbyGame{
				GameID:        p.Code,
				HostName:      p.HostName,
				CreatedAtSecs: int64(now.Sub(p.CreatedAt).Seconds()),
			})
		}

		writeJSON(w, http.StatusOK, list)
	}
}
