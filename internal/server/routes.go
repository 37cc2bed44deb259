package server

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/kanjiduel/api/internal/engine"
)

func addRoutes(r chi.Router, logger *slog.Logger, reg *engine.Registry, db *sql.DB) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Kanji Duel API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))
	r.Get("/ws", handleWS(logger, reg))
	r.Get("/api/lobby", handleLobby(reg))
}
