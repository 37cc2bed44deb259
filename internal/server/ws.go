package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/kanjiduel/api/internal/engine"
	"github.com/kanjiduel/api/internal/game"
)

const (
	// maxMalformed is how many unparseable or protocol-violating frames a
	// connection gets before it is closed.
	maxMalformed = 5

	wsWriteTimeout = 5 * time.Second
	wsReadLimit    = 4096
)

func handleWS(logger *slog.Logger, reg *engine.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		conn.SetReadLimit(wsReadLimit)

		ws := &wsConn{logger: logger, reg: reg, conn: conn}
		ws.run(r.Context())
	}
}

// wsConn binds one websocket connection to at most one game. The read loop
// runs on the handler goroutine; once the player is seated, a writer
// goroutine drains the game's outbound channel onto the socket.
type wsConn struct {
	logger    *slog.Logger
	reg       *engine.Registry
	conn      *websocket.Conn
	client    *engine.Client
	malformed int
}

func (ws *wsConn) run(ctx context.Context) {
	defer ws.conn.Close(websocket.StatusInternalError, "")

	for {
		var msg game.ClientMessage
		if err := wsjson.Read(ctx, ws.conn, &msg); err != nil {
			ws.leave()
			return
		}

		if err := msg.Validate(); err != nil {
			if !ws.protocolError(ctx, err.Error()) {
				ws.leave()
				return
			}
			continue
		}

		if !ws.dispatch(ctx, msg) {
			ws.leave()
			return
		}
	}
}

// dispatch handles one valid frame. It returns false when the connection
// should shut down.
func (ws *wsConn) dispatch(ctx context.Context, msg game.ClientMessage) bool {
	switch msg.Type {
	case game.TypeCreateGame:
		return ws.create(ctx, msg.PlayerName)
	case game.TypeJoinGame:
		return ws.join(ctx, msg.GameID, msg.PlayerName)
	}

	if ws.client == nil {
		return ws.protocolError(ctx, "not in a game")
	}

	var err error
	switch msg.Type {
	case game.TypeAnswer:
		err = ws.client.Answer(msg.Answer)
	case game.TypeVoteSkip:
		err = ws.client.VoteSkip()
	case game.TypePlayAgain:
		err = ws.client.PlayAgain()
	case game.TypeLeaveGame:
		err = ws.client.Leave()
	}
	if err != nil {
		// The game is gone; the writer goroutine is closing the socket.
		return false
	}
	return true
}

func (ws *wsConn) create(ctx context.Context, name string) bool {
	if ws.client != nil {
		return ws.protocolError(ctx, "already in a game")
	}

	client, err := ws.reg.Create(name)
	if err != nil {
		if errors.Is(err, game.ErrInvalidName) {
			return ws.protocolError(ctx, "invalid player name")
		}
		ws.logger.Error("create game failed", "error", err)
		return false
	}

	ws.attach(ctx, client)
	return true
}

func (ws *wsConn) join(ctx context.Context, code, name string) bool {
	if ws.client != nil {
		return ws.protocolError(ctx, "already in a game")
	}

	client, err := ws.reg.Join(ctx, code, name)
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrGameNotFound):
		return ws.send(ctx, game.GameNotFound()) == nil
	case errors.Is(err, game.ErrGameFull):
		return ws.send(ctx, game.GameFull()) == nil
	case errors.Is(err, game.ErrInvalidName):
		return ws.protocolError(ctx, "invalid player name")
	default:
		ws.logger.Error("join game failed", "game", code, "error", err)
		return false
	}

	ws.attach(ctx, client)
	return true
}

func (ws *wsConn) attach(ctx context.Context, client *engine.Client) {
	ws.client = client
	go ws.writeLoop(ctx)
}

// writeLoop copies game frames to the socket. The channel closing means the
// game tore down or dropped this subscriber for falling behind; either way
// the connection is done.
func (ws *wsConn) writeLoop(ctx context.Context) {
	for frame := range ws.client.Messages {
		wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
		err := ws.conn.Write(wctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			return
		}
	}
	ws.conn.Close(websocket.StatusNormalClosure, "game closed")
}

// protocolError reports a bad frame to the client and returns false once the
// connection has used up its allowance.
func (ws *wsConn) protocolError(ctx context.Context, msg string) bool {
	ws.malformed++
	if ws.malformed >= maxMalformed {
		ws.conn.Close(websocket.StatusPolicyViolation, "too many bad messages")
		return false
	}
	return ws.send(ctx, game.ErrorMessage(msg)) == nil
}

func (ws *wsConn) send(ctx context.Context, msg game.ServerMessage) error {
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return ws.conn.Write(wctx, websocket.MessageText, msg.Encode())
}

func (ws *wsConn) leave() {
	if ws.client != nil {
		ws.client.Leave()
	}
}
