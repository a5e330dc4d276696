package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/erazemk/pantrypal/internal/pantry"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// LiveHandler streams pantry snapshots over a WebSocket.
type LiveHandler struct {
	Pantry   *pantry.Service
	Upgrader websocket.Upgrader
}

type snapshotFrame struct {
	Type string `json:"type"`
	*pantry.View
}

// Serve handles GET /api/items/live. The client receives the sorted list
// right away and again after every change to the user's pantry, until it
// disconnects.
func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	list := pantry.NewListModel(h.Pantry, func(v *pantry.View) {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(snapshotFrame{Type: "snapshot", View: v}); err != nil {
			slog.Warn("writing snapshot", "user", claims.UserID, "error", err)
			cancel()
		}
	})
	if err := list.Show(ctx, claims.UserID); err != nil {
		slog.Error("subscribing to pantry", "user", claims.UserID, "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "failed to load pantry"),
			time.Now().Add(writeWait))
		return
	}
	// Runs before conn.Close, so no snapshot write outlives the connection.
	defer list.Close()

	// The client sends nothing but control frames; reading keeps pongs and
	// the close handshake flowing.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
