package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/sabca0328/chess-ai-game/internal/obslog"
	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

const watchWriteTimeout = 10 * time.Second

// handleWatch upgrades to a websocket and streams the room's event feed. The
// first frame is a full state snapshot so the client can render immediately.
func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	roomID := strings.TrimSpace(r.URL.Query().Get("roomId"))
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "roomId is required")
		return
	}
	s, err := h.reg.Get(roomID)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode:    websocket.CompressionNoContextTakeover,
		InsecureSkipVerify: true,
	})
	if err != nil {
		obslog.L().Warn("watch_accept_failed", zap.String("room_id", roomID), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	events, cancel := s.Subscribe()
	defer cancel()

	ctx := r.Context()

	view, err := s.View(ctx)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "room closed")
		return
	}
	snapshot := roomdto.Event{Type: roomdto.EventState, RoomID: roomID, At: time.Now(), Room: &view}
	if err := writeEvent(ctx, conn, snapshot); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done():
			conn.Close(websocket.StatusGoingAway, "room closed")
			return
		case evt := <-events:
			if err := writeEvent(ctx, conn, evt); err != nil {
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt roomdto.Event) error {
	wctx, cancel := context.WithTimeout(ctx, watchWriteTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, evt)
}
