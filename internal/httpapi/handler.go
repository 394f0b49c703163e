// Package httpapi exposes the lobby and game operations over JSON HTTP and a
// websocket event feed. Handlers stay thin: decode, call the room layer, map
// the error to a status code.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sabca0328/chess-ai-game/internal/engine"
	"github.com/sabca0328/chess-ai-game/internal/obslog"
	"github.com/sabca0328/chess-ai-game/internal/room"
	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

// LobbyLister serves the lobby listing from the snapshot store. Optional;
// without it the handler lists live rooms from the registry.
type LobbyLister interface {
	ListLobby(ctx context.Context) ([]roomdto.RoomSummary, error)
}

// Suggester produces a full advisory analysis for the ai-suggest endpoint.
type Suggester interface {
	Suggest(ctx context.Context, fen string, history []string, level int) (roomdto.Suggestion, error)
}

type Handler struct {
	reg     *room.Registry
	lobby   LobbyLister
	suggest Suggester
	clock   int
}

// New builds the API handler. lobby and suggest may be nil when redis or the
// advisory service is not configured.
func New(reg *room.Registry, lobby LobbyLister, suggest Suggester, clockSeconds int) *Handler {
	if clockSeconds <= 0 {
		clockSeconds = room.DefaultClockSeconds
	}
	return &Handler{reg: reg, lobby: lobby, suggest: suggest, clock: clockSeconds}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/lobby/rooms", h.handleListRooms)
	mux.HandleFunc("/api/lobby/create-room", h.handleCreateRoom)
	mux.HandleFunc("/api/game/join", h.handleJoin)
	mux.HandleFunc("/api/game/start", h.handleStart)
	mux.HandleFunc("/api/game/move", h.handleMove)
	mux.HandleFunc("/api/game/resign", h.handleResign)
	mux.HandleFunc("/api/game/offer-draw", h.handleOfferDraw)
	mux.HandleFunc("/api/game/accept-draw", h.handleAcceptDraw)
	mux.HandleFunc("/api/game/rematch", h.handleRequestRematch)
	mux.HandleFunc("/api/game/accept-rematch", h.handleAcceptRematch)
	mux.HandleFunc("/api/game/leave", h.handleLeave)
	mux.HandleFunc("/api/game/chat", h.handleChat)
	mux.HandleFunc("/api/game/heartbeat", h.handleHeartbeat)
	mux.HandleFunc("/api/game/add-ai", h.handleAddAI)
	mux.HandleFunc("/api/game/status", h.handleStatus)
	mux.HandleFunc("/api/game/ai-suggest", h.handleSuggest)
	mux.HandleFunc("/api/game/watch", h.handleWatch)
}

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var rooms []roomdto.RoomSummary
	if h.lobby != nil {
		var err error
		rooms, err = h.lobby.ListLobby(r.Context())
		if err != nil {
			obslog.L().Warn("lobby_list_failed", zap.Error(err))
			rooms = h.reg.List(r.Context())
		}
	} else {
		rooms = h.reg.List(r.Context())
	}
	if rooms == nil {
		rooms = []roomdto.RoomSummary{}
	}
	writeSuccess(w, map[string]any{"rooms": rooms})
}

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomdto.CreateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.UserName) == "" {
		writeError(w, http.StatusBadRequest, "userId and userName are required")
		return
	}
	opts := room.Options{
		Name:            req.Name,
		Rules:           req.Rules,
		AllowSpectators: true,
		AllowAI:         true,
		InitialSeconds:  h.clock,
	}
	if req.AllowSpectators != nil {
		opts.AllowSpectators = *req.AllowSpectators
	}
	if req.AllowAI != nil {
		opts.AllowAI = *req.AllowAI
	}
	s, err := h.reg.Create(opts)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	view, err := s.Join(r.Context(), req.UserID, req.UserName, room.RolePlayer)
	if err != nil {
		h.reg.Remove(s.ID())
		writeMappedError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"room": view})
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req roomdto.JoinRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.reg.Get(req.RoomID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	role := room.RolePlayer
	switch strings.ToLower(strings.TrimSpace(req.Role)) {
	case "", "player":
	case "spectator":
		role = room.RoleSpectator
	default:
		writeError(w, http.StatusBadRequest, "role must be player or spectator")
		return
	}
	view, err := s.Join(r.Context(), req.UserID, req.UserName, role)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"room": view})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, func(ctx context.Context, s *room.Session, req *actionRequest) (roomdto.RoomView, error) {
		return s.Start(ctx, req.UserID)
	})
}

func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	var req roomdto.MoveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.reg.Get(req.RoomID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	res, err := s.Move(r.Context(), req.UserID, req.Move)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"move": res})
}

func (h *Handler) handleResign(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, func(ctx context.Context, s *room.Session, req *actionRequest) (roomdto.RoomView, error) {
		return s.Resign(ctx, req.UserID)
	})
}

func (h *Handler) handleOfferDraw(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, func(ctx context.Context, s *room.Session, req *actionRequest) (roomdto.RoomView, error) {
		return s.OfferDraw(ctx, req.UserID)
	})
}

func (h *Handler) handleAcceptDraw(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, func(ctx context.Context, s *room.Session, req *actionRequest) (roomdto.RoomView, error) {
		return s.AcceptDraw(ctx, req.UserID, req.ID)
	})
}

func (h *Handler) handleRequestRematch(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, func(ctx context.Context, s *room.Session, req *actionRequest) (roomdto.RoomView, error) {
		return s.RequestRematch(ctx, req.UserID)
	})
}

func (h *Handler) handleAcceptRematch(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, func(ctx context.Context, s *room.Session, req *actionRequest) (roomdto.RoomView, error) {
		return s.AcceptRematch(ctx, req.UserID, req.ID)
	})
}

func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, func(ctx context.Context, s *room.Session, req *actionRequest) (roomdto.RoomView, error) {
		return s.Leave(ctx, req.UserID)
	})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req roomdto.ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.reg.Get(req.RoomID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	view, err := s.Chat(r.Context(), req.UserID, req.Text)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"room": view})
}

func (h *Handler) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req roomdto.HeartbeatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.reg.Get(req.RoomID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	if err := s.Heartbeat(r.Context(), req.UserID); err != nil {
		writeMappedError(w, err)
		return
	}
	writeSuccess(w, nil)
}

func (h *Handler) handleAddAI(w http.ResponseWriter, r *http.Request) {
	h.roomAction(w, r, func(ctx context.Context, s *room.Session, req *actionRequest) (roomdto.RoomView, error) {
		return s.AddAI(ctx, req.UserID)
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
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
	view, err := s.View(r.Context())
	if err != nil {
		writeMappedError(w, err)
		return
	}
	if userID := strings.TrimSpace(r.URL.Query().Get("userId")); userID != "" {
		// A status poll doubles as a liveness signal.
		_ = s.Heartbeat(r.Context(), userID)
	}
	writeSuccess(w, map[string]any{"room": view})
}

func (h *Handler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req roomdto.SuggestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if h.suggest == nil {
		writeError(w, http.StatusServiceUnavailable, "advisory service is not configured")
		return
	}
	s, err := h.reg.Get(req.RoomID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	view, err := s.View(r.Context())
	if err != nil {
		writeMappedError(w, err)
		return
	}
	history := make([]string, 0, len(view.MoveHistory))
	for _, m := range view.MoveHistory {
		history = append(history, m.SAN)
	}
	suggestion, err := h.suggest.Suggest(r.Context(), view.FEN, history, req.Level)
	if err != nil {
		obslog.L().Warn("suggest_failed", zap.String("room_id", req.RoomID), zap.Error(err))
	}
	writeSuccess(w, map[string]any{"suggestion": suggestion})
}

// actionRequest covers the operations that only need the room, the caller and
// at most an offer or request id.
type actionRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	ID     string `json:"id"`
}

func (h *Handler) roomAction(w http.ResponseWriter, r *http.Request, fn func(context.Context, *room.Session, *actionRequest) (roomdto.RoomView, error)) {
	var req actionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s, err := h.reg.Get(req.RoomID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	view, err := fn(r.Context(), s, &req)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeSuccess(w, map[string]any{"room": view})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeSuccess(w http.ResponseWriter, extra map[string]any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	payload := map[string]any{"success": true}
	for k, v := range extra {
		payload[k] = v
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeMappedError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrOfferNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrNotAPlayer),
		errors.Is(err, room.ErrNotOccupant),
		errors.Is(err, room.ErrNotHost),
		errors.Is(err, room.ErrOwnOffer):
		return http.StatusForbidden
	case errors.Is(err, room.ErrRoomFull),
		errors.Is(err, room.ErrRoomNameTaken),
		errors.Is(err, room.ErrRoomClosed),
		errors.Is(err, room.ErrSpectatingDisabled),
		errors.Is(err, room.ErrAIDisabled),
		errors.Is(err, room.ErrAlreadyStarted),
		errors.Is(err, room.ErrNotStarted),
		errors.Is(err, room.ErrNotEnoughPlayers),
		errors.Is(err, room.ErrGameFinished),
		errors.Is(err, room.ErrGameNotFinished),
		errors.Is(err, room.ErrNotYourTurn),
		errors.Is(err, room.ErrClockExpired):
		return http.StatusConflict
	case errors.Is(err, room.ErrValidation),
		errors.Is(err, room.ErrInvalidRole),
		errors.Is(err, engine.ErrIllegalMove),
		errors.Is(err, engine.ErrBadNotation),
		errors.Is(err, engine.ErrBadFEN):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
