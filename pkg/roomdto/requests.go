package roomdto

// CreateRoomRequest opens a new room. The creator takes the first seat.
type CreateRoomRequest struct {
	Name            string `json:"name"`
	UserID          string `json:"userId"`
	UserName        string `json:"userName"`
	Rules           string `json:"rules,omitempty"`
	AllowSpectators *bool  `json:"allowSpectators,omitempty"`
	AllowAI         *bool  `json:"allowAI,omitempty"`
}

type JoinRequest struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Role     string `json:"role,omitempty"` // "player" (default) or "spectator"
}

type StartRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type MoveRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Move   string `json:"move"`
}

type ResignRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type OfferRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// AcceptRequest resolves a pending draw offer or rematch request.
type AcceptRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	ID     string `json:"id"`
}

type LeaveRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type ChatRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

type HeartbeatRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type AddAIRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// SuggestRequest asks the advisory service for a hint on the current position.
type SuggestRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Level  int    `json:"level,omitempty"`
}

// Suggestion is the advisory response. The fields mirror the JSON the
// advisory model is prompted to produce; when its output is unusable the
// server substitutes a neutral fallback.
type Suggestion struct {
	BestMove         string   `json:"bestMove"`
	AlternativeMoves []string `json:"alternativeMoves,omitempty"`
	Hint             string   `json:"hint,omitempty"`
	PositionSummary  string   `json:"positionSummary,omitempty"`
}
