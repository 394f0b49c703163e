package roomdto

import "time"

// RoomView is the full room snapshot returned by join/status/move and pushed
// over the watch stream. Field names match the wire protocol consumed by the
// web client.
type RoomView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Status          string          `json:"status"`
	HostID          string          `json:"hostId"`
	Rules           string          `json:"rules"`
	AllowSpectators bool            `json:"allowSpectators"`
	AllowAI         bool            `json:"allowAI"`
	Players         []PlayerView    `json:"players"`
	Spectators      []SpectatorView `json:"spectators"`
	FEN             string          `json:"fen"`
	MoveHistory     []MoveView      `json:"moveHistory"`
	Clock           ClockView       `json:"clock"`
	DrawOffers      []OfferView     `json:"drawOffers"`
	RematchRequests []OfferView     `json:"rematchRequests"`
	Chat            []ChatMessage   `json:"chat"`
	Winner          string          `json:"winner,omitempty"`
	EndReason       string          `json:"endReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type PlayerView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	Role     string    `json:"role"`
	IsActive bool      `json:"isActive"`
	LastSeen time.Time `json:"lastSeen"`
}

type SpectatorView struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	IsActive bool      `json:"isActive"`
	LastSeen time.Time `json:"lastSeen"`
}

// MoveView is one recorded ply.
type MoveView struct {
	SAN       string    `json:"san"`
	Coord     string    `json:"coord"`
	FEN       string    `json:"fen"`
	PlayerID  string    `json:"playerId"`
	Timestamp time.Time `json:"timestamp"`
}

// ClockView reports remaining time in whole seconds per side.
type ClockView struct {
	White       int       `json:"white"`
	Black       int       `json:"black"`
	ActiveColor string    `json:"activeColor"`
	IsRunning   bool      `json:"isRunning"`
	LastUpdate  time.Time `json:"lastUpdate"`
}

// OfferView covers both draw offers and rematch requests.
type OfferView struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requesterId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	ResolvedAt  time.Time `json:"resolvedAt,omitempty"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MoveResult is the response body of a successful move: the normalized SAN of
// the applied ply, the engine status after it and the refreshed snapshot.
type MoveResult struct {
	SAN        string   `json:"san"`
	Coord      string   `json:"coord"`
	FEN        string   `json:"fen"`
	GameStatus string   `json:"gameStatus"`
	Room       RoomView `json:"room"`
}

// RoomSummary is the lobby listing entry.
type RoomSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Players    int       `json:"players"`
	Spectators int       `json:"spectators"`
	AllowAI    bool      `json:"allowAI"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Event is one entry of the room event stream.
type Event struct {
	Type   string       `json:"type"`
	RoomID string       `json:"roomId"`
	At     time.Time    `json:"at"`
	Actor  string       `json:"actor,omitempty"`
	Move   *MoveView    `json:"move,omitempty"`
	Chat   *ChatMessage `json:"chat,omitempty"`
	Room   *RoomView    `json:"room,omitempty"`
}

// Event types emitted by a game session.
const (
	EventJoin    = "join"
	EventLeave   = "leave"
	EventStart   = "start"
	EventMove    = "move"
	EventChat    = "chat"
	EventDraw    = "draw_offer"
	EventRematch = "rematch_request"
	EventFinish  = "finish"
	EventReset   = "reset"
	EventState   = "state"
)
