package room

import (
	"time"

	"github.com/sabca0328/chess-ai-game/internal/engine"
)

// RoomStatus is the room lifecycle state.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// Role of a board occupant.
type Role string

const (
	RoleHost      Role = "host"
	RolePlayer    Role = "player"
	RoleAI        Role = "ai"
	RoleSpectator Role = "spectator"
)

// AIOccupantID is the fixed id of the in-room AI opponent.
const AIOccupantID = "ai-opponent"

// End reasons recorded when a room finishes.
const (
	EndCheckmate   = "checkmate"
	EndStalemate   = "stalemate"
	EndDraw        = "draw"
	EndResignation = "resignation"
	EndTimeout     = "timeout"
	EndAbandoned   = "abandoned"
)

// Player is a board occupant. Occupants are soft-deleted: leaving flips
// IsActive instead of removing the record, so a rejoin finds the same seat
// and color.
type Player struct {
	ID       string
	Name     string
	Color    engine.Color
	Role     Role
	IsActive bool
	JoinedAt time.Time
	LastSeen time.Time
}

// Spectator watches without holding a seat.
type Spectator struct {
	ID       string
	Name     string
	IsActive bool
	JoinedAt time.Time
	LastSeen time.Time
}

// OfferStatus tracks a draw offer or rematch request through its lifetime.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
)

// Offer is a pending draw offer or rematch request. Offers are queued rather
// than replaced so late or duplicate requests stay resolvable.
type Offer struct {
	ID          string
	RequesterID string
	Status      OfferStatus
	CreatedAt   time.Time
	ResolvedAt  time.Time
}

// MoveRecord is one applied ply. Records are append-only.
type MoveRecord struct {
	SAN      string
	Coord    string
	FEN      string
	PlayerID string
	At       time.Time
}

// ChatEntry is one line of the bounded room chat.
type ChatEntry struct {
	ID       string
	AuthorID string
	Author   string
	Text     string
	At       time.Time
}

// chatCap bounds the chat log; the oldest entry is evicted first.
const chatCap = 100

// Options configure a new room.
type Options struct {
	Name            string
	Rules           string
	AllowSpectators bool
	AllowAI         bool
	InitialSeconds  int
}

// roomState is the mutable state owned by a session's actor goroutine.
// Nothing outside the command loop touches it.
type roomState struct {
	id              string
	name            string
	rules           string
	allowSpectators bool
	allowAI         bool
	hostID          string

	status          RoomStatus
	pos             engine.Position
	clock           Clock
	initialSeconds  int
	players         []*Player
	specs           []*Spectator
	history         []MoveRecord
	drawOffers      []*Offer
	rematchRequests []*Offer
	chat            []ChatEntry

	winner    engine.Color
	hasWinner bool
	endReason string

	createdAt  time.Time
	updatedAt  time.Time
	finishedAt time.Time
}

func (st *roomState) playerByID(id string) *Player {
	for _, p := range st.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (st *roomState) spectatorByID(id string) *Spectator {
	for _, s := range st.specs {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (st *roomState) playerByColor(c engine.Color) *Player {
	for _, p := range st.players {
		if p.Color == c {
			return p
		}
	}
	return nil
}

func (st *roomState) activeHumans() int {
	n := 0
	for _, p := range st.players {
		if p.IsActive && p.Role != RoleAI {
			n++
		}
	}
	return n
}

func (st *roomState) activeOccupants() int {
	n := 0
	for _, p := range st.players {
		if p.IsActive {
			n++
		}
	}
	return n
}
