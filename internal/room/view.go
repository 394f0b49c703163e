package room

import (
	"github.com/sabca0328/chess-ai-game/internal/engine"
	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

// snapshot builds a deep-copied wire view of the state. Called only from
// inside the command loop; the returned value is safe to hand to other
// goroutines.
func (st *roomState) snapshot() roomdto.RoomView {
	v := roomdto.RoomView{
		ID:              st.id,
		Name:            st.name,
		Status:          string(st.status),
		HostID:          st.hostID,
		Rules:           st.rules,
		AllowSpectators: st.allowSpectators,
		AllowAI:         st.allowAI,
		FEN:             engine.Encode(&st.pos),
		EndReason:       st.endReason,
		CreatedAt:       st.createdAt,
		UpdatedAt:       st.updatedAt,
		Players:         make([]roomdto.PlayerView, 0, len(st.players)),
		Spectators:      make([]roomdto.SpectatorView, 0, len(st.specs)),
		MoveHistory:     make([]roomdto.MoveView, 0, len(st.history)),
		DrawOffers:      offerViews(st.drawOffers),
		RematchRequests: offerViews(st.rematchRequests),
		Chat:            make([]roomdto.ChatMessage, 0, len(st.chat)),
	}
	if st.hasWinner {
		v.Winner = st.winner.String()
	}
	for _, p := range st.players {
		v.Players = append(v.Players, roomdto.PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			Color:    p.Color.String(),
			Role:     string(p.Role),
			IsActive: p.IsActive,
			LastSeen: p.LastSeen,
		})
	}
	for _, s := range st.specs {
		v.Spectators = append(v.Spectators, roomdto.SpectatorView{
			ID:       s.ID,
			Name:     s.Name,
			IsActive: s.IsActive,
			LastSeen: s.LastSeen,
		})
	}
	for _, m := range st.history {
		v.MoveHistory = append(v.MoveHistory, moveView(m))
	}
	for _, c := range st.chat {
		v.Chat = append(v.Chat, roomdto.ChatMessage{
			ID:        c.ID,
			AuthorID:  c.AuthorID,
			Author:    c.Author,
			Text:      c.Text,
			Timestamp: c.At,
		})
	}
	v.Clock = roomdto.ClockView{
		White:       int(st.clock.White.Seconds()),
		Black:       int(st.clock.Black.Seconds()),
		ActiveColor: st.clock.Active.String(),
		IsRunning:   st.clock.Running,
		LastUpdate:  st.clock.LastUpdate,
	}
	return v
}

func (st *roomState) summary() roomdto.RoomSummary {
	return roomdto.RoomSummary{
		ID:         st.id,
		Name:       st.name,
		Status:     string(st.status),
		Players:    st.activeOccupants(),
		Spectators: len(st.specs),
		AllowAI:    st.allowAI,
		CreatedAt:  st.createdAt,
	}
}

func moveView(m MoveRecord) roomdto.MoveView {
	return roomdto.MoveView{
		SAN:       m.SAN,
		Coord:     m.Coord,
		FEN:       m.FEN,
		PlayerID:  m.PlayerID,
		Timestamp: m.At,
	}
}

func offerViews(offers []*Offer) []roomdto.OfferView {
	out := make([]roomdto.OfferView, 0, len(offers))
	for _, o := range offers {
		out = append(out, roomdto.OfferView{
			ID:          o.ID,
			RequesterID: o.RequesterID,
			Status:      string(o.Status),
			CreatedAt:   o.CreatedAt,
			ResolvedAt:  o.ResolvedAt,
		})
	}
	return out
}
