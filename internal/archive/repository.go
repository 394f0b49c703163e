// Package archive writes final game results to Postgres. The room registry
// calls it fire-and-forget when a game finishes; a missing DATABASE_URL
// simply disables archiving.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/sabca0328/chess-ai-game/pkg/roomdto"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts the final state of a room into game_results. Replays of
// the same room id (a rematch finishing again) overwrite the previous row.
func (r *Repository) SaveResult(ctx context.Context, v roomdto.RoomView) error {
	if r == nil || r.db == nil {
		return nil
	}

	white, black := seatNames(v)
	san, coords := moveLists(v)
	sanRaw, _ := json.Marshal(san)
	coordRaw, _ := json.Marshal(coords)
	duration := v.UpdatedAt.Sub(v.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO game_results (
	    room_id, room_name, white_id, white_name, black_id, black_name,
	    result, end_reason, moves_san, moves_coord, pgn,
	    started_at, ended_at, duration_ms
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
	  ) ON CONFLICT (room_id) DO UPDATE SET
	    room_name=EXCLUDED.room_name,
	    white_id=EXCLUDED.white_id,
	    white_name=EXCLUDED.white_name,
	    black_id=EXCLUDED.black_id,
	    black_name=EXCLUDED.black_name,
	    result=EXCLUDED.result,
	    end_reason=EXCLUDED.end_reason,
	    moves_san=EXCLUDED.moves_san,
	    moves_coord=EXCLUDED.moves_coord,
	    pgn=EXCLUDED.pgn,
	    started_at=EXCLUDED.started_at,
	    ended_at=EXCLUDED.ended_at,
	    duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		v.ID, v.Name,
		white.ID, white.Name,
		black.ID, black.Name,
		v.Winner, v.EndReason,
		string(sanRaw), string(coordRaw), BuildPGN(v),
		v.CreatedAt, v.UpdatedAt, duration,
	)
	return err
}

// BuildPGN renders the finished game as PGN text from the SAN history.
func BuildPGN(v roomdto.RoomView) string {
	white, black := seatNames(v)
	date := v.UpdatedAt
	if date.IsZero() {
		date = time.Now()
	}
	result := pgnResult(v.Winner)

	var b strings.Builder
	b.WriteString("[Event \"Casual Game\"]\n")
	fmt.Fprintf(&b, "[Site \"%s\"]\n", sanitizePGN(v.Name))
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	fmt.Fprintf(&b, "[White \"%s\"]\n", sanitizePGN(white.Name))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", sanitizePGN(black.Name))
	if strings.TrimSpace(v.EndReason) != "" {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", sanitizePGN(v.EndReason))
	}
	fmt.Fprintf(&b, "[Result \"%s\"]\n\n", result)

	for i := 0; i < len(v.MoveHistory); i += 2 {
		fmt.Fprintf(&b, "%d. %s", i/2+1, v.MoveHistory[i].SAN)
		if i+1 < len(v.MoveHistory) {
			b.WriteString(" ")
			b.WriteString(v.MoveHistory[i+1].SAN)
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func pgnResult(winner string) string {
	switch winner {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	case "":
		return "1/2-1/2"
	}
	return "*"
}

func seatNames(v roomdto.RoomView) (white, black roomdto.PlayerView) {
	for _, p := range v.Players {
		switch p.Color {
		case "white":
			white = p
		case "black":
			black = p
		}
	}
	return white, black
}

func moveLists(v roomdto.RoomView) (san, coords []string) {
	san = make([]string, 0, len(v.MoveHistory))
	coords = make([]string, 0, len(v.MoveHistory))
	for _, m := range v.MoveHistory {
		san = append(san, m.SAN)
		coords = append(coords, m.Coord)
	}
	return san, coords
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
