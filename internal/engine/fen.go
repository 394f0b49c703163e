package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode serializes the position into the compact FEN-like form used on the
// wire: eight rank groups from rank 8 to rank 1, a space, and the side-to-move
// letter. Castling and en-passant fields are omitted; Decode(Encode(p))
// round-trips board and turn.
func Encode(p *Position) string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.Board[MakeSquare(file, rank)]
			if pc.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteByte(byte('0' + empty))
				empty = 0
			}
			b.WriteByte(pc.FENLetter())
		}
		if empty > 0 {
			b.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}
	b.WriteByte(' ')
	b.WriteByte(p.Turn.Letter())
	return b.String()
}

// Decode parses a FEN-like string. Only the placement and side-to-move fields
// are consulted; trailing standard-FEN fields (castling, en passant, counters)
// are tolerated so full FEN inputs load too, with the move counters picked up
// when present. Positions without exactly one king per color are rejected.
func Decode(s string) (Position, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 2 {
		return Position{}, fmt.Errorf("%w: need placement and side to move", ErrBadFEN)
	}

	p := Position{FullMoves: 1}
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Position{}, fmt.Errorf("%w: expected 8 ranks, got %d", ErrBadFEN, len(ranks))
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			if file > 7 {
				return Position{}, fmt.Errorf("%w: rank %d overflows", ErrBadFEN, rank+1)
			}
			upper := c &^ byte(0x20)
			kind := kindFromLetter(upper)
			if kind == NoPiece {
				return Position{}, fmt.Errorf("%w: bad piece letter %q", ErrBadFEN, string(c))
			}
			color := White
			if c >= 'a' {
				color = Black
			}
			p.Board[MakeSquare(file, rank)] = Piece{Kind: kind, Color: color}
			file++
		}
		if file != 8 {
			return Position{}, fmt.Errorf("%w: rank %d has %d files", ErrBadFEN, rank+1, file)
		}
	}

	switch fields[1] {
	case "w":
		p.Turn = White
	case "b":
		p.Turn = Black
	default:
		return Position{}, fmt.Errorf("%w: bad side to move %q", ErrBadFEN, fields[1])
	}

	if len(fields) >= 6 {
		if n, err := strconv.Atoi(fields[4]); err == nil && n >= 0 {
			p.HalfMoves = n
		}
		if n, err := strconv.Atoi(fields[5]); err == nil && n >= 1 {
			p.FullMoves = n
		}
	}

	for _, c := range [...]Color{White, Black} {
		if n := countKings(&p, c); n != 1 {
			return Position{}, fmt.Errorf("%w: %s has %d kings", ErrBadFEN, c, n)
		}
	}
	return p, nil
}

func countKings(p *Position, c Color) int {
	n := 0
	for sq := Square(0); sq < 64; sq++ {
		if pc := p.Board[sq]; pc.Kind == King && pc.Color == c {
			n++
		}
	}
	return n
}
