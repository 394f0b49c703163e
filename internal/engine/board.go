// Package engine implements the chess rules used by the game server: board
// representation, legal move generation, check/checkmate/stalemate detection,
// coordinate and algebraic notation parsing, and a compact FEN-like position
// encoding.
//
// The ruleset intentionally matches the reference client rather than the full
// FIDE rules: castling is validated geometrically (a two-file king jump from
// the home square with a clear path and no check along the way, without
// tracking whether king or rook have moved) and en passant is not supported.
package engine

import (
	"errors"
	"fmt"
)

// Color identifies a chess side.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing side.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Letter returns the FEN side-to-move letter.
func (c Color) Letter() byte {
	if c == White {
		return 'w'
	}
	return 'b'
}

// PieceKind identifies a piece type. The zero value marks an empty square.
type PieceKind uint8

const (
	NoPiece PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{0, 'P', 'N', 'B', 'R', 'Q', 'K'}

// Letter returns the uppercase English piece letter ('P', 'N', ...).
func (k PieceKind) Letter() byte { return kindLetters[k] }

func kindFromLetter(b byte) PieceKind {
	switch b {
	case 'P':
		return Pawn
	case 'N':
		return Knight
	case 'B':
		return Bishop
	case 'R':
		return Rook
	case 'Q':
		return Queen
	case 'K':
		return King
	}
	return NoPiece
}

// Piece is an occupant of a board square.
type Piece struct {
	Kind  PieceKind
	Color Color
}

// Empty reports whether the piece slot is unoccupied.
func (p Piece) Empty() bool { return p.Kind == NoPiece }

// FENLetter returns the FEN letter for the piece: uppercase for white,
// lowercase for black.
func (p Piece) FENLetter() byte {
	l := p.Kind.Letter()
	if p.Color == Black {
		l += 'a' - 'A'
	}
	return l
}

// Square addresses a board cell. Squares are numbered rank-major from a1 (0)
// to h8 (63).
type Square int8

// NoSquare is the invalid square sentinel.
const NoSquare Square = -1

// MakeSquare builds a square from zero-based file and rank coordinates.
func MakeSquare(file, rank int) Square { return Square(rank*8 + file) }

// ParseSquare parses a square given in algebraic form, e.g. "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return MakeSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// File returns the column number (0..7, a..h).
func (s Square) File() int { return int(s & 7) }

// Rank returns the row number (0..7, ranks 1..8).
func (s Square) Rank() int { return int(s >> 3) }

// Valid reports whether the square lies on the board.
func (s Square) Valid() bool { return s >= 0 && s < 64 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// Board is a square-centric piece placement.
type Board [64]Piece

// At returns the piece on sq, or the empty piece for off-board squares.
func (b *Board) At(sq Square) Piece {
	if !sq.Valid() {
		return Piece{}
	}
	return b[sq]
}

// Position is a full game state: placement, side to move and move counters.
// Positions are value types; Apply returns a successor rather than mutating.
type Position struct {
	Board     Board
	Turn      Color
	HalfMoves int
	FullMoves int
}

var errNoKing = errors.New("position has no king for side to move")

// Initial returns the standard chess starting position.
func Initial() Position {
	var b Board
	back := [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f := 0; f < 8; f++ {
		b[MakeSquare(f, 0)] = Piece{Kind: back[f], Color: White}
		b[MakeSquare(f, 1)] = Piece{Kind: Pawn, Color: White}
		b[MakeSquare(f, 6)] = Piece{Kind: Pawn, Color: Black}
		b[MakeSquare(f, 7)] = Piece{Kind: back[f], Color: Black}
	}
	return Position{Board: b, Turn: White, FullMoves: 1}
}

// KingSquare locates the king of the given color, or NoSquare when absent.
func (p *Position) KingSquare(c Color) Square {
	for sq := Square(0); sq < 64; sq++ {
		if pc := p.Board[sq]; pc.Kind == King && pc.Color == c {
			return sq
		}
	}
	return NoSquare
}

// InCheck reports whether the side to move is currently in check.
func (p *Position) InCheck() bool {
	king := p.KingSquare(p.Turn)
	if king == NoSquare {
		return false
	}
	return IsSquareAttacked(p, king, p.Turn.Other())
}
