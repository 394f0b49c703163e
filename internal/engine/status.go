package engine

import "errors"

// Engine errors. They are sentinels so callers can classify failures without
// string matching.
var (
	ErrIllegalMove = errors.New("illegal move")
	ErrBadNotation = errors.New("unparsable move notation")
	ErrBadFEN      = errors.New("invalid position string")
)

// GameStatus classifies a position from the perspective of the side to move.
type GameStatus string

const (
	StatusOngoing   GameStatus = "ongoing"
	StatusCheck     GameStatus = "check"
	StatusCheckmate GameStatus = "checkmate"
	StatusStalemate GameStatus = "stalemate"
	StatusDraw      GameStatus = "draw"
)

// Terminal reports whether the status ends the game.
func (s GameStatus) Terminal() bool {
	return s == StatusCheckmate || s == StatusStalemate || s == StatusDraw
}

// Status evaluates the position: checkmate when the side to move is in check
// with no legal reply, stalemate when not in check with no legal reply, draw
// on insufficient mating material, check or ongoing otherwise.
func Status(p *Position) GameStatus {
	inCheck := p.InCheck()
	if !HasLegalMove(p) {
		if inCheck {
			return StatusCheckmate
		}
		return StatusStalemate
	}
	if insufficientMaterial(p) {
		return StatusDraw
	}
	if inCheck {
		return StatusCheck
	}
	return StatusOngoing
}

// insufficientMaterial detects dead positions: king vs king, optionally with a
// single minor piece on either side. Anything with a pawn, rook or queen, or
// with two or more minors, is treated as playable.
func insufficientMaterial(p *Position) bool {
	minors := 0
	for sq := Square(0); sq < 64; sq++ {
		switch p.Board[sq].Kind {
		case NoPiece, King:
		case Bishop, Knight:
			minors++
			if minors > 1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
