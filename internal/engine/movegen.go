package engine

// Move is a half-move: origin, target and an optional promotion kind. Castling
// is expressed as the two-file king jump (e1-g1, e1-c1, e8-g8, e8-c8).
type Move struct {
	From      Square
	To        Square
	Promotion PieceKind
}

// Coord formats the move in coordinate notation against the position it is
// about to be played in, e.g. "e2-e4", "e4xd5", "d7-d8=Q".
func (m Move) Coord(p *Position) string {
	sep := byte('-')
	if !p.Board.At(m.To).Empty() {
		sep = 'x'
	}
	s := m.From.String() + string(sep) + m.To.String()
	if m.Promotion != NoPiece {
		s += "=" + string(m.Promotion.Letter())
	}
	return s
}

func (m Move) isCastle(p *Position) bool {
	pc := p.Board.At(m.From)
	return pc.Kind == King && abs(m.To.File()-m.From.File()) == 2
}

var knightOffsets = [8][2]int{
	{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
	{1, -2}, {1, 2}, {2, -1}, {2, 1},
}

var kingOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1}, {0, -1},
	{0, 1}, {1, -1}, {1, 0}, {1, 1},
}

var rookDirs = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// pathClear reports whether all squares strictly between from and to are
// empty. Both squares must share a rank, file or diagonal.
func pathClear(p *Position, from, to Square) bool {
	df, dr := sign(to.File()-from.File()), sign(to.Rank()-from.Rank())
	f, r := from.File()+df, from.Rank()+dr
	for f != to.File() || r != to.Rank() {
		if !p.Board[MakeSquare(f, r)].Empty() {
			return false
		}
		f += df
		r += dr
	}
	return true
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// canReach tests the bare movement rule for the piece on from towards to,
// including sliding-piece blocking. Pawn forward moves require empty targets;
// pawn diagonals require an enemy occupant. attackOnly relaxes the pawn rule
// to pure diagonal geometry, which is what attack scans need for squares that
// happen to be empty.
func canReach(p *Position, from, to Square, attackOnly bool) bool {
	pc := p.Board.At(from)
	if pc.Empty() || from == to {
		return false
	}
	victim := p.Board.At(to)
	if !victim.Empty() && victim.Color == pc.Color {
		return false
	}
	df, dr := abs(to.File()-from.File()), abs(to.Rank()-from.Rank())
	switch pc.Kind {
	case Knight:
		return (df == 2 && dr == 1) || (df == 1 && dr == 2)
	case Bishop:
		return df == dr && pathClear(p, from, to)
	case Rook:
		return (df == 0 || dr == 0) && pathClear(p, from, to)
	case Queen:
		return (df == dr || df == 0 || dr == 0) && pathClear(p, from, to)
	case King:
		return df <= 1 && dr <= 1
	case Pawn:
		dir := 1
		homeRank := 1
		if pc.Color == Black {
			dir = -1
			homeRank = 6
		}
		step := to.Rank() - from.Rank()
		if df == 1 && step == dir {
			// diagonal capture
			return attackOnly || !victim.Empty()
		}
		if attackOnly || df != 0 || !victim.Empty() {
			return false
		}
		if step == dir {
			return true
		}
		// double push from the home rank through an empty square
		return step == 2*dir && from.Rank() == homeRank &&
			p.Board[MakeSquare(from.File(), from.Rank()+dir)].Empty()
	}
	return false
}

// IsSquareAttacked reports whether any piece of color by attacks sq. The scan
// short-circuits on the first attacker.
func IsSquareAttacked(p *Position, sq Square, by Color) bool {
	if !sq.Valid() {
		return false
	}
	for from := Square(0); from < 64; from++ {
		pc := p.Board[from]
		if pc.Empty() || pc.Color != by {
			continue
		}
		if canReach(p, from, sq, true) {
			return true
		}
	}
	return false
}

func promotionRank(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// pseudoMovesFrom generates moves obeying piece movement rules but not the
// self-check filter. Pawn moves onto the last rank expand into one move per
// promotion kind.
func pseudoMovesFrom(p *Position, from Square) []Move {
	pc := p.Board.At(from)
	if pc.Empty() || pc.Color != p.Turn {
		return nil
	}
	var out []Move
	push := func(to Square) {
		if pc.Kind == Pawn && to.Rank() == promotionRank(pc.Color) {
			for _, k := range [...]PieceKind{Queen, Rook, Bishop, Knight} {
				out = append(out, Move{From: from, To: to, Promotion: k})
			}
			return
		}
		out = append(out, Move{From: from, To: to})
	}
	switch pc.Kind {
	case Knight:
		for _, o := range knightOffsets {
			f, r := from.File()+o[0], from.Rank()+o[1]
			if f < 0 || f > 7 || r < 0 || r > 7 {
				continue
			}
			if to := MakeSquare(f, r); canReach(p, from, to, false) {
				push(to)
			}
		}
	case King:
		for _, o := range kingOffsets {
			f, r := from.File()+o[0], from.Rank()+o[1]
			if f < 0 || f > 7 || r < 0 || r > 7 {
				continue
			}
			if to := MakeSquare(f, r); canReach(p, from, to, false) {
				push(to)
			}
		}
		for _, to := range castleTargets(p, from) {
			out = append(out, Move{From: from, To: to})
		}
	case Pawn:
		dir := 1
		if pc.Color == Black {
			dir = -1
		}
		for _, o := range [...][2]int{{0, dir}, {0, 2 * dir}, {-1, dir}, {1, dir}} {
			f, r := from.File()+o[0], from.Rank()+o[1]
			if f < 0 || f > 7 || r < 0 || r > 7 {
				continue
			}
			if to := MakeSquare(f, r); canReach(p, from, to, false) {
				push(to)
			}
		}
	default: // sliding pieces
		dirs := rookDirs[:]
		switch pc.Kind {
		case Bishop:
			dirs = bishopDirs[:]
		case Queen:
			dirs = append(append([][2]int{}, rookDirs[:]...), bishopDirs[:]...)
		}
		for _, d := range dirs {
			for i := 1; i < 8; i++ {
				f, r := from.File()+d[0]*i, from.Rank()+d[1]*i
				if f < 0 || f > 7 || r < 0 || r > 7 {
					break
				}
				to := MakeSquare(f, r)
				victim := p.Board[to]
				if victim.Empty() {
					push(to)
					continue
				}
				if victim.Color != pc.Color {
					push(to)
				}
				break
			}
		}
	}
	return out
}

// castleTargets returns the castling destinations available to the king on
// from. Castling here is geometric: the king must stand on its home square
// with a rook on the matching corner, the path between them clear, and the
// king neither in check nor crossing an attacked square. Whether either piece
// has moved before is not tracked.
func castleTargets(p *Position, from Square) []Square {
	pc := p.Board.At(from)
	if pc.Kind != King {
		return nil
	}
	homeRank := 0
	if pc.Color == Black {
		homeRank = 7
	}
	if from != MakeSquare(4, homeRank) {
		return nil
	}
	if IsSquareAttacked(p, from, pc.Color.Other()) {
		return nil
	}
	var out []Square
	for _, side := range [...]struct{ rookFile, kingFile int }{{7, 6}, {0, 2}} {
		rookSq := MakeSquare(side.rookFile, homeRank)
		rook := p.Board[rookSq]
		if rook.Kind != Rook || rook.Color != pc.Color {
			continue
		}
		if !pathClear(p, from, rookSq) {
			continue
		}
		// the king may not cross or land on an attacked square
		mid := MakeSquare((4+side.kingFile)/2, homeRank)
		to := MakeSquare(side.kingFile, homeRank)
		if squareSafeForKing(p, from, mid, pc.Color) && squareSafeForKing(p, from, to, pc.Color) {
			out = append(out, to)
		}
	}
	return out
}

// squareSafeForKing tests whether sq is free of enemy attacks once the king
// leaves from.
func squareSafeForKing(p *Position, from, sq Square, c Color) bool {
	tmp := *p
	tmp.Board[sq] = tmp.Board[from]
	tmp.Board[from] = Piece{}
	return !IsSquareAttacked(&tmp, sq, c.Other())
}

// LegalMovesFrom returns the legal moves for the piece on from, filtering out
// any pseudo-legal move that would leave the mover's own king attacked.
// Callers must not rely on ordering.
func LegalMovesFrom(p *Position, from Square) []Move {
	pseudo := pseudoMovesFrom(p, from)
	out := pseudo[:0]
	for _, m := range pseudo {
		next := applyUnchecked(p, m)
		if king := next.KingSquare(p.Turn); king == NoSquare ||
			!IsSquareAttacked(&next, king, p.Turn.Other()) {
			out = append(out, m)
		}
	}
	return out
}

// LegalMoves returns every legal move for the side to move.
func LegalMoves(p *Position) []Move {
	var out []Move
	for sq := Square(0); sq < 64; sq++ {
		pc := p.Board[sq]
		if !pc.Empty() && pc.Color == p.Turn {
			out = append(out, LegalMovesFrom(p, sq)...)
		}
	}
	return out
}

// HasLegalMove reports whether the side to move has at least one legal move.
func HasLegalMove(p *Position) bool {
	for sq := Square(0); sq < 64; sq++ {
		pc := p.Board[sq]
		if !pc.Empty() && pc.Color == p.Turn {
			if len(LegalMovesFrom(p, sq)) > 0 {
				return true
			}
		}
	}
	return false
}

// applyUnchecked performs the board mechanics of m without legality checks.
func applyUnchecked(p *Position, m Move) Position {
	next := *p
	pc := next.Board.At(m.From)
	capture := !next.Board.At(m.To).Empty()

	next.Board[m.To] = pc
	next.Board[m.From] = Piece{}

	if m.isCastle(p) {
		rank := m.From.Rank()
		if m.To.File() == 6 { // king side
			next.Board[MakeSquare(5, rank)] = next.Board[MakeSquare(7, rank)]
			next.Board[MakeSquare(7, rank)] = Piece{}
		} else { // queen side
			next.Board[MakeSquare(3, rank)] = next.Board[MakeSquare(0, rank)]
			next.Board[MakeSquare(0, rank)] = Piece{}
		}
	}

	if m.Promotion != NoPiece {
		next.Board[m.To] = Piece{Kind: m.Promotion, Color: pc.Color}
	}

	if pc.Kind == Pawn || capture {
		next.HalfMoves = 0
	} else {
		next.HalfMoves++
	}
	if next.Turn == Black {
		next.FullMoves++
	}
	next.Turn = next.Turn.Other()
	return next
}

// ResolveMove matches m against the legal move set of p and returns the fully
// specified legal move, defaulting an unannotated promotion to a queen. Moves
// absent from the legal set fail with ErrIllegalMove.
func ResolveMove(p *Position, m Move) (Move, error) {
	for _, legal := range LegalMovesFrom(p, m.From) {
		if legal.To != m.To {
			continue
		}
		if legal.Promotion == m.Promotion ||
			(m.Promotion == NoPiece && legal.Promotion == Queen) {
			return legal, nil
		}
	}
	return Move{}, ErrIllegalMove
}

// Apply validates m against the legal move set of p and returns the successor
// position (recompute-and-check, never trust-the-caller).
func Apply(p *Position, m Move) (Position, error) {
	legal, err := ResolveMove(p, m)
	if err != nil {
		return Position{}, err
	}
	return applyUnchecked(p, legal), nil
}
