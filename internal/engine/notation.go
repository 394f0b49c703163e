package engine

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reCoord = regexp.MustCompile(`^([a-h][1-8])([-x])([a-h][1-8])(?:=([NBRQ]))?$`)
	reAlg   = regexp.MustCompile(`^([KQRBN]?)([a-h]?)([1-8]?)(x?)([a-h][1-8])(?:=([NBRQ]))?$`)
)

// ParseMove resolves player-supplied move text against the position. Both the
// coordinate form ("e2-e4", "e4xd5", "d7-d8=Q") and short algebraic form
// ("Nf6", "exd5", "Qxh4+") are accepted; check/mate suffixes are ignored.
//
// Algebraic disambiguation between several candidate origins applies the
// explicit file/rank hints first. A remaining tie is broken by picking the
// candidate closest to the target (file+rank delta for knights, straight-line
// distance otherwise). That tie-break mirrors the reference client and is a
// heuristic, not official SAN: prefer coordinate notation when precision
// matters.
func ParseMove(p *Position, text string) (Move, error) {
	san := strings.TrimSpace(text)
	san = strings.TrimRight(san, "+#?!")
	if san == "" {
		return Move{}, fmt.Errorf("%w: empty move", ErrBadNotation)
	}

	if m, ok := parseCastle(p, san); ok {
		return m, nil
	}
	if g := reCoord.FindStringSubmatch(san); g != nil {
		from, _ := ParseSquare(g[1])
		to, _ := ParseSquare(g[3])
		return Move{From: from, To: to, Promotion: kindFromLetter(letterAt(g[4]))}, nil
	}
	if g := reAlg.FindStringSubmatch(san); g != nil {
		return resolveAlgebraic(p, g, text)
	}
	return Move{}, fmt.Errorf("%w: %q", ErrBadNotation, text)
}

func parseCastle(p *Position, san string) (Move, bool) {
	norm := strings.ReplaceAll(san, "0", "O")
	rank := 0
	if p.Turn == Black {
		rank = 7
	}
	from := MakeSquare(4, rank)
	switch norm {
	case "O-O":
		return Move{From: from, To: MakeSquare(6, rank)}, true
	case "O-O-O":
		return Move{From: from, To: MakeSquare(2, rank)}, true
	}
	return Move{}, false
}

func letterAt(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

func resolveAlgebraic(p *Position, g []string, text string) (Move, error) {
	kind := Pawn
	if g[1] != "" {
		kind = kindFromLetter(g[1][0])
	}
	to, _ := ParseSquare(g[5])
	promo := kindFromLetter(letterAt(g[6]))

	var candidates []Move
	seen := map[Square]bool{}
	for _, m := range LegalMoves(p) {
		if m.To != to || p.Board.At(m.From).Kind != kind {
			continue
		}
		if promo != NoPiece && m.Promotion != promo {
			continue
		}
		if promo == NoPiece && m.Promotion != NoPiece && m.Promotion != Queen {
			continue // unannotated promotions default to a queen
		}
		if seen[m.From] {
			continue
		}
		seen[m.From] = true
		candidates = append(candidates, m)
	}

	candidates = filterHint(candidates, g[2], g[3])
	switch len(candidates) {
	case 0:
		return Move{}, fmt.Errorf("%w: no piece can play %q", ErrIllegalMove, text)
	case 1:
		return candidates[0], nil
	}
	return closestCandidate(candidates, to, kind), nil
}

func filterHint(candidates []Move, fileHint, rankHint string) []Move {
	narrow := func(in []Move, keep func(Square) bool) []Move {
		var out []Move
		for _, m := range in {
			if keep(m.From) {
				out = append(out, m)
			}
		}
		if len(out) == 0 {
			return in
		}
		return out
	}
	if fileHint != "" {
		f := int(fileHint[0] - 'a')
		candidates = narrow(candidates, func(s Square) bool { return s.File() == f })
	}
	if rankHint != "" {
		r := int(rankHint[0] - '1')
		candidates = narrow(candidates, func(s Square) bool { return s.Rank() == r })
	}
	return candidates
}

// closestCandidate is the heuristic tie-break: minimal move distance to the
// target square.
func closestCandidate(candidates []Move, to Square, kind PieceKind) Move {
	best := candidates[0]
	bestDist := moveDistance(best.From, to, kind)
	for _, m := range candidates[1:] {
		if d := moveDistance(m.From, to, kind); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

func moveDistance(from, to Square, kind PieceKind) int {
	df, dr := abs(to.File()-from.File()), abs(to.Rank()-from.Rank())
	if kind == Knight {
		return df + dr
	}
	// squared straight-line distance orders the same as the Euclidean one
	return df*df + dr*dr
}

// SAN formats the move in standard algebraic notation relative to the
// position it is played in, including disambiguation hints, capture and
// promotion markers and a check/mate suffix.
func SAN(p *Position, m Move) string {
	if m.isCastle(p) {
		s := "O-O"
		if m.To.File() == 2 {
			s = "O-O-O"
		}
		return s + statusSuffix(p, m)
	}

	pc := p.Board.At(m.From)
	capture := !p.Board.At(m.To).Empty()

	var b strings.Builder
	if pc.Kind != Pawn {
		b.WriteByte(pc.Kind.Letter())
		file, rank := sanHints(p, m)
		if file {
			b.WriteByte(byte('a' + m.From.File()))
		}
		if rank {
			b.WriteByte(byte('1' + m.From.Rank()))
		}
	} else if capture {
		b.WriteByte(byte('a' + m.From.File()))
	}
	if capture {
		b.WriteByte('x')
	}
	b.WriteString(m.To.String())
	if m.Promotion != NoPiece {
		b.WriteByte('=')
		b.WriteByte(m.Promotion.Letter())
	}
	b.WriteString(statusSuffix(p, m))
	return b.String()
}

// sanHints decides which origin hints SAN needs: a file when another legal
// same-kind move to the target starts from a different file, a rank when one
// shares the file.
func sanHints(p *Position, m Move) (file, rank bool) {
	pc := p.Board.At(m.From)
	for _, other := range LegalMoves(p) {
		if other.From == m.From || other.To != m.To {
			continue
		}
		if p.Board.At(other.From).Kind != pc.Kind {
			continue
		}
		if other.From.File() != m.From.File() {
			file = true
		} else {
			rank = true
		}
	}
	return file, rank
}

func statusSuffix(p *Position, m Move) string {
	next := applyUnchecked(p, m)
	switch Status(&next) {
	case StatusCheckmate:
		return "#"
	case StatusCheck:
		return "+"
	}
	return ""
}
