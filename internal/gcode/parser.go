package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MoveType classifies a parsed movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0 in XY
	MoveFeed                    // G1 in XY, cutting
	MoveArc                     // G2/G3, cutting
	MovePlunge                  // Z down without XY movement
	MoveRetract                 // Z up
)

func (t MoveType) String() string {
	switch t {
	case MoveRapid:
		return "rapid"
	case MoveFeed:
		return "feed"
	case MoveArc:
		return "arc"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	}
	return "unknown"
}

// Move is one parsed movement in absolute coordinates.
type Move struct {
	Type             MoveType
	FromX, FromY     float64
	FromZ            float64
	ToX, ToY, ToZ    float64
	FeedRate         float64
	Clockwise        bool    // G2, for arcs
	CenterX, CenterY float64 // for arcs
}

// Length returns the path length of the move.
func (m Move) Length() float64 {
	if m.Type != MoveArc {
		return math.Sqrt(sq(m.ToX-m.FromX) + sq(m.ToY-m.FromY) + sq(m.ToZ-m.FromZ))
	}
	r := math.Hypot(m.FromX-m.CenterX, m.FromY-m.CenterY)
	a0 := math.Atan2(m.FromY-m.CenterY, m.FromX-m.CenterX)
	a1 := math.Atan2(m.ToY-m.CenterY, m.ToX-m.CenterX)
	sweep := a1 - a0
	if m.Clockwise {
		sweep = a0 - a1
	}
	for sweep <= 1e-9 {
		sweep += 2 * math.Pi
	}
	return r * sweep
}

func sq(v float64) float64 { return v * v }

var wordRe = regexp.MustCompile(`([XYZFIJ])(-?\d+\.?\d*)`)

// Parse reads G0/G1/G2/G3 moves from a program, tracking the absolute
// position. Comments in ";" and "( )" form and other commands are skipped.
func Parse(code string) []Move {
	var moves []Move
	var x, y, z, feed float64

	for _, line := range strings.Split(code, "\n") {
		line = stripComments(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		cmd, _, _ := strings.Cut(upper, " ")

		var kind MoveType
		clockwise := false
		switch cmd {
		case "G0", "G00":
			kind = MoveRapid
		case "G1", "G01":
			kind = MoveFeed
		case "G2", "G02":
			kind, clockwise = MoveArc, true
		case "G3", "G03":
			kind = MoveArc
		default:
			continue
		}

		nx, ny, nz := x, y, z
		var i, j float64
		for _, m := range wordRe.FindAllStringSubmatch(upper, -1) {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				nx = v
			case "Y":
				ny = v
			case "Z":
				nz = v
			case "F":
				feed = v
			case "I":
				i = v
			case "J":
				j = v
			}
		}

		mv := Move{
			Type:  classify(kind, x, y, z, nx, ny, nz),
			FromX: x, FromY: y, FromZ: z,
			ToX: nx, ToY: ny, ToZ: nz,
			FeedRate: feed,
		}
		if kind == MoveArc {
			mv.Type = MoveArc
			mv.Clockwise = clockwise
			mv.CenterX, mv.CenterY = x+i, y+j
		}
		moves = append(moves, mv)
		x, y, z = nx, ny, nz
	}
	return moves
}

func stripComments(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	for {
		start := strings.Index(line, "(")
		if start < 0 {
			break
		}
		end := strings.Index(line[start:], ")")
		if end < 0 {
			line = line[:start]
			break
		}
		line = line[:start] + line[start+end+1:]
	}
	return strings.TrimSpace(line)
}

func classify(kind MoveType, fromX, fromY, fromZ, toX, toY, toZ float64) MoveType {
	dz := toZ - fromZ
	moved := fromX != toX || fromY != toY
	switch {
	case dz > 1e-3:
		return MoveRetract
	case kind == MoveRapid:
		return MoveRapid
	case dz < -1e-3 && !moved:
		return MovePlunge
	}
	return kind
}

// Summary describes a parsed program.
type Summary struct {
	Moves       int
	Plunges     int
	CutLength   float64 // feed and arc moves in XY
	RapidLength float64
	// CutTime is the time spent at feed rate; rapids are not included.
	CutTime time.Duration

	// Extent of the cutting moves
	MinX, MinY, MaxX, MaxY float64
}

// Summarize totals the lengths and feed time of moves.
func Summarize(moves []Move) Summary {
	s := Summary{Moves: len(moves), MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	minutes := 0.0
	for _, m := range moves {
		switch m.Type {
		case MoveRapid, MoveRetract:
			s.RapidLength += m.Length()
			continue
		case MovePlunge:
			s.Plunges++
		default:
			s.CutLength += m.Length()
			s.MinX = math.Min(s.MinX, math.Min(m.FromX, m.ToX))
			s.MinY = math.Min(s.MinY, math.Min(m.FromY, m.ToY))
			s.MaxX = math.Max(s.MaxX, math.Max(m.FromX, m.ToX))
			s.MaxY = math.Max(s.MaxY, math.Max(m.FromY, m.ToY))
		}
		if m.FeedRate > 0 {
			minutes += m.Length() / m.FeedRate
		}
	}
	if s.CutLength == 0 {
		s.MinX, s.MinY, s.MaxX, s.MaxY = 0, 0, 0, 0
	}
	s.CutTime = time.Duration(minutes * float64(time.Minute))
	return s
}
