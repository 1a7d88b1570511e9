package gcode

import (
	"strconv"
	"strings"
)

// MoveKind classifies a toolpath movement.
type MoveKind int

const (
	KindRapid   MoveKind = iota // G0 positioning, no cutting
	KindFeed                    // G1 cutting move in the XY plane
	KindPlunge                  // G1 straight down into material
	KindRetract                 // Z-up move, rapid or feed
)

func (k MoveKind) String() string {
	switch k {
	case KindFeed:
		return "feed"
	case KindPlunge:
		return "plunge"
	case KindRetract:
		return "retract"
	default:
		return "rapid"
	}
}

// Move is one parsed G0/G1 command with the absolute positions it connects.
type Move struct {
	Kind     MoveKind
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
}

// Parse reads a program into structured moves. Position state is tracked
// across lines (absolute coordinates assumed, as every generated program
// starts with G90) and each G0/G1 is classified by what it does to the tool.
// Lines that are not linear moves (comments, spindle control, homing) are
// skipped.
func Parse(program string) []Move {
	var moves []Move

	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0

	for _, line := range strings.Split(program, "\n") {
		words := strings.Fields(stripComments(line))
		if len(words) == 0 {
			continue
		}

		isRapid, isFeed := classifyCommand(words[0])
		if !isRapid && !isFeed {
			continue
		}

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		for _, w := range words[1:] {
			if len(w) < 2 {
				continue
			}
			val, err := strconv.ParseFloat(w[1:], 64)
			if err != nil {
				continue
			}
			switch w[0] {
			case 'X', 'x':
				newX = val
			case 'Y', 'y':
				newY = val
			case 'Z', 'z':
				newZ = val
			case 'F', 'f':
				newFeed = val
			}
		}

		moves = append(moves, Move{
			Kind:     classifyMove(isRapid, curX, curY, curZ, newX, newY, newZ),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
		})

		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}

	return moves
}

// stripComments removes semicolon and parenthetical comments from one line.
func stripComments(line string) string {
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "("); i >= 0 {
		if end := strings.Index(line, ")"); end > i {
			line = line[:i] + line[end+1:]
		} else {
			line = line[:i]
		}
	}
	return strings.TrimSpace(line)
}

// classifyCommand reports whether the first word of a line is a rapid or a
// feed move command.
func classifyCommand(word string) (isRapid, isFeed bool) {
	switch strings.ToUpper(word) {
	case "G0", "G00":
		return true, false
	case "G1", "G01":
		return false, true
	}
	return false, false
}

// classifyMove maps a linear move onto its kind: pure Z-down feeds are
// plunges, Z-up moves without XY travel are retracts, and rapids keep their
// kind unless they retract.
func classifyMove(isRapid bool, fromX, fromY, fromZ, toX, toY, toZ float64) MoveKind {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return KindRetract
		}
		return KindRapid
	case zDelta < -0.001 && !hasXY:
		return KindPlunge
	case zDelta > 0.001 && !hasXY:
		return KindRetract
	default:
		return KindFeed
	}
}
