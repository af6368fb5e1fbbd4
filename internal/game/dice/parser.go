package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Grammar bounds. Expressions outside these limits are rejected, never
// clamped.
const (
	MaxCount = 20  // maximum number of dice per roll
	MaxSides = 100 // maximum faces per die
	MinSides = 2
)

// Expression represents a parsed dice expression ready to be rolled.
// Precondition: 1 <= Count <= MaxCount and MinSides <= Sides <= MaxSides
// after successful Parse.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
}

// Parse parses a dice expression string into an Expression.
// The accepted grammar is exactly "NdM" or "NdM±K": an explicit die count,
// the letter 'd', the die size, and an optional signed flat modifier.
// Examples: "2d6", "3d20+5", "4d8-2".
//
// Precondition: expr must be non-empty.
// Postcondition: Returns a validated Expression or a descriptive error;
// out-of-range counts and sizes are rejected, not clamped.
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))

	dIdx := strings.Index(s, "d")
	if dIdx <= 0 {
		return Expression{}, fmt.Errorf("dice: invalid expression %q: expected form NdM or NdM±K", raw)
	}

	count, err := strconv.Atoi(s[:dIdx])
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
	}
	if count < 1 || count > MaxCount {
		return Expression{}, fmt.Errorf("dice: die count in %q must be 1-%d, got %d", raw, MaxCount, count)
	}

	rest := s[dIdx+1:]

	// Locate an optional trailing modifier. The sign is never at position 0;
	// die sides are unsigned.
	modOffset := -1
	for i := 1; i < len(rest); i++ {
		if rest[i] == '+' || rest[i] == '-' {
			modOffset = i
			break
		}
	}

	sidesStr := rest
	modStr := ""
	if modOffset >= 0 {
		sidesStr = rest[:modOffset]
		modStr = rest[modOffset:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < MinSides || sides > MaxSides {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be %d-%d, got %d", raw, MinSides, MaxSides, sides)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}

	return Expression{
		Raw:      raw,
		Count:    count,
		Sides:    sides,
		Modifier: modifier,
	}, nil
}
