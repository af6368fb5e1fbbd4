package progression

import (
	"fmt"

	"github.com/foxobr/ficha-rpg/internal/game/dice"
)

// SkillTestResult is the audit trail of one skill test.
type SkillTestResult struct {
	D20       int // raw d20 result
	Attribute int // attribute value added
	Modifier  int // situational modifier (trained bonus, circumstances)
	Total     int
}

// String returns a human-readable breakdown, e.g. "d20:14 +2 +3 = 19".
func (r SkillTestResult) String() string {
	return fmt.Sprintf("d20:%d %+d %+d = %d", r.D20, r.Attribute, r.Modifier, r.Total)
}

// SkillTest rolls a d20 and adds the attribute value and a flat modifier.
//
// Precondition: src must be non-nil.
// Postcondition: result.Total == result.D20 + attribute + modifier, with
// D20 in [1, 20].
func SkillTest(attribute, modifier int, src dice.Source) SkillTestResult {
	d20 := src.Intn(20) + 1
	return SkillTestResult{
		D20:       d20,
		Attribute: attribute,
		Modifier:  modifier,
		Total:     d20 + attribute + modifier,
	}
}

// DamageRoll parses and rolls a damage expression such as "2d6+3".
//
// Precondition: src must be non-nil.
// Postcondition: Returns the roll audit or a validation error for
// malformed or out-of-range expressions; input is never clamped.
func DamageRoll(expr string, src dice.Source) (dice.RollResult, error) {
	return dice.RollExpr(expr, src)
}
