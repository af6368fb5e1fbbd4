// Package progression implements the deterministic character-progression
// rules: derived statistics, level-up, skill training, and class selection.
//
// Every operation is all-or-nothing: when a precondition fails the
// character is returned to the caller byte-for-byte unchanged.
package progression

import (
	"errors"
	"fmt"

	"github.com/foxobr/ficha-rpg/internal/game/catalog"
	"github.com/foxobr/ficha-rpg/internal/game/character"
)

// Progression constants.
const (
	BaseHP       = 10 // max HP at levels 0 and 1
	HPPerLevel   = 5  // max HP gained per level beyond the first
	SkillStep    = 3  // training bonus granted per investment
	CreationCap  = 3  // per-attribute cap during level 0 creation
	StandardCap  = 5  // per-attribute creation cap from level 1 on
	MinClassLvl  = 1  // minimum level to select a class
)

// Validation errors.
var (
	ErrEmptySkillName      = errors.New("progression: skill name must not be empty")
	ErrSkillAlreadyTrained = errors.New("progression: skill is already trained")
	ErrSkillNotTrained     = errors.New("progression: skill is not trained")
	ErrUnknownChoiceMode   = errors.New("progression: unknown skill choice mode")
	ErrClassTooEarly       = errors.New("progression: class selection requires level 1 or higher")
)

// MaxHP returns the maximum hit points for a character of the given level:
// 10 at levels 0 and 1, plus 5 per level thereafter.
//
// Postcondition: MaxHP(L+1)-MaxHP(L) == 5 for all L >= 1; MaxHP(0) == MaxHP(1) == 10.
func MaxHP(level int) int {
	if level <= 1 {
		return BaseHP
	}
	return BaseHP + (level-1)*HPPerLevel
}

// Movement returns the movement stat derived from agility.
func Movement(agility int) int {
	return 6 + agility
}

// Dodge returns the dodge stat derived from agility.
func Dodge(agility int) int {
	return 10 + agility
}

// AttributeCap returns the per-attribute cap that applies while the
// player distributes creation points: 3 at level 0, 5 from level 1 on.
// The cap binds only at initial distribution, never retroactively.
func AttributeCap(level int) int {
	if level == 0 {
		return CreationCap
	}
	return StandardCap
}

// ChoiceMode selects how the level-up skill investment is spent.
type ChoiceMode string

const (
	// ChoiceNew trains a skill the character has not trained before.
	ChoiceNew ChoiceMode = "new"
	// ChoiceImprove raises an already-trained skill by one step.
	ChoiceImprove ChoiceMode = "improve"
)

// SkillChoice is the mandatory skill investment of a level-up.
type SkillChoice struct {
	Mode      ChoiceMode
	SkillName string
}

// LevelUp advances the character one level: +1 level, +5 max HP, +5
// current HP (an existing damage deficit is preserved, current HP is not
// reset to the new maximum), and the chosen skill investment.
//
// Precondition: choice.SkillName must be non-empty; for ChoiceNew the
// skill must not be trained yet; for ChoiceImprove it must be.
// Postcondition: On error the character is unchanged. On success level,
// HP, and trainedSkills reflect exactly the effects above.
func LevelUp(c *character.Character, choice SkillChoice) error {
	if choice.SkillName == "" {
		return ErrEmptySkillName
	}

	_, trained := c.TrainedSkills[choice.SkillName]
	switch choice.Mode {
	case ChoiceNew:
		if trained {
			return fmt.Errorf("%w: %q", ErrSkillAlreadyTrained, choice.SkillName)
		}
	case ChoiceImprove:
		if !trained {
			return fmt.Errorf("%w: %q", ErrSkillNotTrained, choice.SkillName)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChoiceMode, choice.Mode)
	}

	// Preconditions hold; apply all effects.
	c.Level++
	c.MaxHP += HPPerLevel
	c.CurrentHP += HPPerLevel
	if c.TrainedSkills == nil {
		c.TrainedSkills = make(map[string]int)
	}
	c.TrainedSkills[choice.SkillName] += SkillStep
	return nil
}

// TrainSkill adds skillName as a trained skill at the initial bonus.
// Training an already-trained skill is rejected and never overwrites the
// existing bonus.
//
// Postcondition: On success trainedSkills[skillName] == SkillStep; on
// error the character is unchanged.
func TrainSkill(c *character.Character, skillName string) error {
	if skillName == "" {
		return ErrEmptySkillName
	}
	if _, ok := c.TrainedSkills[skillName]; ok {
		return fmt.Errorf("%w: %q", ErrSkillAlreadyTrained, skillName)
	}
	if c.TrainedSkills == nil {
		c.TrainedSkills = make(map[string]int)
	}
	c.TrainedSkills[skillName] = SkillStep
	return nil
}

// ApplyClassSelection sets the character's class and unions the class's
// granted skills into trainedSkills, initialising absent skills at the
// initial bonus. An existing higher bonus is never lowered, so
// re-applying a class is idempotent.
//
// Precondition: c.Level >= 1; class selection is forbidden during level 0
// creation.
// Postcondition: On error the character is unchanged.
func ApplyClassSelection(c *character.Character, cls catalog.Class) error {
	if c.Level < MinClassLvl {
		return ErrClassTooEarly
	}

	c.CharacterClass = cls.Name
	if c.TrainedSkills == nil {
		c.TrainedSkills = make(map[string]int)
	}
	for _, skill := range cls.GrantedSkills {
		if c.TrainedSkills[skill] < SkillStep {
			c.TrainedSkills[skill] = SkillStep
		}
	}
	return nil
}
