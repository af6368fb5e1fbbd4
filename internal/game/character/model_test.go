package character_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/foxobr/ficha-rpg/internal/game/character"
)

func TestNew_Defaults(t *testing.T) {
	c := character.New()

	assert.Equal(t, 0, c.Level)
	assert.Equal(t, 10, c.MaxHP)
	assert.Equal(t, 10, c.CurrentHP)
	assert.Equal(t, 1, c.Strength)
	assert.Equal(t, 1, c.Agility)
	assert.Equal(t, 1, c.Intelligence)
	assert.Equal(t, 1, c.Charisma)
	assert.Equal(t, 1, c.Vigor)
	assert.Equal(t, 10, c.Resources.Energy)
	assert.Equal(t, 10, c.Resources.MaxEnergy)
	assert.Equal(t, 0, c.Resources.Ammo)
	assert.Equal(t, 5, c.Resources.Food)
	assert.Equal(t, 5, c.Resources.Water)
	assert.Empty(t, c.TrainedSkills)
	assert.Empty(t, c.ActiveConditions)
}

func TestSetCurrentHP_Clamps(t *testing.T) {
	c := character.New()
	c.MaxHP = 15

	c.SetCurrentHP(20)
	assert.Equal(t, 15, c.CurrentHP, "HP must clamp at MaxHP")

	c.SetCurrentHP(-3)
	assert.Equal(t, 0, c.CurrentHP, "HP must clamp at zero")

	c.SetCurrentHP(7)
	assert.Equal(t, 7, c.CurrentHP)
}

func TestAddCondition_Idempotent(t *testing.T) {
	c := character.New()

	c.AddCondition("Envenenado")
	c.AddCondition("Envenenado")

	assert.Equal(t, []string{"Envenenado"}, c.ActiveConditions,
		"re-applying a condition must not duplicate it")
}

func TestRemoveCondition_AbsentIsNoOp(t *testing.T) {
	c := character.New()
	c.AddCondition("Queimado")

	c.RemoveCondition("Congelado")
	assert.Equal(t, []string{"Queimado"}, c.ActiveConditions)

	c.RemoveCondition("Queimado")
	assert.Empty(t, c.ActiveConditions)
	assert.False(t, c.HasCondition("Queimado"))
}

func TestAdjustResource_ClampsAtZero(t *testing.T) {
	c := character.New()

	c.AdjustResource("food", -100)
	assert.Equal(t, 0, c.Resources.Food)

	c.AdjustResource("ammo", 12)
	assert.Equal(t, 12, c.Resources.Ammo)

	c.AdjustResource("energy", 50)
	assert.Equal(t, c.Resources.MaxEnergy, c.Resources.Energy,
		"energy must not exceed maxEnergy")
}

func TestLogAction_AppendOnlyChronological(t *testing.T) {
	c := character.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c.LogAction("Atacou com faca", base)
	c.LogAction("Recarregou", base.Add(time.Minute))

	require.Len(t, c.CombatLog, 2)
	assert.Equal(t, "Atacou com faca", c.CombatLog[0].Action)
	assert.Equal(t, "Recarregou", c.CombatLog[1].Action)
	assert.Less(t, c.CombatLog[0].Timestamp, c.CombatLog[1].Timestamp)
}

func TestClone_Independent(t *testing.T) {
	c := character.New()
	c.TrainedSkills["Furtividade"] = 3
	c.AddCondition("Cego")
	c.LogAction("x", time.Now())

	clone := c.Clone()
	clone.TrainedSkills["Furtividade"] = 9
	clone.AddCondition("Surdo")
	clone.Skills = append(clone.Skills, "Pintura")

	assert.Equal(t, 3, c.TrainedSkills["Furtividade"], "clone mutation must not leak")
	assert.False(t, c.HasCondition("Surdo"))
	assert.Empty(t, c.Skills)
}

func TestAttribute_Lookup(t *testing.T) {
	c := character.New()
	c.Strength = 3
	c.Agility = 2

	assert.Equal(t, 3, c.Attribute(character.AttrStrength))
	assert.Equal(t, 2, c.Attribute(character.AttrAgility))
	assert.Equal(t, 0, c.Attribute(character.AttributeType("XYZ")))
}

// TestCondition_Property verifies add/remove idempotence over arbitrary
// sequences of condition mutations.
func TestCondition_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := character.New()
		names := rapid.SliceOfN(rapid.SampledFrom([]string{
			"Envenenado", "Queimado", "Congelado", "Cego",
		}), 1, 20).Draw(rt, "names")

		for _, n := range names {
			c.AddCondition(n)
		}

		seen := map[string]int{}
		for _, n := range c.ActiveConditions {
			seen[n]++
			assert.Equal(rt, 1, seen[n], "condition %q must appear at most once", n)
		}

		for _, n := range names {
			c.RemoveCondition(n)
			assert.False(rt, c.HasCondition(n))
		}
	})
}
