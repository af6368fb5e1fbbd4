// Package character defines the character-sheet domain model.
//
// The model is a transparent data structure: invariants (HP bounds,
// non-negative resources) are enforced by the mutating helpers, never by
// the struct itself. JSON field names are the persistence and export
// contract and must not change.
package character

import "time"

// AttributeType identifies one of the five base ability scores.
type AttributeType string

// Attribute identifiers, in sheet display order.
const (
	AttrStrength     AttributeType = "FOR"
	AttrAgility      AttributeType = "AGI"
	AttrIntelligence AttributeType = "INT"
	AttrCharisma     AttributeType = "CAR"
	AttrVigor        AttributeType = "VIG"
)

// Resources holds the consumable trackers on a sheet.
// All values are kept >= 0 by the mutating helpers.
type Resources struct {
	Energy    int `json:"energy"`
	MaxEnergy int `json:"maxEnergy"`
	Ammo      int `json:"ammo"`
	Food      int `json:"food"`
	Water     int `json:"water"`
}

// CombatLogEntry is one line of the append-only combat log.
type CombatLogEntry struct {
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

// Character is one player's persisted sheet.
//
// TrainedSkills maps skill name to training bonus; every bonus is a
// positive multiple of 3. CombatLog is append-only and chronological.
type Character struct {
	ID               string            `json:"id"`
	SessionID        string            `json:"sessionId,omitempty"`
	CharacterName    string            `json:"characterName"`
	PlayerName       string            `json:"playerName"`
	Level            int               `json:"level"`
	ExperiencePoints int               `json:"experiencePoints"`
	MaxHP            int               `json:"maxHP"`
	CurrentHP        int               `json:"currentHP"`
	Background       string            `json:"background"`
	Strength         int               `json:"strength"`
	Agility          int               `json:"agility"`
	Intelligence     int               `json:"intelligence"`
	Charisma         int               `json:"charisma"`
	Vigor            int               `json:"vigor"`
	CharacterClass   string            `json:"characterClass"`
	VA               int               `json:"va"`
	Weapons          string            `json:"weapons"`
	Armor            string            `json:"armor"`
	Items            string            `json:"items"`
	Skills           []string          `json:"skills"`
	TrainedSkills    map[string]int    `json:"trainedSkills"`
	ActiveConditions []string          `json:"activeConditions"`
	CombatLog        []CombatLogEntry  `json:"combatLog"`
	Resources        Resources         `json:"resources"`
	Timestamp        string            `json:"timestamp,omitempty"`
	BackupTimestamp  string            `json:"backupTimestamp,omitempty"`
}

// New returns a fresh sheet with the standard starting values: a level 0
// character with 10/10 HP, all abilities at 1, and default supplies.
func New() *Character {
	return &Character{
		Level:            0,
		ExperiencePoints: 0,
		MaxHP:            10,
		CurrentHP:        10,
		Strength:         1,
		Agility:          1,
		Intelligence:     1,
		Charisma:         1,
		Vigor:            1,
		VA:               0,
		Skills:           []string{},
		TrainedSkills:    map[string]int{},
		ActiveConditions: []string{},
		CombatLog:        []CombatLogEntry{},
		Resources: Resources{
			Energy:    10,
			MaxEnergy: 10,
			Ammo:      0,
			Food:      5,
			Water:     5,
		},
	}
}

// Clone returns a deep copy of the character. Mutating the copy never
// affects the original; progression operations rely on this for
// all-or-nothing semantics.
func (c *Character) Clone() *Character {
	out := *c

	if c.Skills != nil {
		out.Skills = make([]string, len(c.Skills))
		copy(out.Skills, c.Skills)
	}
	if c.TrainedSkills != nil {
		out.TrainedSkills = make(map[string]int, len(c.TrainedSkills))
		for k, v := range c.TrainedSkills {
			out.TrainedSkills[k] = v
		}
	}
	if c.ActiveConditions != nil {
		out.ActiveConditions = make([]string, len(c.ActiveConditions))
		copy(out.ActiveConditions, c.ActiveConditions)
	}
	if c.CombatLog != nil {
		out.CombatLog = make([]CombatLogEntry, len(c.CombatLog))
		copy(out.CombatLog, c.CombatLog)
	}
	return &out
}

// Attribute returns the base score for the given attribute type, or 0 for
// an unknown type.
func (c *Character) Attribute(attr AttributeType) int {
	switch attr {
	case AttrStrength:
		return c.Strength
	case AttrAgility:
		return c.Agility
	case AttrIntelligence:
		return c.Intelligence
	case AttrCharisma:
		return c.Charisma
	case AttrVigor:
		return c.Vigor
	}
	return 0
}

// SetCurrentHP sets current HP clamped to [0, MaxHP].
//
// Postcondition: c.CurrentHP is within [0, c.MaxHP].
func (c *Character) SetCurrentHP(hp int) {
	if hp < 0 {
		hp = 0
	}
	if hp > c.MaxHP {
		hp = c.MaxHP
	}
	c.CurrentHP = hp
}

// AdjustResource applies a delta to the named resource, clamping the
// result at zero. Unknown names are ignored.
func (c *Character) AdjustResource(name string, delta int) {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	switch name {
	case "energy":
		c.Resources.Energy = clamp(c.Resources.Energy + delta)
		if c.Resources.Energy > c.Resources.MaxEnergy {
			c.Resources.Energy = c.Resources.MaxEnergy
		}
	case "maxEnergy":
		c.Resources.MaxEnergy = clamp(c.Resources.MaxEnergy + delta)
		if c.Resources.Energy > c.Resources.MaxEnergy {
			c.Resources.Energy = c.Resources.MaxEnergy
		}
	case "ammo":
		c.Resources.Ammo = clamp(c.Resources.Ammo + delta)
	case "food":
		c.Resources.Food = clamp(c.Resources.Food + delta)
	case "water":
		c.Resources.Water = clamp(c.Resources.Water + delta)
	}
}

// LogAction appends an entry to the combat log at the given time.
// The log is append-only; entries are never reordered or removed.
func (c *Character) LogAction(action string, at time.Time) {
	c.CombatLog = append(c.CombatLog, CombatLogEntry{
		Action:    action,
		Timestamp: at.Format(time.RFC3339),
	})
}

// HasCondition reports whether the named condition is currently active.
func (c *Character) HasCondition(name string) bool {
	for _, cond := range c.ActiveConditions {
		if cond == name {
			return true
		}
	}
	return false
}

// AddCondition activates the named condition. Adding an already-active
// condition is a no-op; ActiveConditions never holds duplicates.
//
// Postcondition: HasCondition(name) is true and name appears exactly once.
func (c *Character) AddCondition(name string) {
	if c.HasCondition(name) {
		return
	}
	c.ActiveConditions = append(c.ActiveConditions, name)
}

// RemoveCondition deactivates the named condition. Removing an absent
// condition is a no-op, not an error.
//
// Postcondition: HasCondition(name) is false.
func (c *Character) RemoveCondition(name string) {
	out := c.ActiveConditions[:0]
	for _, cond := range c.ActiveConditions {
		if cond != name {
			out = append(out, cond)
		}
	}
	c.ActiveConditions = out
}
