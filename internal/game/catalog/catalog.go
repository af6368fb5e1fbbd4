// Package catalog exposes the static game catalogs: playable classes,
// skill categories, and status conditions. Catalogs are loaded once from
// YAML and are read-only afterwards.
package catalog

import (
	"fmt"

	"github.com/foxobr/ficha-rpg/internal/game/character"
)

// Class is a playable class definition. Selecting a class grants its
// skills as trained skills plus a pool of bonus distribution points.
type Class struct {
	Name             string
	GrantedSkills    []string
	AdditionalPoints int
}

// Skill is one entry of the skill catalog.
type Skill struct {
	Name       string
	Category   string
	Attributes []character.AttributeType
}

// Condition is the display metadata for a status condition.
type Condition struct {
	Icon  string
	Color string
}

// FallbackCondition is returned for condition names absent from the
// catalog. Game masters may author conditions ad hoc, so unknown names
// must degrade gracefully instead of failing.
var FallbackCondition = Condition{Icon: "⚠️", Color: "#ff6b35"}

// Catalog is the resolved, validated set of all static game data.
// It is safe for concurrent use once constructed.
type Catalog struct {
	classes       map[string]Class
	categoryOrder []string
	byCategory    map[string][]Skill
	byName        map[string]Skill
	conditions    map[string]Condition
}

// New builds a Catalog from raw definitions.
//
// Skill names must be globally unique across categories: the sheet stores
// trained skills keyed by bare name, so a collision would make lookups
// ambiguous. Construction fails fast on the first duplicate.
//
// Precondition: category names must be unique; class granted skills should
// reference catalog skills (unreferenced names are tolerated).
// Postcondition: Returns a validated Catalog or a non-nil error.
func New(classes []Class, categories []SkillCategory, conditions map[string]Condition) (*Catalog, error) {
	c := &Catalog{
		classes:    make(map[string]Class, len(classes)),
		byCategory: make(map[string][]Skill, len(categories)),
		byName:     make(map[string]Skill),
		conditions: make(map[string]Condition, len(conditions)),
	}

	for _, cls := range classes {
		if cls.Name == "" {
			return nil, fmt.Errorf("catalog: class with empty name")
		}
		if _, dup := c.classes[cls.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate class %q", cls.Name)
		}
		c.classes[cls.Name] = cls
	}

	for _, cat := range categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("catalog: skill category with empty name")
		}
		if _, dup := c.byCategory[cat.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate skill category %q", cat.Name)
		}
		c.categoryOrder = append(c.categoryOrder, cat.Name)

		skills := make([]Skill, 0, len(cat.Skills))
		for _, s := range cat.Skills {
			if s.Name == "" {
				return nil, fmt.Errorf("catalog: skill with empty name in category %q", cat.Name)
			}
			if prev, dup := c.byName[s.Name]; dup {
				return nil, fmt.Errorf("catalog: skill %q defined in both %q and %q",
					s.Name, prev.Category, cat.Name)
			}
			skill := Skill{Name: s.Name, Category: cat.Name, Attributes: s.Attributes}
			c.byName[s.Name] = skill
			skills = append(skills, skill)
		}
		c.byCategory[cat.Name] = skills
	}

	for name, cond := range conditions {
		c.conditions[name] = cond
	}

	return c, nil
}

// Class returns the class definition for name.
func (c *Catalog) Class(name string) (Class, bool) {
	cls, ok := c.classes[name]
	return cls, ok
}

// ClassNames returns all class names in unspecified order.
func (c *Catalog) ClassNames() []string {
	out := make([]string, 0, len(c.classes))
	for name := range c.classes {
		out = append(out, name)
	}
	return out
}

// SkillCategories returns the category names in catalog insertion order.
func (c *Catalog) SkillCategories() []string {
	out := make([]string, len(c.categoryOrder))
	copy(out, c.categoryOrder)
	return out
}

// SkillsInCategory returns the skills of the named category in catalog
// order, or nil for an unknown category.
func (c *Catalog) SkillsInCategory(category string) []Skill {
	skills, ok := c.byCategory[category]
	if !ok {
		return nil
	}
	out := make([]Skill, len(skills))
	copy(out, skills)
	return out
}

// SkillByName returns the skill with the given name.
func (c *Catalog) SkillByName(name string) (Skill, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Condition returns the display metadata for the named condition, falling
// back to FallbackCondition for unknown names. The second return reports
// whether the name was found in the catalog.
func (c *Catalog) Condition(name string) (Condition, bool) {
	if cond, ok := c.conditions[name]; ok {
		return cond, true
	}
	return FallbackCondition, false
}

// ConditionNames returns all catalogued condition names in unspecified order.
func (c *Catalog) ConditionNames() []string {
	out := make([]string, 0, len(c.conditions))
	for name := range c.conditions {
		out = append(out, name)
	}
	return out
}
