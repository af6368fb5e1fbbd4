package catalog

import (
	"embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/foxobr/ficha-rpg/internal/game/character"
)

//go:embed content/*.yaml
var content embed.FS

// SkillCategory is the raw YAML shape of one skill category. Categories
// appear in the sheet in file order, so the file uses a list, not a map.
type SkillCategory struct {
	Name   string     `yaml:"name"`
	Skills []SkillDef `yaml:"skills"`
}

// SkillDef is the raw YAML shape of one skill.
type SkillDef struct {
	Name       string                    `yaml:"name"`
	Attributes []character.AttributeType `yaml:"attributes"`
}

type classFile struct {
	Classes []classDef `yaml:"classes"`
}

type classDef struct {
	Name             string   `yaml:"name"`
	GrantedSkills    []string `yaml:"granted_skills"`
	AdditionalPoints int      `yaml:"additional_points"`
}

type skillFile struct {
	Categories []SkillCategory `yaml:"categories"`
}

type conditionFile struct {
	Conditions []conditionDef `yaml:"conditions"`
}

type conditionDef struct {
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

// LoadFS reads classes.yaml, skills.yaml, and conditions.yaml from fsys
// and builds a validated Catalog.
//
// Precondition: all three files must exist and parse.
// Postcondition: Returns a non-nil Catalog or a descriptive error.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var cf classFile
	if err := readYAML(fsys, "classes.yaml", &cf); err != nil {
		return nil, err
	}

	var sf skillFile
	if err := readYAML(fsys, "skills.yaml", &sf); err != nil {
		return nil, err
	}

	var df conditionFile
	if err := readYAML(fsys, "conditions.yaml", &df); err != nil {
		return nil, err
	}

	classes := make([]Class, 0, len(cf.Classes))
	for _, c := range cf.Classes {
		classes = append(classes, Class{
			Name:             c.Name,
			GrantedSkills:    c.GrantedSkills,
			AdditionalPoints: c.AdditionalPoints,
		})
	}

	conditions := make(map[string]Condition, len(df.Conditions))
	for _, d := range df.Conditions {
		if d.Name == "" {
			return nil, fmt.Errorf("catalog: condition with empty name")
		}
		if _, dup := conditions[d.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate condition %q", d.Name)
		}
		conditions[d.Name] = Condition{Icon: d.Icon, Color: d.Color}
	}

	return New(classes, sf.Categories, conditions)
}

// Default builds the Catalog from the content embedded in the binary.
//
// Postcondition: Returns a validated Catalog; an error here means the
// embedded content itself is broken.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(content, "content")
	if err != nil {
		return nil, fmt.Errorf("catalog: opening embedded content: %w", err)
	}
	return LoadFS(sub)
}

func readYAML(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("catalog: reading %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalog: parsing %s: %w", name, err)
	}
	return nil
}
