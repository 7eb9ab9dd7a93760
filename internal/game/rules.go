package game

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pefman/terraform-tracker/internal/models"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// Bounds is an inclusive [Min, Max] range.
type Bounds struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (b Bounds) Clamp(v int) int { return clamp(b.Min, b.Max, v) }

// ResourceTemplate describes one resource every new player starts with.
type ResourceTemplate struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"` // none, currency, energy, heat
}

// Rules holds the board game's tunable numbers. They are domain configuration:
// the sync machinery never looks at them.
type Rules struct {
	StartingTR int    `yaml:"starting_tr"`
	TR         Bounds `yaml:"tr"`

	CurrencyProduction Bounds `yaml:"currency_production"`
	OtherProduction    Bounds `yaml:"other_production"`

	Resources []ResourceTemplate `yaml:"resources"`
}

// DefaultRules returns the embedded rule set.
func DefaultRules() Rules {
	r, err := parseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("default_rules.yaml: %v", err))
	}
	return r
}

// LoadRules reads a rules file. An empty path yields DefaultRules.
func LoadRules(path string) (Rules, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, err
	}
	r, err := parseRules(raw)
	if err != nil {
		return Rules{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func parseRules(raw []byte) (Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return r, err
	}
	return r, r.validate()
}

func (r Rules) validate() error {
	if r.TR.Min > r.TR.Max {
		return errors.New("tr: min > max")
	}
	if r.StartingTR < r.TR.Min || r.StartingTR > r.TR.Max {
		return fmt.Errorf("starting_tr %d outside tr bounds", r.StartingTR)
	}
	if r.CurrencyProduction.Min > r.CurrencyProduction.Max || r.OtherProduction.Min > r.OtherProduction.Max {
		return errors.New("production bounds: min > max")
	}
	seen := map[models.Category]bool{}
	for _, t := range r.Resources {
		c, err := parseCategory(t.Category)
		if err != nil {
			return fmt.Errorf("resource %q: %w", t.Name, err)
		}
		if c != models.CategoryNone && seen[c] {
			return fmt.Errorf("resource %q: duplicate %s resource", t.Name, c)
		}
		seen[c] = true
	}
	for _, c := range []models.Category{models.CategoryCurrency, models.CategoryEnergy, models.CategoryHeat} {
		if !seen[c] {
			return fmt.Errorf("resources: missing %s resource", c)
		}
	}
	return nil
}

func parseCategory(s string) (models.Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return models.CategoryNone, nil
	case "currency":
		return models.CategoryCurrency, nil
	case "energy":
		return models.CategoryEnergy, nil
	case "heat":
		return models.CategoryHeat, nil
	}
	return models.CategoryNone, fmt.Errorf("unknown category %q", s)
}

// ProductionBounds returns the clamp range for a resource's production.
func (r Rules) ProductionBounds(c models.Category) Bounds {
	if c == models.CategoryCurrency {
		return r.CurrencyProduction
	}
	return r.OtherProduction
}

// NewPlayer builds a player with the starting TR and the template resources.
func (r Rules) NewPlayer(name string) (models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Player{}, ErrEmptyName
	}
	p := models.Player{
		ID:        uuid.NewString(),
		Name:      name,
		TR:        r.StartingTR,
		Resources: make([]models.Resource, 0, len(r.Resources)),
	}
	for _, t := range r.Resources {
		c, _ := parseCategory(t.Category) // validated on load
		p.Resources = append(p.Resources, models.Resource{ID: uuid.NewString(), Name: t.Name, Category: c})
	}
	return p, nil
}

func clamp(min, max, v int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
