package seeder

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile shapes the synthetic traffic: which pages and events get
// generated, and with what relative frequency. Weights are relative,
// not percentages.
type Profile struct {
	Pages   []WeightedValue `yaml:"pages"`
	Events  []WeightedValue `yaml:"events"`
	Devices int             `yaml:"devices"`
}

// WeightedValue is one candidate value with its selection weight.
type WeightedValue struct {
	Value  string `yaml:"value"`
	Weight int    `yaml:"weight"`
}

// DefaultProfile returns a traffic mix resembling a small content app:
// mostly views on a handful of pages, a tail of interaction events.
func DefaultProfile() *Profile {
	return &Profile{
		Pages: []WeightedValue{
			{Value: "/home", Weight: 40},
			{Value: "/search", Weight: 20},
			{Value: "/article", Weight: 25},
			{Value: "/profile", Weight: 10},
			{Value: "/settings", Weight: 5},
		},
		Events: []WeightedValue{
			{Value: "view", Weight: 60},
			{Value: "click", Weight: 25},
			{Value: "scroll", Weight: 10},
			{Value: "share", Weight: 5},
		},
		Devices: 50,
	}
}

// LoadProfile reads a traffic profile from a YAML file. Missing
// sections fall back to the default profile.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	def := DefaultProfile()
	if len(p.Pages) == 0 {
		p.Pages = def.Pages
	}
	if len(p.Events) == 0 {
		p.Events = def.Events
	}
	if p.Devices <= 0 {
		p.Devices = def.Devices
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) validate() error {
	for _, wv := range append(append([]WeightedValue{}, p.Pages...), p.Events...) {
		if wv.Weight <= 0 {
			return fmt.Errorf("weight for %q must be positive", wv.Value)
		}
	}
	return nil
}
