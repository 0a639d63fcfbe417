package npc

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Character is an NPC's static identity. Immutable after roster load; one
// per NPC for the lifetime of the fleet.
type Character struct {
	Name               string   `yaml:"name"`
	Role               string   `yaml:"role"`
	Personality        string   `yaml:"personality"`
	Priorities         []string `yaml:"priorities"`
	PreferredResources []string `yaml:"preferred_resources"`
}

type rosterFile struct {
	Characters []Character `yaml:"characters"`
}

// LoadRoster reads the fleet's character roster.
func LoadRoster(path string) ([]Character, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf rosterFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("roster.yaml: %w", err)
	}
	if len(rf.Characters) == 0 {
		return nil, fmt.Errorf("roster.yaml: no characters")
	}
	seen := map[string]struct{}{}
	for i, c := range rf.Characters {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("roster.yaml: character %d has no name", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("roster.yaml: duplicate character %q", name)
		}
		seen[name] = struct{}{}
	}
	return rf.Characters, nil
}
