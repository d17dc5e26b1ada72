package main

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Mission describes the assets a mission scene needs: the skybox, the
// hull shader and the ships to place.
type Mission struct {
	Name   string `yaml:"name"`
	Skybox string `yaml:"skybox"`
	Shader string `yaml:"shader"`
	Music  string `yaml:"music"`
	Ships  []Ship `yaml:"ships"`
}

// Ship is one craft in the mission.
type Ship struct {
	Model   string `yaml:"model"`
	LOD     int    `yaml:"lod"`
	Texture string `yaml:"texture"`
}

// ParseMission deserializes and validates a mission descriptor.
func ParseMission(data []byte) (*Mission, error) {
	var m Mission
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing mission: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("mission needs a name")
	}
	if len(m.Ships) == 0 {
		return nil, fmt.Errorf("mission %q has no ships", m.Name)
	}
	for i, s := range m.Ships {
		if s.Model == "" {
			return nil, fmt.Errorf("mission %q: ship %d has no model", m.Name, i)
		}
	}
	return &m, nil
}
