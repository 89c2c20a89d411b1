package director

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteScenario writes a scenario to a YAML file
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScenario reads a scenario from a YAML file. Sections missing from the
// file keep the values of DefaultScenario; messages never do.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	scenario := DefaultScenario()
	scenario.Messages = nil

	if err := yaml.Unmarshal(data, scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return scenario, nil
}
