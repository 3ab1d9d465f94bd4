package ui

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ShowJSON displays formatted JSON output
func (ui *BubbleteaUI) ShowJSON(data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, _ = fmt.Fprintln(ui.stdout, string(jsonData))
	return nil
}

// ShowYAML displays formatted YAML output
func (ui *BubbleteaUI) ShowYAML(data any) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, _ = fmt.Fprint(ui.stdout, string(yamlData))
	return nil
}
