package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/airbytehq/oauthflow/internal/ui"
)

// formatText renders through the caller's text function instead of a serializer.
const formatText = "text"

// outputHandler defines how to handle a specific output format
type outputHandler func(ui.Provider, any) error

// outputHandlers maps the structured format names to their handlers
var outputHandlers = map[string]outputHandler{
	"json": func(ui ui.Provider, data any) error {
		return ui.ShowJSON(data)
	},
	"yaml": func(ui ui.Provider, data any) error {
		return ui.ShowYAML(data)
	},
}

// RenderOutput displays data in the given format. An empty format or "text" calls text.
func RenderOutput(uiProvider ui.Provider, format string, data any, text func(ui.Provider)) error {
	if format == "" || format == formatText {
		text(uiProvider)
		return nil
	}

	handler, exists := outputHandlers[format]
	if !exists {
		supported := append([]string{formatText}, slices.Sorted(maps.Keys(outputHandlers))...)
		return fmt.Errorf("unsupported output format: %s (supported: %s)", format, strings.Join(supported, ", "))
	}

	return handler(uiProvider, data)
}
