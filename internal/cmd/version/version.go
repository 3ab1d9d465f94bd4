package version

import (
	"strings"

	"github.com/pterm/pterm"

	"github.com/airbytehq/oauthflow/internal/build"
)

// Cmd prints the version information read from the build package.
type Cmd struct{}

// Run executes the version command
func (c *Cmd) Run() error {
	var sb strings.Builder
	sb.WriteString("version: " + build.Version + "\n")
	if build.Revision != "" {
		sb.WriteString("revision: " + build.Revision + "\n")
	}
	if build.ModificationTime != "" {
		sb.WriteString("time: " + build.ModificationTime + "\n")
	}
	if build.Modified {
		sb.WriteString("modified: true\n")
	}
	pterm.Print(sb.String())
	return nil
}
