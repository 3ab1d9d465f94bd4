package build

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

// Name is the binary name, used in the User-Agent and help output.
const Name = "oauthflow"

// Version is the build of this tool.
// Set at build time via ldflags or read from the BuildInfo when "go install"ed.
// Supported values: "dev", any semver (a missing 'v' prefix is added).
// Any invalid version is replaced with "invalid (BAD_VERSION)".
var Version = "dev"

// Revision is the git hash this tool was built from, taken from "vcs.revision".
var Revision string

// Modified is true if the working tree had local changes at build time ("vcs.modified").
var Modified bool

// ModificationTime is the commit time in RFC3339 format ("vcs.time").
var ModificationTime string

// buildInfoFunc matches debug.ReadBuildInfo, redefined here for testing purposes.
type buildInfoFunc func() (*debug.BuildInfo, bool)

var readBuildInfo buildInfoFunc = debug.ReadBuildInfo

// setVersion normalizes Version and fills the vcs fields.
// Only called by init and the unit tests.
func setVersion() {
	if Version == "dev" {
		if info, ok := readBuildInfo(); ok {
			if info.Main.Version != "" && info.Main.Version != "(devel)" {
				Version = info.Main.Version
			}
			for _, kv := range info.Settings {
				switch kv.Key {
				case "vcs.modified":
					Modified = kv.Value == "true"
				case "vcs.time":
					ModificationTime = kv.Value
				case "vcs.revision":
					Revision = kv.Value
				}
			}
		}
	}

	if Version != "dev" {
		orig := Version
		if !strings.HasPrefix(Version, "v") {
			Version = "v" + Version
		}
		if !semver.IsValid(Version) {
			Version = fmt.Sprintf("invalid (%s)", orig)
		}
	}
}

// UserAgent is sent on every token request, e.g. "oauthflow/v1.2.3 (linux/amd64)".
func UserAgent() string {
	v := Version
	if !semver.IsValid(v) {
		v = "dev"
	}
	return fmt.Sprintf("%s/%s (%s/%s)", Name, v, runtime.GOOS, runtime.GOARCH)
}

func init() {
	setVersion()
}
