// Package update checks GitHub for a newer release of the tool.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/mod/semver"

	"github.com/airbytehq/oauthflow/internal/build"
	internalhttp "github.com/airbytehq/oauthflow/internal/http"
	"github.com/airbytehq/oauthflow/internal/trace"
)

var ErrDevVersion = errors.New("dev version not supported")

// ReleaseURL is the GitHub endpoint describing the latest release.
const ReleaseURL = "https://api.github.com/repos/airbytehq/oauthflow/releases/latest"

// maxReleaseBytes bounds the release document read from GitHub.
const maxReleaseBytes = 256 << 10

// Check returns the latest release tag when it is newer than version, or an empty string
// when version is current. Prereleases are never offered.
// Returns ErrDevVersion for "dev" builds.
func Check(ctx context.Context, doer internalhttp.HTTPDoer, version string) (string, error) {
	if version == "dev" {
		return "", ErrDevVersion
	}

	ctx, span := trace.NewSpan(ctx, "update.Check")
	defer span.End()

	latest, err := latest(ctx, doer)
	if err != nil {
		return "", err
	}

	if semver.Compare(version, latest) < 0 {
		return latest, nil
	}
	return "", nil
}

func latest(ctx context.Context, doer internalhttp.HTTPDoer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ReleaseURL, nil)
	if err != nil {
		return "", fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", build.UserAgent())

	res, err := doer.Do(req)
	if err != nil {
		return "", fmt.Errorf("unable to do request: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unable to do request, status code: %d", res.StatusCode)
	}

	var release struct {
		TagName    string `json:"tag_name"`
		Prerelease bool   `json:"prerelease"`
		Draft      bool   `json:"draft"`
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, maxReleaseBytes)).Decode(&release); err != nil {
		return "", fmt.Errorf("unable to decode response: %w", err)
	}

	if !semver.IsValid(release.TagName) {
		return "", fmt.Errorf("invalid semver tag: %s", release.TagName)
	}
	if release.Prerelease || release.Draft || semver.Prerelease(release.TagName) != "" {
		return "", fmt.Errorf("latest release %s is not a final release", release.TagName)
	}

	return release.TagName, nil
}
