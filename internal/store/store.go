// Package store persists suspended flows between processes.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/airbytehq/oauthflow/internal/oauth"
)

//go:generate go tool mockgen --build_flags=--mod=mod -destination mock/mock.go -package mock . SnapshotStore

// ErrNotFound is returned when no snapshot exists for an id.
var ErrNotFound = errors.New("flow not found")

const ext = ".yaml"

// SnapshotStore saves and loads flow snapshots by flow id.
type SnapshotStore interface {
	Save(s *oauth.Snapshot) error
	Load(id string) (*oauth.Snapshot, error)
	Delete(id string) error
	List() ([]Entry, error)
	Prune(maxAge time.Duration) (int, error)
}

// Entry describes a stored snapshot without reading its secrets.
type Entry struct {
	ID      string
	ModTime time.Time
}

// FileSnapshotStore keeps one YAML file per flow in Dir. Files hold the PKCE verifier and
// possibly an authorization code, so they are written owner-only.
type FileSnapshotStore struct {
	Dir string
	now func() time.Time
}

var _ SnapshotStore = (*FileSnapshotStore)(nil)

// NewFileSnapshotStore returns a store rooted at dir.
func NewFileSnapshotStore(dir string) *FileSnapshotStore {
	return &FileSnapshotStore{Dir: dir, now: time.Now}
}

func (s *FileSnapshotStore) path(id string) (string, error) {
	// ids are generated as uuids; anything else could escape Dir
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid flow id %q: %w", id, err)
	}
	return filepath.Join(s.Dir, id+ext), nil
}

// Save writes the snapshot atomically, replacing any earlier one for the same flow.
func (s *FileSnapshotStore) Save(snap *oauth.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("no snapshot to save")
	}
	path, err := s.path(snap.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create flow directory: %w", err)
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}
	defer clear(data)

	tmp, err := os.CreateTemp(s.Dir, "."+snap.ID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create flow file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to restrict flow file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write flow file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write flow file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write flow file: %w", err)
	}

	pterm.Debug.Printfln("saved flow %s (%s)", snap.ID, snap.State)
	return nil
}

// Load reads the snapshot for id. The caller owns the result and should Discard it.
func (s *FileSnapshotStore) Load(id string) (*oauth.Snapshot, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flow file: %w", err)
	}
	defer clear(data)

	var snap oauth.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse flow file: %w", err)
	}
	if snap.ID != id {
		snap.Discard()
		return nil, fmt.Errorf("flow file %s holds flow %q", filepath.Base(path), snap.ID)
	}

	return &snap, nil
}

// Delete removes the snapshot for id. Deleting a missing snapshot is not an error.
func (s *FileSnapshotStore) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete flow file: %w", err)
	}
	return nil
}

// List returns the stored flows, most recent first.
func (s *FileSnapshotStore) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read flow directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		id := strings.TrimSuffix(name, ext)
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{ID: id, ModTime: info.ModTime()})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}

// Prune deletes snapshots older than maxAge and returns how many were removed.
// The core keeps no clock, so abandoned flows only expire here.
func (s *FileSnapshotStore) Prune(maxAge time.Duration) (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	cutoff := now().Add(-maxAge)
	var pruned int
	for _, e := range entries {
		if e.ModTime.After(cutoff) {
			continue
		}
		if err := s.Delete(e.ID); err != nil {
			return pruned, err
		}
		pterm.Debug.Printfln("pruned flow %s", e.ID)
		pruned++
	}
	return pruned, nil
}
