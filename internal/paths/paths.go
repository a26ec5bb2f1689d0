// Package paths resolves the on-disk layout shared with the garmindb sync
// tool: health data under <home>/HealthData and tool configuration under
// <home>/.GarminDb.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	Home string
}

// New resolves the layout rooted at home. An empty home means the current
// user's home directory.
func New(home string) (Paths, error) {
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("resolving home directory: %w", err)
		}
		home = h
	}
	abs, err := filepath.Abs(home)
	if err != nil {
		return Paths{}, fmt.Errorf("resolving home directory: %w", err)
	}
	return Paths{Home: abs}, nil
}

func (p Paths) DataRoot() string {
	return filepath.Join(p.Home, "HealthData")
}

func (p Paths) DBPath() string {
	return filepath.Join(p.DataRoot(), "DBs", "garmin.db")
}

func (p Paths) ConfigDir() string {
	return filepath.Join(p.Home, ".GarminDb")
}

// ConnectConfigPath is the settings document the sync tool reads.
func (p Paths) ConnectConfigPath() string {
	return filepath.Join(p.ConfigDir(), "GarminConnectConfig.json")
}

// SessionPath is the cached GarminConnect session. Removing it forces the
// next sync to authenticate from scratch.
func (p Paths) SessionPath() string {
	return filepath.Join(p.ConfigDir(), "garth_session")
}

func (p Paths) UpdateLogPath() string {
	return filepath.Join(p.ConfigDir(), "update.log")
}

// tree is the set of directories the sync tool expects to exist before its
// first download run.
func (p Paths) tree() []string {
	root := p.DataRoot()
	return []string{
		root,
		filepath.Join(root, "DBs"),
		filepath.Join(root, "FitFiles", "Activities"),
		filepath.Join(root, "FitFiles", "Monitoring"),
		filepath.Join(root, "Sleep"),
		filepath.Join(root, "Monitoring"),
		filepath.Join(root, "RHR"),
		filepath.Join(root, "Weight"),
		p.ConfigDir(),
	}
}

// EnsureTree creates any missing layout directories and reports the paths it
// actually created. Calling it on a complete tree creates nothing.
func (p Paths) EnsureTree() ([]string, error) {
	created := []string{}
	for _, dir := range p.tree() {
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("creating %s: %w", dir, err)
		}
		created = append(created, dir)
	}
	return created, nil
}

// EraseDataRoot removes every entry inside the data root, keeping the root
// directory itself, and reports the removed entry names.
func (p Paths) EraseDataRoot() ([]string, error) {
	entries, err := os.ReadDir(p.DataRoot())
	if err != nil {
		return nil, fmt.Errorf("reading data root: %w", err)
	}
	removed := []string{}
	for _, e := range entries {
		target := filepath.Join(p.DataRoot(), e.Name())
		if err := os.RemoveAll(target); err != nil {
			return removed, fmt.Errorf("removing %s: %w", target, err)
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}
