// Package paths resolves where fieldunits reads and writes its config.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// LocalDir holds a project's config, found from any subdirectory.
	LocalDir = ".fieldunits"
	// ConfigFile is the config file name inside LocalDir and the user dir.
	ConfigFile = "config.yaml"
	// redirectFile inside LocalDir points at another config directory, so git
	// worktrees can share the main checkout's config.
	redirectFile = "redirect"
)

// FindLocalConfig walks from dir up to the filesystem root and returns the
// first .fieldunits/config.yaml it finds, following redirects.
func FindLocalConfig(dir string) (string, bool) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		local := followRedirect(filepath.Join(dir, LocalDir))
		candidate := filepath.Join(local, ConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// UserConfigDir returns ~/.config/fieldunits.
func UserConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fieldunits")
}

// UserConfigFile returns the user-level config path.
func UserConfigFile() string {
	return filepath.Join(UserConfigDir(), ConfigFile)
}

// followRedirect returns the directory named in localDir/redirect, resolved
// against localDir when relative, or localDir itself when there is none.
func followRedirect(localDir string) string {
	content, err := os.ReadFile(filepath.Join(localDir, redirectFile)) //nolint:gosec // redirect lives in the config dir
	if err != nil {
		return localDir
	}
	target := strings.TrimSpace(string(content))
	if target == "" {
		return localDir
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(localDir, target))
}
