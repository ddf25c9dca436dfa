// Package prefs handles Osprey user preferences persistence.
// Preferences are stored in ~/.config/osprey/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for Osprey.
type Prefs struct {
	Theme           string `toml:"theme"`
	UsePush         bool   `toml:"use_push"`
	SlowPollSeconds int    `toml:"slow_poll_seconds"`
	FastPollSeconds int    `toml:"fast_poll_seconds"`
}

const (
	defaultPrefsPath   = "~/.config/osprey/prefs.toml"
	defaultTheme       = "Nord"
	defaultSlowSeconds = 30
	defaultFastSeconds = 5
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{
		Theme:           defaultTheme,
		UsePush:         true,
		SlowPollSeconds: defaultSlowSeconds,
		FastPollSeconds: defaultFastSeconds,
	}
}

// Load reads preferences from the given path, falling back to defaults if
// the file is missing or unreadable. Preferences never block startup.
func Load(path string) Prefs {
	p := defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return p
	}

	file, err := os.Open(resolved)
	if err != nil {
		return p
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return p
	}

	if err := toml.Unmarshal(bytes, &p); err != nil {
		return defaults()
	}

	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	if p.SlowPollSeconds <= 0 {
		p.SlowPollSeconds = defaultSlowSeconds
	}
	if p.FastPollSeconds <= 0 {
		p.FastPollSeconds = defaultFastSeconds
	}

	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
