package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	if !strings.HasSuffix(p, "prefs.toml") {
		t.Fatalf("DefaultPath = %q, want a prefs.toml path", p)
	}
	if !strings.HasPrefix(p, "~") {
		t.Fatalf("DefaultPath = %q, want unexpanded home-relative form", p)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	p := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want default", p.Theme)
	}
	if !p.UsePush {
		t.Fatal("UsePush default = false, want true")
	}
	if p.SlowPollSeconds != defaultSlowSeconds || p.FastPollSeconds != defaultFastSeconds {
		t.Fatalf("intervals = %d/%d, want defaults", p.SlowPollSeconds, p.FastPollSeconds)
	}
}

func TestLoad_PartialFileKeepsDefaultsForOmittedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte(`fast_poll_seconds = 2`), 0o644); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	p := Load(path)
	if p.FastPollSeconds != 2 {
		t.Fatalf("FastPollSeconds = %d, want 2", p.FastPollSeconds)
	}
	if p.SlowPollSeconds != defaultSlowSeconds {
		t.Fatalf("SlowPollSeconds = %d, want default", p.SlowPollSeconds)
	}
	if !p.UsePush {
		t.Fatal("UsePush flipped by partial file")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	content := "theme = \"  \"\nslow_poll_seconds = -4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	p := Load(path)
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want default for blank", p.Theme)
	}
	if p.SlowPollSeconds != defaultSlowSeconds {
		t.Fatalf("SlowPollSeconds = %d, want default for negative", p.SlowPollSeconds)
	}
}

func TestLoad_MalformedFileDegradesToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = ["), 0o644); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	p := Load(path)
	if p != (Prefs{Theme: defaultTheme, UsePush: true, SlowPollSeconds: defaultSlowSeconds, FastPollSeconds: defaultFastSeconds}) {
		t.Fatalf("Load of malformed file = %#v, want defaults", p)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	want := Prefs{Theme: "Gruvbox", UsePush: false, SlowPollSeconds: 60, FastPollSeconds: 3}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got := Load(path)
	if got != want {
		t.Fatalf("round trip = %#v, want %#v", got, want)
	}
}
