package theme_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shipkit/shipkit/theme"
)

func TestNewEngine(t *testing.T) {
	engine, err := theme.NewEngine(theme.DefaultThemes(), "light")
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if len(engine.List()) != 2 {
		t.Fatalf("expected 2 themes, got %d", len(engine.List()))
	}
	if engine.Active().Name != "light" {
		t.Fatalf("expected light active, got %s", engine.Active().Name)
	}
}

func TestNewEngine_UnknownDefault(t *testing.T) {
	_, err := theme.NewEngine(theme.DefaultThemes(), "nonexistent")
	if !errors.Is(err, theme.ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Fatalf("error must name the theme, got %v", err)
	}
}

func TestSetActive(t *testing.T) {
	engine, err := theme.NewEngine(theme.DefaultThemes(), "light")
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	dark, err := engine.SetActive("dark")
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if dark.Name != "dark" || engine.Active().Name != "dark" {
		t.Fatal("expected dark to become active")
	}

	if _, err := engine.SetActive("nope"); !errors.Is(err, theme.ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
	if engine.Active().Name != "dark" {
		t.Fatal("failed switch must not change the active theme")
	}
}

func TestCSS(t *testing.T) {
	engine, err := theme.NewEngine(theme.DefaultThemes(), "light")
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	css := engine.CSS()
	if !strings.HasPrefix(css, ":root {") || !strings.HasSuffix(css, "}") {
		t.Fatalf("unexpected CSS shape: %q", css)
	}
	if !strings.Contains(css, "--sk-color-primary: #3b82f6;") {
		t.Fatalf("missing primary variable: %q", css)
	}

	// Variables are emitted in lexicographic order.
	bg := strings.Index(css, "--sk-color-background")
	fg := strings.Index(css, "--sk-color-foreground")
	if bg == -1 || fg == -1 || bg > fg {
		t.Fatal("variables must be in lexicographic order")
	}
}

func TestCSS_Deterministic(t *testing.T) {
	engine, err := theme.NewEngine(theme.DefaultThemes(), "dark")
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if engine.CSS() != engine.CSS() {
		t.Fatal("CSS output must be deterministic")
	}
	if !strings.Contains(engine.CSS(), "--sk-color-background: #0a0a0a;") {
		t.Fatal("expected dark background value")
	}
}

func TestDetectSystemMode(t *testing.T) {
	// Result is platform dependent; it must simply return a valid mode.
	mode := theme.DetectSystemMode()
	if mode != theme.ModeLight && mode != theme.ModeDark {
		t.Fatalf("unexpected mode %q", mode)
	}
}
