// Package theme manages CSS-variable themes and renders them as a
// :root block a frontend can inject directly.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrThemeNotFound reports a theme name that is not registered.
var ErrThemeNotFound = errors.New("theme not found")

// Mode is whether a theme is light, dark, or follows the system setting.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

// Definition is a complete theme: a name, a mode, and its CSS variables.
type Definition struct {
	Name      string            `json:"name"`
	Mode      Mode              `json:"mode"`
	Variables map[string]string `json:"variables"`
}

// Engine holds the registered themes and tracks the active selection.
type Engine struct {
	themes []Definition
	active string
}

// NewEngine creates an engine. defaultName must name one of themes.
func NewEngine(themes []Definition, defaultName string) (*Engine, error) {
	e := &Engine{themes: themes}
	if e.find(defaultName) == nil {
		return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, defaultName)
	}
	e.active = defaultName
	return e, nil
}

func (e *Engine) find(name string) *Definition {
	for i := range e.themes {
		if e.themes[i].Name == name {
			return &e.themes[i]
		}
	}
	return nil
}

// Active returns the currently active theme.
func (e *Engine) Active() Definition {
	return *e.find(e.active)
}

// SetActive switches to the named theme.
func (e *Engine) SetActive(name string) (Definition, error) {
	t := e.find(name)
	if t == nil {
		return Definition{}, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}
	e.active = name
	return *t, nil
}

// List returns all registered themes.
func (e *Engine) List() []Definition {
	out := make([]Definition, len(e.themes))
	copy(out, e.themes)
	return out
}

// CSS renders the active theme as a :root block. Variables are emitted in
// lexicographic order so the output is deterministic.
func (e *Engine) CSS() string {
	active := e.Active()

	keys := make([]string, 0, len(active.Variables))
	for k := range active.Variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s;\n", k, active.Variables[k])
	}
	b.WriteString("}")
	return b.String()
}

// DefaultThemes returns the built-in light and dark themes.
func DefaultThemes() []Definition {
	return []Definition{
		{
			Name: "light",
			Mode: ModeLight,
			Variables: map[string]string{
				"--sk-color-background":         "#ffffff",
				"--sk-color-border":             "#e5e5e5",
				"--sk-color-destructive":        "#ef4444",
				"--sk-color-foreground":         "#0a0a0a",
				"--sk-color-muted":              "#f5f5f5",
				"--sk-color-muted-foreground":   "#737373",
				"--sk-color-primary":            "#3b82f6",
				"--sk-color-primary-foreground": "#ffffff",
			},
		},
		{
			Name: "dark",
			Mode: ModeDark,
			Variables: map[string]string{
				"--sk-color-background":         "#0a0a0a",
				"--sk-color-border":             "#262626",
				"--sk-color-destructive":        "#ef4444",
				"--sk-color-foreground":         "#fafafa",
				"--sk-color-muted":              "#262626",
				"--sk-color-muted-foreground":   "#a3a3a3",
				"--sk-color-primary":            "#3b82f6",
				"--sk-color-primary-foreground": "#ffffff",
			},
		},
	}
}
