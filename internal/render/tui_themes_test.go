package render

import (
	"testing"
)

func TestAvailableTUIThemes_Complete(t *testing.T) {
	for _, theme := range AvailableTUIThemes() {
		t.Run(theme.Name, func(t *testing.T) {
			if theme.Description == "" {
				t.Error("description should not be empty")
			}
			colors := map[string]string{
				"background": string(theme.Background),
				"surface":    string(theme.Surface),
				"border":     string(theme.Border),
				"primary":    string(theme.Primary),
				"secondary":  string(theme.Secondary),
				"accent":     string(theme.Accent),
				"warning":    string(theme.Warning),
				"error":      string(theme.Error),
				"text":       string(theme.Text),
				"textDim":    string(theme.TextDim),
				"textMute":   string(theme.TextMute),
				"option":     string(theme.Option),
				"image":      string(theme.Image),
			}
			for name, c := range colors {
				if c == "" {
					t.Errorf("%s color is empty", name)
				}
			}
		})
	}
}

func TestGetTUIThemeByName(t *testing.T) {
	for _, name := range TUIThemeNames() {
		theme, ok := GetTUIThemeByName(name)
		if !ok {
			t.Errorf("theme %q not found", name)
		}
		if theme.Name != name {
			t.Errorf("expected %q, got %q", name, theme.Name)
		}
	}

	if _, ok := GetTUIThemeByName("nonexistent"); ok {
		t.Error("unknown theme should not be found")
	}
}

func TestSetTUITheme(t *testing.T) {
	original := GetTUITheme()
	defer func() { currentTUITheme = original }()

	if !SetTUITheme("lavender") {
		t.Fatal("SetTUITheme(lavender) failed")
	}
	if GetTUITheme().Name != "lavender" {
		t.Errorf("expected lavender, got %s", GetTUITheme().Name)
	}

	if SetTUITheme("nonexistent") {
		t.Error("unknown theme should not be set")
	}
	if GetTUITheme().Name != "lavender" {
		t.Error("failed set should keep current theme")
	}
}
