package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestImageModal_Close(t *testing.T) {
	for _, k := range []tea.KeyMsg{keyMsg(tea.KeyEscape), keyMsg(tea.KeyEnter), runes("q")} {
		m := NewImageModal("https://x/a.png", true)
		m, _ = m.Update(k)
		if !m.Closed() {
			t.Errorf("%q should close the modal", k.String())
		}
	}
}

func TestImageModal_Copy(t *testing.T) {
	var copied string
	m := NewImageModal("https://x/a.png", true)
	m.copyFn = func(s string) error {
		copied = s
		return nil
	}

	m, _ = m.Update(runes("c"))
	if !m.Copied() || copied != "https://x/a.png" {
		t.Errorf("expected url copied, got %q", copied)
	}
	if m.Closed() {
		t.Error("copying should not close the modal")
	}
	if !strings.Contains(stripANSI(m.View()), "Copied") {
		t.Error("view should confirm the copy")
	}
}

func TestImageModal_CopyDisabled(t *testing.T) {
	called := false
	m := NewImageModal("https://x/a.png", false)
	m.copyFn = func(string) error {
		called = true
		return nil
	}

	m, _ = m.Update(runes("c"))
	if called || m.Copied() {
		t.Error("copy should be ignored when disabled")
	}
	if strings.Contains(stripANSI(m.View()), "copy URL") {
		t.Error("view should not offer copying")
	}
}

func TestImageModal_CopyError(t *testing.T) {
	m := NewImageModal("https://x/a.png", true)
	m.copyFn = func(string) error { return errors.New("no clipboard") }

	m, _ = m.Update(runes("y"))
	if m.Copied() {
		t.Error("failed copy should not be reported as copied")
	}
	if !strings.Contains(stripANSI(m.View()), "no clipboard") {
		t.Error("view should show the copy error")
	}
}

func TestImageModal_View(t *testing.T) {
	m := NewImageModal("https://sample-img-url/test.jpg", true)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	view := stripANSI(m.View())
	if !strings.Contains(view, "https://sample-img-url/test.jpg") {
		t.Error("view should show the url")
	}
	if got := len(strings.Split(view, "\n")); got != 20 {
		t.Errorf("view should fill the window height, got %d lines", got)
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}
