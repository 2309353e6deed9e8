package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ImageModal shows a single image URL picked from the conversation
type ImageModal struct {
	url string

	allowCopy bool
	copyFn    func(string) error
	copied    bool
	copyErr   error

	closed bool

	width  int
	height int
}

// NewImageModal creates a modal for url. Copying is offered only when allowCopy is set.
func NewImageModal(url string, allowCopy bool) ImageModal {
	return ImageModal{
		url:       url,
		allowCopy: allowCopy,
		copyFn:    clipboard.WriteAll,
	}
}

// Init initializes the modal
func (m ImageModal) Init() tea.Cmd {
	return nil
}

// Update handles key and size messages
func (m ImageModal) Update(msg tea.Msg) (ImageModal, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "enter":
			m.closed = true

		case "c", "y":
			if !m.allowCopy {
				break
			}
			if err := m.copyFn(m.url); err != nil {
				m.copyErr = err
				m.copied = false
			} else {
				m.copied = true
				m.copyErr = nil
			}
		}
	}

	return m, nil
}

// View renders the modal box centered in the available area
func (m ImageModal) View() string {
	boxWidth := m.width - 8
	if boxWidth < 30 {
		boxWidth = 30
	}

	var b strings.Builder
	b.WriteString(modalTitleStyle.Render("🖼  Image"))
	b.WriteString("\n")
	b.WriteString(modalURLStyle.Render(m.url))
	b.WriteString("\n\n")

	switch {
	case m.copyErr != nil:
		b.WriteString(errorStyle.Render("Copy failed: " + m.copyErr.Error()))
		b.WriteString("\n\n")
	case m.copied:
		b.WriteString(noticeStyle.Render("✓ Copied to clipboard"))
		b.WriteString("\n\n")
	}

	help := "Esc: close"
	if m.allowCopy {
		help = "c: copy URL  " + help
	}
	b.WriteString(hintStyle.Render(help))

	box := modalStyle.Width(boxWidth).Render(b.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// URL returns the image URL
func (m ImageModal) URL() string {
	return m.url
}

// Closed reports whether the user dismissed the modal
func (m ImageModal) Closed() bool {
	return m.closed
}

// Copied reports whether the URL was copied to the clipboard
func (m ImageModal) Copied() bool {
	return m.copied
}
