package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/optchat/internal/models"
	"github.com/diogo/optchat/internal/render"
)

// renderContent styles message content span by span. Text spans keep their
// whitespace and line breaks; image spans render as links, with the span at
// index selected (counted among image spans) highlighted. Pass -1 for none.
func renderContent(content string, selected int) string {
	var sb strings.Builder
	nth := 0
	for _, span := range render.Spans(content) {
		if !span.IsImage() {
			sb.WriteString(span.Text)
			continue
		}
		style := imageLinkStyle
		if nth == selected {
			style = imageSelectedStyle
		}
		sb.WriteString(style.Render("🖼 " + span.Text))
		nth++
	}
	return sb.String()
}

func imageURLs(content string) []string {
	return render.ImageURLs(content)
}

// renderOptions draws a message's option buttons. Horizontal sets flow into
// rows no wider than width; vertical sets stack one per line.
func renderOptions(msg models.Message, selected, width int) string {
	buttons := make([]string, len(msg.Options))
	for i, o := range msg.Options {
		style := optionButtonStyle
		if i == selected {
			style = optionSelectedStyle
		}
		buttons[i] = style.Render(o)
	}

	if msg.EffectiveLayout() == models.LayoutVertical {
		return lipgloss.JoinVertical(lipgloss.Left, buttons...)
	}

	var rows []string
	var row []string
	rowWidth := 0
	for _, b := range buttons {
		w := lipgloss.Width(b)
		if len(row) > 0 && rowWidth+1+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		if len(row) > 0 {
			row = append(row, " ")
			rowWidth++
		}
		row = append(row, b)
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
