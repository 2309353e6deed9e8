package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/diogo/optchat/internal/errors"
)

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorOption   = lipgloss.Color("#e0af68")
	colorImage    = lipgloss.Color("#7dcfff")
	colorError    = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1)

	userLineStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	optionStyle = lipgloss.NewStyle().
			Foreground(colorOption)

	imageStyle = lipgloss.NewStyle().
			Foreground(colorImage).
			Underline(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)
)

// formatErrorMessage formats an error with a hint for known error kinds
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	switch {
	case apperrors.IsScriptError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check the script with 'optchat script --script <path>'"))
	case apperrors.IsConfigError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'optchat config show' to inspect your settings"))
	case apperrors.IsBusy(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Wait for the current reply or use --policy queue"))
	}

	return sb.String()
}
