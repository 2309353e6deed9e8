package commands

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/diogo/optchat/internal/config"
	"github.com/diogo/optchat/internal/dispatch"
	"github.com/diogo/optchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(d *dispatch.Dispatcher, opts tui.ChatOptions) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// In, Out and Err are the command's streams.
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// TUI is the terminal user interface.
	TUI TUIInterface

	// LoadConfig and SaveConfig read and write the settings file.
	LoadConfig func() (config.Config, error)
	SaveConfig func(config.Config) error

	// IsTerminal reports whether stdin and stdout are both terminals.
	IsTerminal func() bool

	// TerminalWidth returns the output width in columns.
	TerminalWidth func() int

	// Logger overrides the file logger when set.
	Logger *slog.Logger
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (DefaultTUI) RunChat(d *dispatch.Dispatcher, opts tui.ChatOptions) error {
	return tui.RunChat(d, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		In:            os.Stdin,
		Out:           os.Stdout,
		Err:           os.Stderr,
		TUI:           DefaultTUI{},
		LoadConfig:    config.LoadConfig,
		SaveConfig:    config.SaveConfig,
		IsTerminal:    isTerminal,
		TerminalWidth: getTerminalWidth,
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}
