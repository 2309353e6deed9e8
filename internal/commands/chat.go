package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/optchat/internal/config"
	"github.com/diogo/optchat/internal/dispatch"
	"github.com/diogo/optchat/internal/logging"
	"github.com/diogo/optchat/internal/render"
	"github.com/diogo/optchat/internal/tui"
)

// NewChatCmd creates the chat command
func NewChatCmd(deps *Dependencies, flags *chatFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a chat session",
		Long: `Start a chat session.

In a terminal the full-screen chat opens: Tab moves between the input,
the option buttons and image links; Enter sends or selects. With --plain,
or when input is piped, a line mode reads one entry per line: '/N' picks
option N of the latest set and '/export [path]' saves a transcript.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, flags)
		},
	}
}

// applyFlags overlays command line overrides on cfg and validates the result
func applyFlags(cfg config.Config, flags *chatFlags, changed func(string) bool) (config.Config, error) {
	if flags.script != "" {
		cfg.ScriptPath = flags.script
	}
	if changed("delay") {
		cfg.ResponseDelayMs = flags.delayMs
	}
	if flags.policy != "" {
		cfg.OverlapPolicy = flags.policy
	}
	if flags.theme != "" {
		cfg.TUITheme = flags.theme
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadTable returns the script at path, or the built-in table when path is empty
func loadTable(path string) (*dispatch.Table, error) {
	if path == "" {
		return dispatch.DefaultTable(), nil
	}
	return dispatch.LoadTableFile(path)
}

// settings resolves config, flags and logging for a command
func settings(cmd *cobra.Command, deps *Dependencies, flags *chatFlags) (config.Config, *slog.Logger, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintln(deps.Err, formatErrorMessage(err, "Ignoring config file"))
	}

	cfg, err = applyFlags(cfg, flags, cmd.Flags().Changed)
	if err != nil {
		return cfg, nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger, err = logging.Init(cfg)
		if err != nil {
			fmt.Fprintln(deps.Err, formatErrorMessage(err, "Logging disabled"))
		}
	}
	return cfg, logger, nil
}

func runChat(cmd *cobra.Command, deps *Dependencies, flags *chatFlags) error {
	cfg, logger, err := settings(cmd, deps, flags)
	if err != nil {
		return err
	}

	table, err := loadTable(cfg.ScriptPath)
	if err != nil {
		return err
	}

	policy, err := dispatch.ParsePolicy(cfg.OverlapPolicy)
	if err != nil {
		return err
	}

	if cfg.TUITheme != "" && !tui.SetTheme(cfg.TUITheme) {
		fmt.Fprintf(deps.Err, "Warning: unknown theme %q (available: %s), using the default\n",
			cfg.TUITheme, strings.Join(render.TUIThemeNames(), ", "))
	}

	d := dispatch.New(
		dispatch.NewConversation(table),
		table,
		dispatch.WithDelay(cfg.ResponseDelay()),
		dispatch.WithPolicy(policy),
		dispatch.WithLogger(logger),
	)

	plain := flags.plain || !deps.IsTerminal()
	logger.Info("chat session started",
		"session", d.Session(),
		"policy", string(policy),
		"delay", cfg.ResponseDelay(),
		"script", cfg.ScriptPath,
		"plain", plain,
	)
	defer logger.Info("chat session ended", "session", d.Session(), "messages", d.Store().Len())

	if plain {
		return runPlain(cmd.Context(), deps, d, deps.IsTerminal())
	}

	return deps.TUI.RunChat(d, tui.ChatOptions{CopyToClipboard: cfg.CopyToClipboard})
}
