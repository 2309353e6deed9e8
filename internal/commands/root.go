// Package commands provides CLI commands for optchat.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/optchat/internal/dispatch"
	"github.com/diogo/optchat/internal/render"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// chatFlags are the session overrides shared by the root and chat commands
type chatFlags struct {
	script  string
	delayMs int
	policy  string
	theme   string
	plain   bool
}

// NewRootCmd creates the optchat command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	flags := &chatFlags{}

	rootCmd := &cobra.Command{
		Use:   "optchat",
		Short: "Option-driven support chat in the terminal",
		Long: `optchat is a support chat widget for the terminal. The assistant greets
you with a set of options; picking one (or typing a question) produces a
canned reply after a short delay, sometimes with further options.

Examples:
  optchat                               Start the chat
  optchat --policy queue                Queue input sent while a reply is pending
  optchat --script desk.json            Use a custom response script
  optchat script                        Show the active response script
  printf '/1\n/3\n' | optchat --plain   Scripted line mode`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "optchat %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runChat(cmd, deps, flags)
		},
	}

	rootCmd.SetIn(deps.In)
	rootCmd.SetOut(deps.Out)
	rootCmd.SetErr(deps.Err)

	rootCmd.PersistentFlags().StringVarP(&flags.script, "script", "s", "", "Response script (JSON) to use instead of the built-in one")
	rootCmd.PersistentFlags().IntVar(&flags.delayMs, "delay", 0, "Response delay in milliseconds")
	rootCmd.PersistentFlags().StringVar(&flags.policy, "policy", "",
		"Input handling while a reply is pending ("+strings.Join(dispatch.AvailablePolicies(), ", ")+")")
	rootCmd.PersistentFlags().StringVar(&flags.theme, "theme", "",
		"TUI color theme ("+strings.Join(render.TUIThemeNames(), ", ")+")")
	rootCmd.PersistentFlags().BoolVar(&flags.plain, "plain", false, "Use line mode instead of the full-screen chat")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(NewChatCmd(deps, flags))
	rootCmd.AddCommand(NewScriptCmd(deps, flags))
	rootCmd.AddCommand(NewConfigCmd(deps))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(NewDependencies()).Execute(); err != nil {
		os.Exit(1)
	}
}
