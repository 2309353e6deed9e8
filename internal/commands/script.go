package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/optchat/internal/dispatch"
	"github.com/diogo/optchat/internal/models"
	"github.com/diogo/optchat/internal/render"
)

// NewScriptCmd creates the script command
func NewScriptCmd(deps *Dependencies, flags *chatFlags) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Show the active response script",
		Long: `Load and validate the response script (the built-in one, the
script_path setting, or --script) and print it as Markdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := settings(cmd, deps, flags)
			if err != nil {
				return err
			}

			table, err := loadTable(cfg.ScriptPath)
			if err != nil {
				return err
			}

			md := describeTable(table)
			if raw || !deps.IsTerminal() {
				fmt.Fprint(deps.Out, md)
				return nil
			}

			opts := render.OptionsFromConfig(cfg).WithWidth(deps.TerminalWidth())
			out, err := render.Markdown(md, opts)
			if err != nil {
				// fall back to raw markdown
				fmt.Fprint(deps.Out, md)
				return nil
			}
			fmt.Fprint(deps.Out, out)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "Print Markdown without rendering")
	return cmd
}

// describeTable renders a response table as Markdown
func describeTable(t *dispatch.Table) string {
	var sb strings.Builder

	sb.WriteString("# Response script\n\n")

	sb.WriteString("## Greeting\n\n")
	writeResponse(&sb, t.Greeting)

	sb.WriteString("## Responses\n\n")
	for _, key := range t.Keys() {
		fmt.Fprintf(&sb, "### %s\n\n", key)
		writeResponse(&sb, t.Entries[key])
	}

	sb.WriteString("## Unknown options\n\n")
	fmt.Fprintf(&sb, "> %s\n\n", strings.ReplaceAll(t.FallbackFormat, dispatch.OptionToken, "`"+dispatch.OptionToken+"`"))

	sb.WriteString("## Free text\n\n")
	writeResponse(&sb, t.TextResponse)

	fmt.Fprintf(&sb, "Placeholder while waiting: *%s*\n", t.Placeholder)
	return sb.String()
}

func writeResponse(sb *strings.Builder, r dispatch.Response) {
	for _, line := range strings.Split(r.Content, "\n") {
		fmt.Fprintf(sb, "> %s\n", line)
	}
	sb.WriteString("\n")

	if len(r.Options) == 0 {
		return
	}

	layout := "horizontal"
	if r.Layout == models.LayoutVertical {
		layout = "vertical"
	}
	fmt.Fprintf(sb, "Options (%s):\n\n", layout)
	for _, o := range r.Options {
		fmt.Fprintf(sb, "- %s\n", o)
	}
	sb.WriteString("\n")
}
