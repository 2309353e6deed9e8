package render

import (
	"os"

	"github.com/diogo/optchat/internal/config"
)

// OptionsFromConfig builds render options from the user configuration.
// GLAMOUR_STYLE overrides the configured style.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()
	if cfg.MarkdownStyle != "" {
		opts.Style = cfg.MarkdownStyle
	}
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}
