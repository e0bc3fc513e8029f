// Package interactive provides the "copykit interactive" prompt-driven
// conversion command.
package interactive

import (
	"github.com/spf13/cobra"

	"github.com/klytics/copykit/internal/config"
	"github.com/klytics/copykit/internal/wizard"
)

// NewCommand creates the "interactive" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Convert files through guided prompts",
		Long: `Start a prompt-driven session that walks through one conversion at a
time: text file, template, output path, and fill position, with defaults
from your config pre-filled. Meant for operators who prefer answering
questions over remembering flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			session := wizard.NewSession(wizard.Defaults{
				Template: cfg.Template,
				OutDir:   cfg.Output.Dir,
				StartRow: cfg.StartRow,
				Column:   cfg.Column,
			})
			return session.Run(cmd.Context())
		},
	}
}
