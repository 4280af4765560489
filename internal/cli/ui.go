package cli

import (
	"github.com/spf13/cobra"

	"github.com/njbennett/knecht/internal/ui"
)

func (a *app) uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Browse tasks interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			return ui.Run(eng)
		},
	}
}
