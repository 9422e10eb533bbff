package cli

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trigger intelligence service",
	Long:  "Polls the configured news feeds on an aligned interval, classifies each event, scores it against every organization's active triggers, and materializes alerts for triggers that fire.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Run(cmd.Context())
	},
}
