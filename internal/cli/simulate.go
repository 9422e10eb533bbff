package cli

import (
	"github.com/spf13/cobra"

	"trigger-alerts/internal/app"
)

var (
	simulateOrg     int64
	simulateSource  string
	simulateTitle   string
	simulateContent string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Classify a synthetic event and score it against an organization's triggers",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SimulateOptions{
			OrganizationID: simulateOrg,
			Source:         simulateSource,
			Title:          simulateTitle,
			Content:        simulateContent,
		}
		return getApp().SimulateEvent(cmd.Context(), opts)
	},
}

func init() {
	simulateCmd.Flags().Int64Var(&simulateOrg, "org", 0, "Organization id to score triggers for (0 skips scoring)")
	simulateCmd.Flags().StringVar(&simulateSource, "source", "manual", "Event source label")
	simulateCmd.Flags().StringVar(&simulateTitle, "title", "", "Event title")
	simulateCmd.Flags().StringVar(&simulateContent, "content", "", "Event content")
}
