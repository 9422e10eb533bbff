package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"trigger-alerts/internal/app"
)

var (
	purgeOlderThan string
	purgeKeepDays  int
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete alerts older than a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cutoff time.Time
		switch {
		case purgeOlderThan != "":
			parsed, err := time.Parse(time.RFC3339, purgeOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			cutoff = parsed
		case purgeKeepDays > 0:
			cutoff = time.Now().UTC().AddDate(0, 0, -purgeKeepDays)
		default:
			return fmt.Errorf("one of --older-than or --keep-days is required")
		}

		return getApp().Purge(cmd.Context(), app.PurgeOptions{OlderThan: cutoff})
	},
}

func init() {
	purgeCmd.Flags().StringVar(&purgeOlderThan, "older-than", "", "Delete alerts created before this timestamp (RFC3339)")
	purgeCmd.Flags().IntVar(&purgeKeepDays, "keep-days", 0, "Delete alerts older than this many days")
}
