package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

const showTitleLimit = 60

// Show prints recent strategic alerts.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show alerts")
	}
	if closeStore != nil {
		defer closeStore()
	}

	alerts, err := store.ListRecentAlerts(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(alerts) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tOrg\tTrigger\tClassification\tSeverity\tConf\tAction\tStatus\tTitle")

	for _, alert := range alerts {
		action := ""
		if alert.ActionRequired {
			action = "yes"
		}
		fmt.Fprintf(
			writer,
			"%s\t%d\t%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			alert.CreatedAt.UTC().Format(time.RFC3339),
			alert.OrganizationID,
			alert.TriggerID,
			alert.Classification,
			alert.Severity,
			alert.AIConfidence,
			action,
			alert.Status,
			truncateInline(alert.Title, showTitleLimit),
		)
	}

	writer.Flush()
	return nil
}

func truncateInline(v string, limit int) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	if len(cleaned) > limit {
		cleaned = cleaned[:limit] + "…"
	}
	return cleaned
}
