package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"trigger-alerts/internal/classifier"
	"trigger-alerts/internal/matcher"
)

// SimulateEvent pushes one synthetic event through classification and, when
// an organization is given, scores it against that organization's active
// triggers. Nothing is persisted: no alerts and no monitoring history.
func (a *App) SimulateEvent(ctx context.Context, opts SimulateOptions) error {
	if opts.Title == "" {
		return errors.New("--title is required")
	}

	event := classifier.RawEvent{
		ID:        uuid.NewString(),
		Source:    opts.Source,
		Title:     opts.Title,
		Content:   opts.Content,
		Timestamp: time.Now().UTC(),
	}

	cls := a.newClassifier(ctx)
	analysis, err := cls.Classify(ctx, event)
	if err != nil {
		return fmt.Errorf("classify event: %w", err)
	}

	printAnalysis(analysis)

	if opts.OrganizationID <= 0 {
		return nil
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot score triggers")
	}
	if closeStore != nil {
		defer closeStore()
	}

	triggers, err := store.ListActiveTriggers(ctx, opts.OrganizationID)
	if err != nil {
		return err
	}
	if len(triggers) == 0 {
		fmt.Fprintln(os.Stdout, "no active triggers for organization")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Trigger\tName\tMatchScore\tCombined\tFires\tConditionsMet")
	for _, trigger := range triggers {
		matchScore := matcher.MatchScore(trigger.Conditions, analysis)
		combined := matcher.CombinedConfidence(analysis.Confidence, matchScore)
		fmt.Fprintf(writer, "%d\t%s\t%d\t%d\t%t\t%t\n",
			trigger.ID,
			trigger.Name,
			matchScore,
			combined,
			combined >= matcher.FireThreshold,
			matchScore >= matcher.ConditionsMetThreshold,
		)
	}
	return writer.Flush()
}

func printAnalysis(analysis classifier.EventAnalysis) {
	fmt.Fprintf(os.Stdout, "Classification: %s\n", analysis.Classification)
	fmt.Fprintf(os.Stdout, "Confidence:     %d/100\n", analysis.Confidence)
	fmt.Fprintf(os.Stdout, "Urgency:        %s\n", analysis.Urgency)
	fmt.Fprintf(os.Stdout, "Areas:          %s\n", strings.Join(analysis.AffectedAreas, ", "))
	fmt.Fprintf(os.Stdout, "Summary:        %s\n", analysis.Summary)
	for _, insight := range analysis.KeyInsights {
		fmt.Fprintf(os.Stdout, "Insight:        %s\n", insight)
	}
	for _, rec := range analysis.Recommendations {
		fmt.Fprintf(os.Stdout, "Recommend:      %s\n", rec)
	}
}
