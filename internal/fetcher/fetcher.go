package fetcher

import (
	"context"

	"trigger-alerts/internal/classifier"
)

// EventFetcher retrieves the latest raw external events for one poll cycle.
type EventFetcher interface {
	FetchLatest(ctx context.Context) ([]classifier.RawEvent, error)
}
