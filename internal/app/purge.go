package app

import (
	"context"
	"errors"
)

// Purge deletes alerts older than the configured cutoff.
func (a *App) Purge(ctx context.Context, opts PurgeOptions) error {
	if opts.OlderThan.IsZero() {
		return errors.New("a cutoff time is required")
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot purge alerts")
	}
	if closeStore != nil {
		defer closeStore()
	}

	deleted, err := store.DeleteAlertsBefore(ctx, opts.OlderThan.UTC())
	if err != nil {
		return err
	}

	a.Logger.Info().Int64("deleted", deleted).Time("older_than", opts.OlderThan.UTC()).Msg("alert purge complete")
	return nil
}
