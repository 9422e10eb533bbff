package classifier

import (
	"context"

	"github.com/rs/zerolog"
)

// Resilient tries the primary classifier and degrades to the deterministic
// fallback on any failure. The pipeline must keep moving when the
// language-model backend is down, so Classify never returns an error.
type Resilient struct {
	primary  Classifier
	fallback Classifier
	logger   zerolog.Logger
}

// NewResilient wires a primary classifier in front of the keyword fallback.
// A nil primary means fallback-only operation.
func NewResilient(primary Classifier, logger zerolog.Logger) *Resilient {
	return &Resilient{
		primary:  primary,
		fallback: NewFallback(),
		logger:   logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify returns the primary analysis when available, otherwise the
// deterministic fallback analysis.
func (r *Resilient) Classify(ctx context.Context, event RawEvent) (EventAnalysis, error) {
	if r.primary != nil {
		analysis, err := r.primary.Classify(ctx, event)
		if err == nil {
			return Sanitize(analysis), nil
		}
		r.logger.Warn().Err(err).Str("event_id", event.ID).Msg("primary classifier failed; using fallback")
	}

	return r.fallback.Classify(ctx, event)
}

var _ Classifier = (*Resilient)(nil)
