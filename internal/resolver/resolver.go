package resolver

import (
	"context"
	"log/slog"

	"github.com/crickbet/platform/internal/domain"
	"github.com/crickbet/platform/internal/infra"
)

// Resolver reconciles the external result sources into one canonical outcome.
// Sources are tried in priority order; the first definitive signal wins.
type Resolver struct {
	sources []Source
	logger  *slog.Logger
}

// NewResolver creates a resolver over the given priority-ordered sources.
func NewResolver(logger *slog.Logger, sources ...Source) *Resolver {
	return &Resolver{sources: sources, logger: logger}
}

// Resolve returns the canonical outcome for a match between team1 and team2,
// or (nil, nil) when no source has a usable result yet.
//
// Per-source failure semantics: a transport or parse failure from one source
// is logged and counted, and that source is treated as having returned
// not-yet-available. Failures never propagate to the caller — only exhaustion
// of every source does, and exhaustion is not an error.
func (r *Resolver) Resolve(ctx context.Context, team1, team2 string) (*domain.Outcome, error) {
	for _, src := range r.sources {
		results, err := src.FetchRecentResults(ctx)
		if err != nil {
			infra.SourceFetchFailures.WithLabelValues(src.Name()).Inc()
			r.logger.Warn("result source fetch failed",
				"source", src.Name(), "team1", team1, "team2", team2, "error", err)
			continue
		}

		raw, found := findMatch(results, team1, team2)
		if !found {
			continue
		}
		if !raw.Ended {
			// Source knows the fixture but it has not finished there yet.
			continue
		}

		outcome, ok := ParseResult(raw.StatusText, team1, team2)
		if !ok {
			infra.UnparsedResults.Inc()
			r.logger.Warn("unparsable result text, leaving match pending",
				"source", src.Name(), "team1", team1, "team2", team2, "status", raw.StatusText)
			continue
		}

		outcome.Source = src.Name()
		return outcome, nil
	}
	return nil, nil
}

func findMatch(results []RawResult, team1, team2 string) (RawResult, bool) {
	for _, raw := range results {
		if ResultCovers(raw, team1, team2) {
			return raw, true
		}
	}
	return RawResult{}, false
}
