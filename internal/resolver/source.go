package resolver

import "context"

// RawResult is the normalized shape every source adapter maps its feed into
// before parsing. Feeds are untrusted: fields may be missing or malformed.
type RawResult struct {
	Participants []string
	StatusText   string
	Ended        bool
	ScoreLines   []string
	TossInfo     string
}

// Source is a single external result provider. FetchRecentResults returns
// whatever recently-finished (or in-progress) fixtures the provider knows
// about; the resolver filters for the match it cares about.
type Source interface {
	Name() string
	FetchRecentResults(ctx context.Context) ([]RawResult, error)
}
