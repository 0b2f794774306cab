package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/crickbet/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	name    string
	results []RawResult
	err     error
	calls   int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) FetchRecentResults(ctx context.Context) ([]RawResult, error) {
	s.calls++
	return s.results, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveFirstSourceWins(t *testing.T) {
	primary := &stubSource{name: "primary", results: []RawResult{
		{Participants: []string{"India", "Pakistan"}, StatusText: "India won by 7 wickets", Ended: true},
	}}
	secondary := &stubSource{name: "secondary"}

	r := NewResolver(testLogger(), primary, secondary)
	outcome, err := r.Resolve(context.Background(), "India", "Pakistan")

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, domain.OutcomeWinner, outcome.Kind)
	assert.Equal(t, "India", outcome.Winner)
	assert.Equal(t, "primary", outcome.Source)
	assert.Equal(t, 0, secondary.calls, "secondary must not be queried after a definitive signal")
}

func TestResolveFailureFallsThrough(t *testing.T) {
	primary := &stubSource{name: "primary", err: errors.New("connection refused")}
	secondary := &stubSource{name: "secondary", results: []RawResult{
		{Participants: []string{"IND", "PAK"}, StatusText: "Pakistan won by 23 runs", Ended: true},
	}}

	r := NewResolver(testLogger(), primary, secondary)
	outcome, err := r.Resolve(context.Background(), "India", "Pakistan")

	require.NoError(t, err, "source failures must never propagate")
	require.NotNil(t, outcome)
	assert.Equal(t, "Pakistan", outcome.Winner)
	assert.Equal(t, "secondary", outcome.Source)
}

func TestResolveNotEndedIsNotYetAvailable(t *testing.T) {
	primary := &stubSource{name: "primary", results: []RawResult{
		{Participants: []string{"India", "Pakistan"}, StatusText: "India need 42 runs", Ended: false},
	}}

	r := NewResolver(testLogger(), primary)
	outcome, err := r.Resolve(context.Background(), "India", "Pakistan")

	require.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestResolveUnparsedFallsThrough(t *testing.T) {
	primary := &stubSource{name: "primary", results: []RawResult{
		{Participants: []string{"India", "Pakistan"}, StatusText: "weird feed glitch", Ended: true},
	}}
	secondary := &stubSource{name: "secondary", results: []RawResult{
		{Participants: []string{"India", "Pakistan"}, StatusText: "Match abandoned due to rain", Ended: true},
	}}

	r := NewResolver(testLogger(), primary, secondary)
	outcome, err := r.Resolve(context.Background(), "India", "Pakistan")

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, domain.OutcomeNoResult, outcome.Kind)
}

func TestResolveAllExhausted(t *testing.T) {
	r := NewResolver(testLogger(),
		&stubSource{name: "a", err: errors.New("timeout")},
		&stubSource{name: "b"},
		&stubSource{name: "c", results: []RawResult{
			{Participants: []string{"England", "Australia"}, StatusText: "England won", Ended: true},
		}})

	outcome, err := r.Resolve(context.Background(), "India", "Pakistan")
	require.NoError(t, err)
	assert.Nil(t, outcome, "no source covering the match means not yet available")
}

func TestResolveReversedParticipantOrder(t *testing.T) {
	primary := &stubSource{name: "primary", results: []RawResult{
		{Participants: []string{"PAK", "IND"}, StatusText: "India won by 5 wickets", Ended: true},
	}}

	r := NewResolver(testLogger(), primary)
	outcome, err := r.Resolve(context.Background(), "India", "Pakistan")

	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, "India", outcome.Winner)
}
