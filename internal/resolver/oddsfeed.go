package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// oddsFeedEvent is the internal odds-feed side channel's shape. It is a
// last-resort source: the ingestion pipeline marks events it has seen settle.
type oddsFeedEvent struct {
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	ResultText string `json:"result_text"`
	Ended      bool   `json:"ended"`
}

// OddsFeedSource reads results off the internal odds ingestion service.
type OddsFeedSource struct {
	baseURL string
	client  *http.Client
}

// NewOddsFeedSource creates the internal odds-feed side-channel adapter.
func NewOddsFeedSource(baseURL string) *OddsFeedSource {
	return &OddsFeedSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *OddsFeedSource) Name() string { return "oddsfeed" }

func (s *OddsFeedSource) FetchRecentResults(ctx context.Context) ([]RawResult, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/internal/events/settled", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oddsfeed returned %d: %s", resp.StatusCode, string(body[:min(200, len(body))]))
	}

	var events []oddsFeedEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode oddsfeed response: %w", err)
	}

	results := make([]RawResult, 0, len(events))
	for _, e := range events {
		results = append(results, RawResult{
			Participants: []string{e.HomeTeam, e.AwayTeam},
			StatusText:   e.ResultText,
			Ended:        e.Ended,
		})
	}
	return results, nil
}
