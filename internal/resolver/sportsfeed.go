package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// sportsFeedFixture is the secondary aggregator's fixture shape. The feed
// reports teams as a two-element array and completion as a string flag.
type sportsFeedFixture struct {
	Teams      []string `json:"teams"`
	ResultText string   `json:"result"`
	State      string   `json:"state"`
	Scores     []struct {
		Inning string `json:"inning"`
		Line   string `json:"line"`
	} `json:"scores"`
}

// SportsFeedSource is the secondary aggregator source.
type SportsFeedSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSportsFeedSource creates the secondary aggregator adapter.
func NewSportsFeedSource(baseURL, apiKey string) *SportsFeedSource {
	return &SportsFeedSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SportsFeedSource) Name() string { return "sportsfeed" }

func (s *SportsFeedSource) FetchRecentResults(ctx context.Context) ([]RawResult, error) {
	url := s.baseURL + "/cricket/fixtures?window=recent"
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sportsfeed returned %d: %s", resp.StatusCode, string(body[:min(200, len(body))]))
	}

	var payload struct {
		Fixtures []sportsFeedFixture `json:"fixtures"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode sportsfeed response: %w", err)
	}

	results := make([]RawResult, 0, len(payload.Fixtures))
	for _, f := range payload.Fixtures {
		lines := make([]string, 0, len(f.Scores))
		for _, sc := range f.Scores {
			lines = append(lines, fmt.Sprintf("%s: %s", sc.Inning, sc.Line))
		}
		results = append(results, RawResult{
			Participants: f.Teams,
			StatusText:   f.ResultText,
			Ended:        f.State == "finished" || f.State == "completed",
			ScoreLines:   lines,
		})
	}
	return results, nil
}
