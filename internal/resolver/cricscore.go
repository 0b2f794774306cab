package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// cricScoreMatch is the primary statistics provider's fixture shape.
type cricScoreMatch struct {
	ID         string   `json:"id"`
	Team1      string   `json:"t1"`
	Team2      string   `json:"t2"`
	Status     string   `json:"status"`
	MatchEnded bool     `json:"matchEnded"`
	Score      []string `json:"score"`
	TossWinner string   `json:"tossWinner"`
	TossChoice string   `json:"tossChoice"`
}

// CricScoreSource is the primary result source.
type CricScoreSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewCricScoreSource creates the primary statistics provider adapter.
func NewCricScoreSource(baseURL, apiKey string) *CricScoreSource {
	return &CricScoreSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *CricScoreSource) Name() string { return "cricscore" }

func (s *CricScoreSource) FetchRecentResults(ctx context.Context) ([]RawResult, error) {
	url := fmt.Sprintf("%s/v1/matches/recent?apikey=%s", s.baseURL, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
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
		return nil, fmt.Errorf("cricscore returned %d: %s", resp.StatusCode, string(body[:min(200, len(body))]))
	}

	var payload struct {
		Data []cricScoreMatch `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode cricscore response: %w", err)
	}

	results := make([]RawResult, 0, len(payload.Data))
	for _, m := range payload.Data {
		toss := ""
		if m.TossWinner != "" {
			toss = fmt.Sprintf("%s won the toss and chose to %s", m.TossWinner, m.TossChoice)
		}
		results = append(results, RawResult{
			Participants: []string{m.Team1, m.Team2},
			StatusText:   m.Status,
			Ended:        m.MatchEnded,
			ScoreLines:   m.Score,
			TossInfo:     toss,
		})
	}
	return results, nil
}
