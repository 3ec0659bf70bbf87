package football

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bilwininc-ship-it/aianaliz/internal/types/fixture"
)

const defaultBaseURL = "https://v3.football.api-sports.io"

// Client wraps the api-sports fixtures API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a local
// server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

type apiResponse struct {
	Response []rawFixture `json:"response"`
}

type rawFixture struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
}

// FetchFixturesForDate fetches every fixture played on the given calendar
// date (YYYY-MM-DD) and normalizes it into the pool record shape. The
// caller treats an error as zero fixtures for that day.
func (c *Client) FetchFixturesForDate(ctx context.Context, apiKey, date string) ([]fixture.Record, error) {
	url := fmt.Sprintf("%s/fixtures?date=%s", c.baseURL, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-apisports-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fixtures request for %s: %w", date, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixtures request for %s: status %d", date, resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("fixtures response for %s: %w", date, err)
	}

	now := time.Now().UnixMilli()
	records := make([]fixture.Record, 0, len(payload.Response))
	for _, raw := range payload.Response {
		records = append(records, fixture.Record{
			FixtureID:   raw.Fixture.ID,
			HomeTeam:    CleanTeamName(raw.Teams.Home.Name),
			AwayTeam:    CleanTeamName(raw.Teams.Away.Name),
			HomeTeamID:  raw.Teams.Home.ID,
			AwayTeamID:  raw.Teams.Away.ID,
			League:      raw.League.Name,
			LeagueID:    raw.League.ID,
			Date:        kickoffDate(raw.Fixture.Date),
			Time:        kickoffTime(raw.Fixture.Date),
			Timestamp:   kickoffEpochMillis(raw.Fixture.Date),
			Status:      raw.Fixture.Status.Short,
			HomeStats:   nil,
			AwayStats:   nil,
			H2H:         []interface{}{},
			LastUpdated: now,
		})
	}
	return records, nil
}

// cleanReplacer maps Turkish characters to their ASCII forms,
// case-preserving.
var cleanReplacer = strings.NewReplacer(
	"ç", "c", "Ç", "C",
	"ğ", "g", "Ğ", "G",
	"ı", "i", "İ", "I",
	"ö", "o", "Ö", "O",
	"ş", "s", "Ş", "S",
	"ü", "u", "Ü", "U",
)

// CleanTeamName strips Turkish diacritics from a team name and trims
// surrounding whitespace.
func CleanTeamName(name string) string {
	return strings.TrimSpace(cleanReplacer.Replace(name))
}

func kickoffDate(kickoff string) string {
	if i := strings.Index(kickoff, "T"); i > 0 {
		return kickoff[:i]
	}
	return kickoff
}

func kickoffTime(kickoff string) string {
	if i := strings.Index(kickoff, "T"); i >= 0 && len(kickoff) >= i+6 {
		return kickoff[i+1 : i+6]
	}
	return ""
}

func kickoffEpochMillis(kickoff string) int64 {
	t, err := time.Parse(time.RFC3339, kickoff)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
