// Package statsapi wraps the MLB Stats API endpoints the bot reads: the season
// schedule (for game discovery) and league standings.
package statsapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/onnwee/bunt/fetch"
)

// DefaultBaseURL is the public Stats API host.
const DefaultBaseURL = "https://statsapi.mlb.com"

// Identifiers for the configured club and the two leagues.
const (
	AtlantaBravesTeamID  int64 = 144
	AmericanLeagueID     int64 = 103
	NationalLeagueID     int64 = 104
	NationalLeagueEastID int64 = 204
	FinalGameState             = "Final"
	baseballSportID            = 1
)

// Client queries the Stats API through a resilient fetcher.
type Client struct {
	Fetcher *fetch.Client
	BaseURL string
}

// New returns a Client rooted at baseURL (DefaultBaseURL when empty).
func New(f *fetch.Client, baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{Fetcher: f, BaseURL: baseURL}
}

// Schedule returns every game of the given season in the order the API lists them,
// which is chronological.
func (c *Client) Schedule(ctx context.Context, year int) ([]ScheduleEntry, error) {
	q := url.Values{}
	q.Set("sportId", strconv.Itoa(baseballSportID))
	q.Set("startDate", fmt.Sprintf("%d-01-01", year))
	q.Set("endDate", fmt.Sprintf("%d-12-31", year))
	q.Set("hydrate", "venue(timezone)")

	var body scheduleResponse
	if err := c.Fetcher.GetJSON(ctx, c.BaseURL+"/api/v1/schedule/games/?"+q.Encode(), &body); err != nil {
		return nil, fmt.Errorf("fetch schedule year=%d: %w", year, err)
	}
	var out []ScheduleEntry
	for _, d := range body.Dates {
		out = append(out, d.Games...)
	}
	return out, nil
}

// Standings returns every division record of a league.
func (c *Client) Standings(ctx context.Context, leagueID int64) ([]DivisionRecord, error) {
	q := url.Values{}
	q.Set("leagueId", strconv.FormatInt(leagueID, 10))
	q.Set("hydrate", "team,division")

	var body standingsResponse
	if err := c.Fetcher.GetJSON(ctx, c.BaseURL+"/api/v1/standings?"+q.Encode(), &body); err != nil {
		return nil, fmt.Errorf("fetch standings league=%d: %w", leagueID, err)
	}
	if body.Records == nil {
		return nil, fmt.Errorf("%w: standings response has no records", fetch.ErrDecode)
	}
	return body.Records, nil
}
