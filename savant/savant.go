// Package savant reads Baseball Savant: the live game feed used for batted-ball
// reports, the player search, and the player page holding percentile rankings.
package savant

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/onnwee/bunt/fetch"
	"github.com/onnwee/bunt/percentile"
)

// DefaultBaseURL is the public Savant host.
const DefaultBaseURL = "https://baseballsavant.mlb.com"

const headshotURLFormat = "https://content.mlb.com/images/headshots/current/60x60/%d@3x.png"

// Client queries Savant through a resilient fetcher.
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

// LiveGame fetches the live feed for gamePK. It is never cached.
func (c *Client) LiveGame(ctx context.Context, gamePK int64) (*LiveGame, error) {
	var g LiveGame
	if err := c.Fetcher.GetJSON(ctx, fmt.Sprintf("%s/gf?game_pk=%d", c.BaseURL, gamePK), &g); err != nil {
		return nil, fmt.Errorf("fetch live game %d: %w", gamePK, err)
	}
	return &g, nil
}

// SearchPlayer returns the id of the best match for a free-text name. ok is false
// when the search has no usable first result.
func (c *Client) SearchPlayer(ctx context.Context, name string) (id int64, ok bool, err error) {
	q := url.Values{}
	q.Set("search", strings.TrimSpace(name))
	var results []searchResult
	if err := c.Fetcher.GetJSON(ctx, c.BaseURL+"/player/search-all?"+q.Encode(), &results); err != nil {
		return 0, false, fmt.Errorf("search player %q: %w", name, err)
	}
	if len(results) == 0 || !results[0].ID.Valid {
		return 0, false, nil
	}
	id, perr := strconv.ParseInt(results[0].ID.Value, 10, 64)
	if perr != nil {
		return 0, false, nil
	}
	return id, true, nil
}

// PercentileProfile fetches the player page and extracts the percentile table.
// A nil profile with a nil error means the player has no percentile data.
func (c *Client) PercentileProfile(ctx context.Context, playerID int64) (*percentile.Profile, error) {
	body, err := c.Fetcher.Get(ctx, fmt.Sprintf("%s/savant-player/%d?stats=statcast-r-hitting-mlb", c.BaseURL, playerID))
	if err != nil {
		return nil, fmt.Errorf("fetch player page %d: %w", playerID, err)
	}
	p, err := percentile.Parse(ctx, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("player %d: %w", playerID, err)
	}
	return p, nil
}

// HeadshotURL returns the small headshot image for a player.
func HeadshotURL(playerID int64) string { return fmt.Sprintf(headshotURLFormat, playerID) }
