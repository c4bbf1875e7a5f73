package bot

import (
	"github.com/onnwee/bunt/fetch"
	"github.com/onnwee/bunt/game"
	"github.com/onnwee/bunt/savant"
	"github.com/onnwee/bunt/statsapi"
)

// Options configure New.
type Options struct {
	Prefix          string
	TeamID          int64
	Fetcher         *fetch.Client
	StatsAPIBaseURL string
	SavantBaseURL   string
	Log             CommandLog
}

// New wires a Handler to the Stats API and Savant through one fetcher. The
// returned Handler's Games is a *game.Resolver.
func New(o Options) *Handler {
	if o.Fetcher == nil {
		o.Fetcher = fetch.New(fetch.DefaultRetryPolicy())
	}
	stats := statsapi.New(o.Fetcher, o.StatsAPIBaseURL)
	sav := savant.New(o.Fetcher, o.SavantBaseURL)
	return &Handler{
		Prefix:    o.Prefix,
		TeamID:    o.TeamID,
		Games:     game.NewResolver(stats, sav, o.TeamID),
		Players:   sav,
		Standings: stats,
		Log:       o.Log,
	}
}
