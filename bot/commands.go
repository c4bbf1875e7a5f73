package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/onnwee/bunt/game"
	"github.com/onnwee/bunt/render"
	"github.com/onnwee/bunt/standings"
)

func (h *Handler) battedBall(ctx context.Context, _ string, _ []string, _ string, r Replier) (string, error) {
	typing(ctx, r)
	g, err := h.Games.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve game: %w", err)
	}
	if g == nil {
		return OutcomeEmpty, nil
	}
	bb, ok, err := game.LatestBattedBall(g, h.TeamID)
	if err != nil {
		return "", fmt.Errorf("latest batted ball: %w", err)
	}
	if !ok {
		return OutcomeEmpty, nil
	}
	return OutcomeOK, r.Reply(ctx, render.BattedBall(bb))
}

func (h *Handler) standingsTable(ctx context.Context, verb string, args []string, _ string, r Replier) (string, error) {
	typing(ctx, r)
	sel := standings.ParseSelector(verb, args)
	records, err := h.Standings.Standings(ctx, sel.LeagueID)
	if err != nil {
		return "", fmt.Errorf("fetch standings: %w", err)
	}
	tbl, err := standings.Build(records, sel, h.now())
	if err != nil {
		return "", fmt.Errorf("build standings: %w", err)
	}
	return OutcomeOK, r.Reply(ctx, render.Standings(tbl))
}

// percentiles takes a numeric player id or a free-text name.
func (h *Handler) percentiles(ctx context.Context, _ string, _ []string, rest string, r Replier) (string, error) {
	id, ok, err := h.playerID(ctx, rest)
	if err != nil {
		return "", err
	}
	if !ok {
		return OutcomeEmpty, r.Reply(ctx, render.Text(render.NoPlayerMatch))
	}
	typing(ctx, r)
	p, err := h.Players.PercentileProfile(ctx, id)
	if err != nil {
		return "", fmt.Errorf("percentile profile: %w", err)
	}
	if p == nil {
		return OutcomeEmpty, nil
	}
	return OutcomeOK, r.Reply(ctx, render.Percentiles(p, id))
}

func (h *Handler) playerID(ctx context.Context, arg string) (int64, bool, error) {
	if arg == "" {
		return 0, false, nil
	}
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id >= 0 {
		return id, true, nil
	}
	id, ok, err := h.Players.SearchPlayer(ctx, arg)
	if err != nil {
		return 0, false, fmt.Errorf("player search: %w", err)
	}
	return id, ok, nil
}

func (h *Handler) help(ctx context.Context, _ string, _ []string, _ string, r Replier) (string, error) {
	return OutcomeOK, r.Reply(ctx, render.Help(h.prefix()))
}
