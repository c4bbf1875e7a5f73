// Package game finds the configured team's current game and extracts the latest
// batted ball from its live feed.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/onnwee/bunt/savant"
	"github.com/onnwee/bunt/statsapi"
	"github.com/onnwee/bunt/telemetry"
)

// maxResolutions bounds the rediscovery loop when the live feed keeps reporting Final.
const maxResolutions = 32

// ErrUnsettled is returned when rediscovery hits maxResolutions.
var ErrUnsettled = errors.New("game resolution did not settle")

// ScheduleSource lists a season's games in chronological order.
type ScheduleSource interface {
	Schedule(ctx context.Context, year int) ([]statsapi.ScheduleEntry, error)
}

// LiveFeed fetches the current snapshot of one game.
type LiveFeed interface {
	LiveGame(ctx context.Context, gamePK int64) (*savant.LiveGame, error)
}

// Resolver caches the id of the team's next unfinished game. The schedule is read
// once per game; each Resolve re-fetches only the live feed.
type Resolver struct {
	Schedule ScheduleSource
	Live     LiveFeed
	TeamID   int64
	Now      func() time.Time

	mu     sync.Mutex
	gamePK int64
	cached bool

	// snapshot mirrors the slot for Cached; nil when empty. Written under mu.
	snapshot atomic.Pointer[int64]
}

// NewResolver returns a Resolver for teamID.
func NewResolver(schedule ScheduleSource, live LiveFeed, teamID int64) *Resolver {
	return &Resolver{Schedule: schedule, Live: live, TeamID: teamID, Now: time.Now}
}

// Cached reports the cached game id, if any. It never waits on a running Resolve.
func (r *Resolver) Cached() (int64, bool) {
	if pk := r.snapshot.Load(); pk != nil {
		return *pk, true
	}
	return 0, false
}

// store sets the slot. Callers hold mu.
func (r *Resolver) store(pk int64, ok bool) {
	r.gamePK, r.cached = pk, ok
	if ok {
		r.snapshot.Store(&pk)
	} else {
		r.snapshot.Store(nil)
	}
}

// Resolve returns the live snapshot of the team's current game, or nil when the
// schedule has no unfinished game. Concurrent callers are serialized.
func (r *Resolver) Resolve(ctx context.Context) (*savant.LiveGame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := telemetry.LoggerWithCorr(ctx).With("component", "game_resolver")
	finished := make(map[int64]bool)
	for i := 0; i < maxResolutions; i++ {
		if r.cached {
			telemetry.IncGameCache("hit")
		} else {
			telemetry.IncGameCache("miss")
			pk, ok, err := r.discover(ctx, finished)
			if err != nil {
				return nil, err
			}
			if !ok {
				telemetry.IncGameCache("empty")
				return nil, nil
			}
			r.store(pk, true)
			logger.Info("resolved current game", slog.Int64("game_pk", pk))
		}

		g, err := r.Live.LiveGame(ctx, r.gamePK)
		if err != nil {
			return nil, err
		}
		if g.State() != statsapi.FinalGameState {
			return g, nil
		}

		logger.Info("cached game is final, rediscovering", slog.Int64("game_pk", r.gamePK))
		telemetry.IncGameCache("invalidate")
		finished[r.gamePK] = true
		r.store(0, false)
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrUnsettled, maxResolutions)
}

// discover returns the first scheduled game of the team that is neither Final in
// the schedule nor already seen Final in the live feed during this call.
func (r *Resolver) discover(ctx context.Context, finished map[int64]bool) (int64, bool, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	games, err := r.Schedule.Schedule(ctx, now().Year())
	if err != nil {
		return 0, false, fmt.Errorf("discover game: %w", err)
	}
	for _, g := range games {
		if !g.Involves(r.TeamID) || g.Final() || finished[g.GamePK] {
			continue
		}
		return g.GamePK, true, nil
	}
	return 0, false, nil
}
