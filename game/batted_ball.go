package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/onnwee/bunt/savant"
)

// HomeRunDistance is the distance in feet from which the ballpark count is reported.
const HomeRunDistance = 300

// ErrIncomplete marks a live feed missing a field every well-formed feed carries.
var ErrIncomplete = errors.New("incomplete live game feed")

// BattedBall is the report for the most recent ball in play.
type BattedBall struct {
	HomeName string
	AwayName string
	// TeamIsHome is true when the configured team is the home side.
	TeamIsHome bool

	Description  string
	ExitVelocity string
	LaunchAngle  string
	Distance     int
	XBA          string
	// WPA is the win probability added, signed from the configured team's side.
	WPA float64
	// HomeRunParks is meaningful only when HasHomeRunParks is set.
	HomeRunParks    int
	HasHomeRunParks bool
}

// LatestBattedBall extracts the last batted ball of g. ok is false when the game
// has no batted balls yet.
func LatestBattedBall(g *savant.LiveGame, teamID int64) (bb BattedBall, ok bool, err error) {
	if g == nil || len(g.ExitVelocity) == 0 {
		return BattedBall{}, false, nil
	}
	ev := g.ExitVelocity[len(g.ExitVelocity)-1]
	teams := g.Scoreboard.Teams

	if teams.Home.Name == nil {
		return bb, false, missing("home team name")
	}
	if teams.Away.Name == nil {
		return bb, false, missing("away team name")
	}
	if teams.Home.ID == nil {
		return bb, false, missing("home team id")
	}
	bb.HomeName, bb.AwayName = *teams.Home.Name, *teams.Away.Name
	bb.TeamIsHome = *teams.Home.ID == teamID

	if ev.Description == nil {
		return bb, false, missing("description")
	}
	bb.Description = *ev.Description
	if ev.AtBatNumber == nil || *ev.AtBatNumber < 1 {
		return bb, false, missing("at bat number")
	}
	if ev.CapIndex == nil {
		return bb, false, missing("cap index")
	}

	wpa, err := findWPA(g.Scoreboard.Stats.WPA.GameWPA, *ev.AtBatNumber-1, *ev.CapIndex)
	if err != nil {
		return bb, false, err
	}
	if bb.TeamIsHome {
		bb.WPA = wpa
	} else {
		bb.WPA = -wpa
	}

	if !ev.HitSpeed.Valid {
		return bb, false, missing("hit speed")
	}
	bb.ExitVelocity = ev.HitSpeed.Value
	if !ev.HitAngle.Valid {
		return bb, false, missing("hit angle")
	}
	bb.LaunchAngle = ev.HitAngle.Value
	if !ev.HitDistance.Valid {
		return bb, false, missing("hit distance")
	}
	dist, perr := strconv.Atoi(strings.TrimSpace(ev.HitDistance.Value))
	if perr != nil || dist < 0 {
		return bb, false, fmt.Errorf("%w: hit distance %q", ErrIncomplete, ev.HitDistance.Value)
	}
	bb.Distance = dist
	if !ev.XBA.Valid {
		return bb, false, missing("xBA")
	}
	bb.XBA = ev.XBA.Value

	if dist >= HomeRunDistance {
		if ev.ContextMetrics.HomeRunBallparks == nil {
			return bb, false, missing("home run ballpark count")
		}
		bb.HomeRunParks, bb.HasHomeRunParks = *ev.ContextMetrics.HomeRunBallparks, true
	}
	return bb, true, nil
}

// findWPA returns the home-side delta of the last entry matching the key. The
// last match is authoritative even when its delta is missing.
func findWPA(entries []savant.WPAEntry, atBatIndex, capIndex int) (float64, error) {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.AtBatIndex == nil || e.CapIndex == nil || *e.AtBatIndex != atBatIndex || *e.CapIndex != capIndex {
			continue
		}
		if e.HomeTeamWinProbabilityAdded == nil {
			return 0, fmt.Errorf("%w: win probability entry for at bat %d cap %d has no delta", ErrIncomplete, atBatIndex, capIndex)
		}
		return *e.HomeTeamWinProbabilityAdded, nil
	}
	return 0, fmt.Errorf("%w: no win probability entry for at bat %d cap %d", ErrIncomplete, atBatIndex, capIndex)
}

func missing(field string) error { return fmt.Errorf("%w: missing %s", ErrIncomplete, field) }
