package game

import (
	"errors"
	"testing"

	"github.com/onnwee/bunt/savant"
)

func ptr[T any](v T) *T { return &v }

func text(s string) savant.Text { return savant.Text{Value: s, Valid: true} }

func liveGame(homeID int64, events []savant.BattedBallEvent, wpa []savant.WPAEntry) *savant.LiveGame {
	g := &savant.LiveGame{ExitVelocity: events}
	g.Scoreboard.Teams.Home = savant.Team{ID: ptr(homeID), Name: ptr("Atlanta Braves")}
	g.Scoreboard.Teams.Away = savant.Team{ID: ptr(int64(121)), Name: ptr("New York Mets")}
	g.Scoreboard.Stats.WPA.GameWPA = wpa
	return g
}

func event(ab, capIdx int, dist string, parks *int) savant.BattedBallEvent {
	e := savant.BattedBallEvent{
		Description: ptr("Austin Riley homers (12) on a fly ball to left field. Ozzie Albies scores."),
		AtBatNumber: ptr(ab),
		CapIndex:    ptr(capIdx),
		HitSpeed:    text("108.2"),
		HitAngle:    text("27"),
		HitDistance: text(dist),
		XBA:         text(".910"),
	}
	e.ContextMetrics.HomeRunBallparks = parks
	return e
}

func wpa(ab, capIdx int, delta float64) savant.WPAEntry {
	return savant.WPAEntry{AtBatIndex: ptr(ab), CapIndex: ptr(capIdx), HomeTeamWinProbabilityAdded: ptr(delta)}
}

func TestLatestBattedBallEmpty(t *testing.T) {
	bb, ok, err := LatestBattedBall(liveGame(braves, nil, nil), braves)
	if err != nil || ok {
		t.Fatalf("got %+v, %v, %v", bb, ok, err)
	}
}

func TestLatestBattedBallHome(t *testing.T) {
	g := liveGame(braves,
		[]savant.BattedBallEvent{event(3, 0, "250", nil), event(5, 1, "402", ptr(28))},
		[]savant.WPAEntry{wpa(4, 1, 2.0), wpa(4, 0, 9.0), wpa(4, 1, 8.5), wpa(5, 1, 1.0)},
	)
	bb, ok, err := LatestBattedBall(g, braves)
	if err != nil || !ok {
		t.Fatalf("LatestBattedBall() = %v, %v", ok, err)
	}
	if !bb.TeamIsHome || bb.HomeName != "Atlanta Braves" || bb.AwayName != "New York Mets" {
		t.Errorf("orientation: %+v", bb)
	}
	if bb.WPA != 8.5 {
		t.Errorf("WPA = %v, want last match 8.5", bb.WPA)
	}
	if bb.Distance != 402 || !bb.HasHomeRunParks || bb.HomeRunParks != 28 {
		t.Errorf("distance/parks: %+v", bb)
	}
	if bb.ExitVelocity != "108.2" || bb.LaunchAngle != "27" || bb.XBA != ".910" {
		t.Errorf("measurements: %+v", bb)
	}
}

func TestLatestBattedBallAwayFlipsSign(t *testing.T) {
	g := liveGame(147, []savant.BattedBallEvent{event(1, 0, "120", nil)}, []savant.WPAEntry{wpa(0, 0, 3.5)})
	bb, ok, err := LatestBattedBall(g, braves)
	if err != nil || !ok {
		t.Fatalf("LatestBattedBall() = %v, %v", ok, err)
	}
	if bb.TeamIsHome {
		t.Fatal("expected away orientation")
	}
	if bb.WPA != -3.5 {
		t.Fatalf("WPA = %v, want -3.5", bb.WPA)
	}
	if bb.HasHomeRunParks {
		t.Fatal("short hit should not carry a ballpark count")
	}
}

func TestLatestBattedBallHardErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *savant.LiveGame)
	}{
		{"no wpa match", func(g *savant.LiveGame) { g.Scoreboard.Stats.WPA.GameWPA = []savant.WPAEntry{wpa(9, 0, 1)} }},
		{"last wpa match has no delta", func(g *savant.LiveGame) {
			g.Scoreboard.Stats.WPA.GameWPA = []savant.WPAEntry{wpa(0, 0, 1), {AtBatIndex: ptr(0), CapIndex: ptr(0)}}
		}},
		{"no home name", func(g *savant.LiveGame) { g.Scoreboard.Teams.Home.Name = nil }},
		{"no away name", func(g *savant.LiveGame) { g.Scoreboard.Teams.Away.Name = nil }},
		{"no home id", func(g *savant.LiveGame) { g.Scoreboard.Teams.Home.ID = nil }},
		{"zero at bat number", func(g *savant.LiveGame) { g.ExitVelocity[0].AtBatNumber = ptr(0) }},
		{"no exit velocity", func(g *savant.LiveGame) { g.ExitVelocity[0].HitSpeed = savant.Text{} }},
		{"bad distance", func(g *savant.LiveGame) { g.ExitVelocity[0].HitDistance = text("far") }},
		{"long hit without parks", func(g *savant.LiveGame) { g.ExitVelocity[0].HitDistance = text("300") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := liveGame(braves, []savant.BattedBallEvent{event(1, 0, "150", nil)}, []savant.WPAEntry{wpa(0, 0, 1)})
			tt.mutate(g)
			if _, _, err := LatestBattedBall(g, braves); !errors.Is(err, ErrIncomplete) {
				t.Fatalf("expected ErrIncomplete, got %v", err)
			}
		})
	}
}
