package savant

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/onnwee/bunt/fetch"
	"github.com/onnwee/bunt/testutil"
)

func newTestClient(t *testing.T) (*Client, *testutil.MockUpstream) {
	t.Helper()
	m := testutil.NewMockUpstream(t)
	return New(fetch.New(fetch.RetryPolicy{MaxAttempts: 2}), m.URL), m
}

func TestLiveGameDecodesMixedScalars(t *testing.T) {
	c, m := newTestClient(t)
	m.Handle("/gf", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("game_pk") != "745123" {
			t.Errorf("game_pk = %q", r.URL.Query().Get("game_pk"))
		}
		_, _ = w.Write([]byte(`{
			"scoreboard": {
				"status": {"abstractGameState": "Live"},
				"teams": {"home": {"id": 144, "name": "Atlanta Braves"}, "away": {"id": 121, "name": "New York Mets"}},
				"stats": {"wpa": {"gameWpa": [{"atBatIndex": 4, "capIndex": 0, "homeTeamWinProbabilityAdded": -3.2}]}}
			},
			"exit_velocity": [
				{"des": "Matt Olson lines out. Runner holds.", "ab_number": 5, "cap_index": 0,
				 "hit_speed": "101.3", "hit_angle": 12, "hit_distance": null, "xba": ".620",
				 "contextMetrics": {"homeRunBallparks": 0}}
			]
		}`))
	})

	g, err := c.LiveGame(context.Background(), 745123)
	if err != nil {
		t.Fatalf("LiveGame() error = %v", err)
	}
	if g.State() != "Live" {
		t.Errorf("State() = %q", g.State())
	}
	if g.Scoreboard.Teams.Home.ID == nil || *g.Scoreboard.Teams.Home.ID != 144 {
		t.Errorf("home id = %v", g.Scoreboard.Teams.Home.ID)
	}
	if len(g.ExitVelocity) != 1 {
		t.Fatalf("len(ExitVelocity) = %d", len(g.ExitVelocity))
	}
	ev := g.ExitVelocity[0]
	if ev.HitSpeed != (Text{Value: "101.3", Valid: true}) {
		t.Errorf("hit_speed = %+v", ev.HitSpeed)
	}
	if ev.HitAngle != (Text{Value: "12", Valid: true}) {
		t.Errorf("hit_angle = %+v", ev.HitAngle)
	}
	if ev.HitDistance.Valid {
		t.Errorf("null hit_distance decoded as %+v", ev.HitDistance)
	}
	wpa := g.Scoreboard.Stats.WPA.GameWPA
	if len(wpa) != 1 || *wpa[0].HomeTeamWinProbabilityAdded != -3.2 {
		t.Errorf("wpa = %+v", wpa)
	}
}

func TestLiveGameDecodeError(t *testing.T) {
	c, m := newTestClient(t)
	m.Handle("/gf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"scoreboard": [}`))
	})
	if _, err := c.LiveGame(context.Background(), 1); !errors.Is(err, fetch.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestSearchPlayer(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID int64
		wantOK bool
	}{
		{"string id", `[{"id":"660670","name":"Ronald Acuña Jr."},{"id":"1"}]`, 660670, true},
		{"numeric id", `[{"id":675911}]`, 675911, true},
		{"no results", `[]`, 0, false},
		{"missing id", `[{"name":"Nobody"}]`, 0, false},
		{"garbage id", `[{"id":"abc"}]`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newTestClient(t)
			m.Handle("/player/search-all", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("search") != "acuna" {
					t.Errorf("search = %q", r.URL.Query().Get("search"))
				}
				_, _ = w.Write([]byte(tt.body))
			})
			id, ok, err := c.SearchPlayer(context.Background(), " acuna ")
			if err != nil {
				t.Fatalf("SearchPlayer() error = %v", err)
			}
			if id != tt.wantID || ok != tt.wantOK {
				t.Fatalf("got (%d, %v), want (%d, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestPercentileProfile(t *testing.T) {
	c, m := newTestClient(t)
	m.Handle("/savant-player/660670", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("stats") != "statcast-r-hitting-mlb" {
			t.Errorf("stats = %q", r.URL.Query().Get("stats"))
		}
		_, _ = w.Write([]byte(`<div class="bio-player-name"><div>Ronald Acuña Jr.</div></div>
<table id="percentileRankings"><thead><tr><th>Year</th><th>xwOBA</th></tr></thead>
<tbody><tr><td><span>2023</span></td><td><span>100</span></td></tr></tbody></table>`))
	})
	p, err := c.PercentileProfile(context.Background(), 660670)
	if err != nil || p == nil {
		t.Fatalf("PercentileProfile() = %v, %v", p, err)
	}
	if p.Name != "Ronald Acuña Jr." || p.Year != 2023 || !p.Hitter() {
		t.Fatalf("unexpected profile %+v", p)
	}

	m.HTML("/savant-player/1", `<html><body>no rankings</body></html>`)
	p, err = c.PercentileProfile(context.Background(), 1)
	if err != nil || p != nil {
		t.Fatalf("expected (nil, nil), got %v, %v", p, err)
	}
}

func TestHeadshotURL(t *testing.T) {
	want := "https://content.mlb.com/images/headshots/current/60x60/660670@3x.png"
	if got := HeadshotURL(660670); got != want {
		t.Fatalf("HeadshotURL() = %q", got)
	}
}

func TestNewDefaultsBaseURL(t *testing.T) {
	if c := New(fetch.New(fetch.DefaultRetryPolicy()), " "); c.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL = %q", c.BaseURL)
	}
}
