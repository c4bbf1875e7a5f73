package savant

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// LiveGame is the decoded game feed. Pointer fields distinguish a missing value
// from a zero one; the extractor treats several of them as required.
type LiveGame struct {
	Scoreboard   Scoreboard        `json:"scoreboard"`
	ExitVelocity []BattedBallEvent `json:"exit_velocity"`
}

// Scoreboard carries state, teams and the win-probability table.
type Scoreboard struct {
	Status struct {
		AbstractGameState string `json:"abstractGameState"`
	} `json:"status"`
	Teams struct {
		Home Team `json:"home"`
		Away Team `json:"away"`
	} `json:"teams"`
	Stats struct {
		WPA struct {
			GameWPA []WPAEntry `json:"gameWpa"`
		} `json:"wpa"`
	} `json:"stats"`
}

// Team is one side of the scoreboard.
type Team struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

// State returns the abstract game state.
func (g *LiveGame) State() string { return g.Scoreboard.Status.AbstractGameState }

// BattedBallEvent is one entry of the exit_velocity list. AtBatNumber is 1-based.
type BattedBallEvent struct {
	Description    *string `json:"des"`
	AtBatNumber    *int    `json:"ab_number"`
	CapIndex       *int    `json:"cap_index"`
	HitSpeed       Text    `json:"hit_speed"`
	HitAngle       Text    `json:"hit_angle"`
	HitDistance    Text    `json:"hit_distance"`
	XBA            Text    `json:"xba"`
	ContextMetrics struct {
		HomeRunBallparks *int `json:"homeRunBallparks"`
	} `json:"contextMetrics"`
}

// WPAEntry is one row of the win-probability-added table. AtBatIndex is 0-based and
// the delta is from the home team's side.
type WPAEntry struct {
	AtBatIndex                  *int     `json:"atBatIndex"`
	CapIndex                    *int     `json:"capIndex"`
	HomeTeamWinProbabilityAdded *float64 `json:"homeTeamWinProbabilityAdded"`
}

// Text is a JSON scalar kept as its textual form. Savant reports measurements
// sometimes as strings and sometimes as numbers.
type Text struct {
	Value string
	Valid bool
}

// UnmarshalJSON accepts a string, a number, or null.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = Text{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text{Value: s, Valid: true}
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("savant: scalar %s is neither string nor number", b)
	}
	*t = Text{Value: string(b), Valid: true}
	return nil
}

type searchResult struct {
	ID   Text   `json:"id"`
	Name string `json:"name"`
}
