// Package render turns query results into chat messages. A Message carries rich
// embeds for clients that support them and flattens to plain text for the rest.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/onnwee/bunt/game"
	"github.com/onnwee/bunt/percentile"
	"github.com/onnwee/bunt/savant"
	"github.com/onnwee/bunt/standings"
)

const (
	// Braves navy, used for every embed.
	embedColor = 1262657

	percentileBarWidth = 15

	// NoPlayerMatch is the reply when a percentile lookup cannot identify a player.
	NoPlayerMatch = "No player ID or name matched the given argument"
)

// Message is one reply. It marshals directly as a Discord webhook payload.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed is a titled card with optional fields and thumbnail.
type Embed struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Color       int        `json:"color,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
	Fields      []Field    `json:"fields,omitempty"`
}

// Field is a name/value pair inside an embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Thumbnail is a small image shown beside the embed.
type Thumbnail struct {
	URL string `json:"url"`
}

// Text returns a message with plain content.
func Text(s string) Message { return Message{Content: s} }

func embedMessage(e Embed) Message {
	e.Color = embedColor
	return Message{Embeds: []Embed{e}}
}

// BattedBall renders the latest ball in play. The home team is always named
// first; the separator tells whether the configured team is home.
func BattedBall(bb game.BattedBall) Message {
	title := bb.HomeName + " @ " + bb.AwayName
	if bb.TeamIsHome {
		title = bb.HomeName + " vs. " + bb.AwayName
	}
	desc := bb.Description
	if i := strings.Index(desc, ". "); i >= 0 {
		desc = desc[:i]
	}
	fields := []Field{
		{Name: "Exit Velocity", Value: bb.ExitVelocity + "mph", Inline: true},
		{Name: "Launch Angle", Value: bb.LaunchAngle + "°", Inline: true},
		{Name: "Distance", Value: strconv.Itoa(bb.Distance) + " ft", Inline: true},
		{Name: "xBA", Value: bb.XBA, Inline: true},
		{Name: "WPA", Value: signed(bb.WPA), Inline: true},
	}
	if bb.HasHomeRunParks {
		fields = append(fields, Field{Name: "Home Run", Value: strconv.Itoa(bb.HomeRunParks) + "/30", Inline: true})
	}
	return embedMessage(Embed{Title: title, Description: desc, Fields: fields})
}

// signed formats v with an explicit sign and the shortest exact decimal form.
func signed(v float64) string {
	if v == 0 {
		return "+0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}

// PercentileLine renders one ranking: right-aligned value, a bar of p*15/100
// dashes rounded half up, and the name in bold from 90 and bold italic from 95.
func PercentileLine(name string, p int) string {
	em := ""
	switch {
	case p >= 95:
		em = "***"
	case p >= 90:
		em = "**"
	}
	bar := strings.Repeat("-", (p*percentileBarWidth+50)/100)
	return fmt.Sprintf("`%3d%% / [%-*s]` %s%s%s", p, percentileBarWidth, bar, em, name, em)
}

type category struct {
	header string
	show   func(*percentile.Profile) bool
	stats  []percentile.Stat
}

var categories = []category{
	{":cricket_game: Batting", (*percentile.Profile).Hitter, []percentile.Stat{
		percentile.XWOBA, percentile.XBA, percentile.XSLG, percentile.AvgExitVelocity, percentile.BatSpeed,
		percentile.BarrelRate, percentile.HardHitRate, percentile.ChaseRate, percentile.WhiffRate,
		percentile.StrikeoutRate, percentile.WalkRate,
	}},
	{":gloves: Fielding", (*percentile.Profile).Fielder, []percentile.Stat{
		percentile.OutsAboveAverage, percentile.ArmStrength,
	}},
	{":athletic_shoe: Baserunning", (*percentile.Profile).Runner, []percentile.Stat{
		percentile.SprintSpeed,
	}},
	{":baseball: Pitching", (*percentile.Profile).Pitcher, []percentile.Stat{
		percentile.XERA, percentile.XBA, percentile.FastballVelo, percentile.AvgExitVelocity,
		percentile.ChaseRate, percentile.WhiffRate, percentile.StrikeoutRate, percentile.WalkRate,
		percentile.BarrelRate, percentile.HardHitRate, percentile.Extension,
	}},
}

// Percentiles renders a profile grouped by role. Absent stats are skipped.
func Percentiles(p *percentile.Profile, playerID int64) Message {
	var sections []string
	for _, c := range categories {
		if !c.show(p) {
			continue
		}
		lines := []string{c.header}
		for _, s := range c.stats {
			if v, ok := p.Get(s); ok {
				lines = append(lines, PercentileLine(s.String(), v))
			}
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	return embedMessage(Embed{
		Title:       fmt.Sprintf("%s (%d)", p.Name, p.Year),
		Description: strings.Join(sections, "\n"),
		Thumbnail:   &Thumbnail{URL: savant.HeadshotURL(playerID)},
	})
}

// Standings renders a table inside a code fence.
func Standings(t standings.Table) Message {
	return embedMessage(Embed{
		Title:       t.Title,
		Description: "```\n" + strings.Join(t.Lines(), "\n") + "\n```",
	})
}

// Help lists the commands under the given prefix.
func Help(prefix string) Message {
	return embedMessage(Embed{
		Title: "Bunt Commands",
		Fields: []Field{
			{Name: prefix + "ev", Value: "Gets the statcast data from the most recent ball put in play in the active braves game."},
			{Name: prefix + "st / " + prefix + "standings", Value: "Gets the standings in the NL East (specify AL, West/Central, and even WC) to get other stats"},
			{Name: prefix + "savant / " + prefix + "sav", Value: "Gets the baseball savant percentile rankings data of the most likely specified player"},
		},
	})
}
