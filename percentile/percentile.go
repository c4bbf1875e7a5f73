// Package percentile extracts a player's percentile rankings from a Savant player page.
package percentile

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/onnwee/bunt/fetch"
	"github.com/onnwee/bunt/telemetry"
)

// Stat identifies one surfaced percentile statistic.
type Stat int

const (
	XWOBA Stat = iota
	XBA
	XSLG
	AvgExitVelocity
	BatSpeed
	BarrelRate
	HardHitRate
	ChaseRate
	WhiffRate
	StrikeoutRate
	WalkRate
	OutsAboveAverage
	ArmStrength
	SprintSpeed
	XERA
	FastballVelo
	FastballSpin
	CurveballSpin
	Extension

	numStats
)

var statNames = [numStats]string{
	XWOBA:            "xwOBA",
	XBA:              "xBA",
	XSLG:             "xSLG",
	AvgExitVelocity:  "Avg EV",
	BatSpeed:         "Bat Speed",
	BarrelRate:       "Barrel %",
	HardHitRate:      "Hard-Hit %",
	ChaseRate:        "Chase %",
	WhiffRate:        "Whiff %",
	StrikeoutRate:    "K %",
	WalkRate:         "BB %",
	OutsAboveAverage: "Range (OAA)",
	ArmStrength:      "Arm Strength",
	SprintSpeed:      "Sprint Speed",
	XERA:             "xERA",
	FastballVelo:     "Fastball Velo",
	FastballSpin:     "Fastball Spin",
	CurveballSpin:    "Curveball Spin",
	Extension:        "Extension",
}

// String returns the display name.
func (s Stat) String() string {
	if s < 0 || s >= numStats {
		return "Stat(" + strconv.Itoa(int(s)) + ")"
	}
	return statNames[s]
}

// labels maps normalized column headers to stats. A nil entry is a header that is
// recognized but not surfaced.
var labels = map[string]*Stat{
	"Year":         nil,
	"xISO":         nil,
	"xOBP":         nil,
	"Brl":          nil,
	"Max EV":       nil,
	"Swing Length": nil,
	"xwOBA":        statPtr(XWOBA),
	"xBA":          statPtr(XBA),
	"xSLG":         statPtr(XSLG),
	"Brl%":         statPtr(BarrelRate),
	"EV":           statPtr(AvgExitVelocity),
	"Hard Hit%":    statPtr(HardHitRate),
	"K%":           statPtr(StrikeoutRate),
	"BB%":          statPtr(WalkRate),
	"Whiff%":       statPtr(WhiffRate),
	"Chase Rate":   statPtr(ChaseRate),
	"Speed":        statPtr(SprintSpeed),
	"OAA":          statPtr(OutsAboveAverage),
	"Arm Strength": statPtr(ArmStrength),
	"Bat Speed":    statPtr(BatSpeed),
	"xwOBA / xERA": statPtr(XERA),
	"FB Velo":      statPtr(FastballVelo),
	"FB Spin":      statPtr(FastballSpin),
	"CB Spin":      statPtr(CurveballSpin),
	"Extension":    statPtr(Extension),
}

func statPtr(s Stat) *Stat { return &s }

// Profile is one season of percentile rankings for a player.
type Profile struct {
	Year int
	Name string

	values [numStats]int
	set    [numStats]bool
}

// Get returns the percentile for s, if the page reported one.
func (p *Profile) Get(s Stat) (int, bool) {
	if p == nil || s < 0 || s >= numStats || !p.set[s] {
		return 0, false
	}
	return p.values[s], true
}

// Set records a percentile. Values outside 0..100 are dropped.
func (p *Profile) Set(s Stat, v int) {
	if s < 0 || s >= numStats || v < 0 || v > 100 {
		return
	}
	p.values[s] = v
	p.set[s] = true
}

func (p *Profile) has(stats ...Stat) bool {
	for _, s := range stats {
		if _, ok := p.Get(s); ok {
			return true
		}
	}
	return false
}

// Hitter reports whether batting rankings exist.
func (p *Profile) Hitter() bool { return p.has(XWOBA) }

// Fielder reports whether fielding rankings exist.
func (p *Profile) Fielder() bool { return p.has(OutsAboveAverage, ArmStrength) }

// Runner reports whether baserunning rankings exist.
func (p *Profile) Runner() bool { return p.has(SprintSpeed) }

// Pitcher reports whether pitching rankings exist.
func (p *Profile) Pitcher() bool { return p.has(XERA) }

// Parse reads a player page. A page without a percentile table yields (nil, nil).
func Parse(ctx context.Context, r io.Reader) (*Profile, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse player page: %w", fetch.ErrDecode, err)
	}
	table := doc.Find("table#percentileRankings").First()
	if table.Length() == 0 {
		return nil, nil
	}

	name := strings.TrimSpace(doc.Find("div.bio-player-name").First().Children().First().Text())
	if name == "" {
		return nil, fmt.Errorf("%w: player name missing", fetch.ErrDecode)
	}

	row := table.Find("tbody tr").Last().Children()
	yearText := strings.TrimSpace(row.First().Children().First().Text())
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return nil, fmt.Errorf("%w: percentile year %q", fetch.ErrDecode, yearText)
	}

	p := &Profile{Year: year, Name: name}
	logger := telemetry.LoggerWithCorr(ctx).With("component", "percentile")
	table.Find("thead tr").First().Children().Each(func(i int, th *goquery.Selection) {
		label := headerLabel(th)
		stat, known := labels[label]
		if !known {
			logger.Warn("unknown percentile statistic", "label", label)
			return
		}
		if stat == nil {
			return
		}
		if v, ok := cellValue(row.Eq(i)); ok {
			p.Set(*stat, v)
		}
	})
	return p, nil
}

func cellValue(td *goquery.Selection) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(td.Children().First().Text()))
	if err != nil || v < 0 || v > 100 {
		return 0, false
	}
	return v, true
}

// headerLabel flattens a header cell to text with <br> read as a space and runs of
// whitespace collapsed.
func headerLabel(th *goquery.Selection) string {
	var b strings.Builder
	for _, n := range th.Nodes {
		writeLabel(&b, n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func writeLabel(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			b.WriteString(c.Data)
		case c.Type == html.ElementNode && c.Data == "br":
			b.WriteByte(' ')
		default:
			writeLabel(b, c)
		}
	}
}
