package percentile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/onnwee/bunt/fetch"
)

const playerPage = `<html><body>
<div class="bio-player-name"><div>Ronald Acuña Jr.</div><div>RF</div></div>
<table id="percentileRankings">
<thead><tr>
<th>Year</th><th>xwOBA</th><th>xBA</th><th>xSLG</th><th>xISO</th><th>Brl%</th><th>EV</th>
<th>Hard <br>Hit%</th><th>K%</th><th>BB%</th><th>Whiff%</th><th>Chase <br>Rate</th>
<th>Speed</th><th>OAA</th><th>Arm <br> Strength</th><th>Bat <br> Speed</th><th>Swing <br> Length</th>
<th>Mystery Stat</th>
</tr></thead>
<tbody>
<tr><td><span>2022</span></td><td><span>50</span></td></tr>
<tr>
<td><span>2023</span></td><td><span>100</span></td><td><span>99</span></td><td><span>98</span></td>
<td><span>97</span></td><td><span>87</span></td><td><span>95</span></td>
<td><span>93</span></td><td><span>88</span></td><td><span>91</span></td><td><span>80</span></td><td><span>--</span></td>
<td><span>94</span></td><td><span>4</span></td><td><span>61</span></td><td><span>72</span></td><td><span>10</span></td>
<td><span>33</span></td>
</tr>
</tbody>
</table>
</body></html>`

func TestParseProfile(t *testing.T) {
	p, err := Parse(context.Background(), strings.NewReader(playerPage))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p == nil {
		t.Fatal("expected profile")
	}
	if p.Name != "Ronald Acuña Jr." || p.Year != 2023 {
		t.Fatalf("got name=%q year=%d", p.Name, p.Year)
	}

	want := map[Stat]int{
		XWOBA:            100,
		XBA:              99,
		XSLG:             98,
		BarrelRate:       87,
		AvgExitVelocity:  95,
		HardHitRate:      93,
		StrikeoutRate:    88,
		WalkRate:         91,
		WhiffRate:        80,
		SprintSpeed:      94,
		OutsAboveAverage: 4,
		ArmStrength:      61,
		BatSpeed:         72,
	}
	for s, v := range want {
		got, ok := p.Get(s)
		if !ok || got != v {
			t.Errorf("%s: got (%d, %v), want %d", s, got, ok, v)
		}
	}
	for _, s := range []Stat{ChaseRate, XERA, FastballVelo, FastballSpin, CurveballSpin, Extension} {
		if v, ok := p.Get(s); ok {
			t.Errorf("%s: expected absent, got %d", s, v)
		}
	}
	if !p.Hitter() || !p.Fielder() || !p.Runner() || p.Pitcher() {
		t.Errorf("roles: hitter=%v fielder=%v runner=%v pitcher=%v", p.Hitter(), p.Fielder(), p.Runner(), p.Pitcher())
	}
}

func TestParseNoTable(t *testing.T) {
	p, err := Parse(context.Background(), strings.NewReader(`<html><body><div class="bio-player-name"><div>X</div></div></body></html>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"missing name": `<table id="percentileRankings"><thead><tr><th>Year</th></tr></thead>
<tbody><tr><td><span>2023</span></td></tr></tbody></table>`,
		"bad year": `<div class="bio-player-name"><div>X</div></div>
<table id="percentileRankings"><thead><tr><th>Year</th></tr></thead>
<tbody><tr><td><span>MLB</span></td></tr></tbody></table>`,
	}
	for name, page := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(context.Background(), strings.NewReader(page))
			if !errors.Is(err, fetch.ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestPitcherOnlyProfile(t *testing.T) {
	page := `<div class="bio-player-name"><div>Spencer Strider</div></div>
<table id="percentileRankings"><thead><tr>
<th>Year</th><th>xwOBA / <br>xERA</th><th>FB <br>Velo</th><th>FB <br>Spin</th><th>CB <br>Spin</th><th>Extension</th><th>xBA</th>
</tr></thead><tbody><tr>
<td><span>2023</span></td><td><span>96</span></td><td><span>99</span></td><td><span>85</span></td><td><span></span></td><td><span>70</span></td><td><span>140</span></td>
</tr></tbody></table>`
	p, err := Parse(context.Background(), strings.NewReader(page))
	if err != nil || p == nil {
		t.Fatalf("Parse: %v %v", p, err)
	}
	if p.Hitter() || p.Fielder() || p.Runner() || !p.Pitcher() {
		t.Fatalf("unexpected roles for pitcher profile")
	}
	if v, _ := p.Get(XERA); v != 96 {
		t.Errorf("xERA = %d", v)
	}
	if _, ok := p.Get(CurveballSpin); ok {
		t.Error("empty cell should be absent")
	}
	if _, ok := p.Get(XBA); ok {
		t.Error("out-of-range value should be absent")
	}
}

func TestRolesAreIndependent(t *testing.T) {
	var p Profile
	p.Set(OutsAboveAverage, 50)
	if !p.Fielder() {
		t.Fatal("OAA alone should make a fielder")
	}
	if p.Hitter() || p.Runner() || p.Pitcher() {
		t.Fatal("only fielder expected")
	}
	var q Profile
	q.Set(ArmStrength, 0)
	if !q.Fielder() {
		t.Fatal("arm strength of 0 is still present")
	}
}

func TestSetRejectsOutOfRange(t *testing.T) {
	var p Profile
	p.Set(XBA, 101)
	p.Set(XSLG, -1)
	if _, ok := p.Get(XBA); ok {
		t.Error("101 stored")
	}
	if _, ok := p.Get(XSLG); ok {
		t.Error("-1 stored")
	}
	var nilProfile *Profile
	if _, ok := nilProfile.Get(XBA); ok {
		t.Error("nil profile reported a value")
	}
}

func TestStatString(t *testing.T) {
	if XWOBA.String() != "xwOBA" || OutsAboveAverage.String() != "Range (OAA)" {
		t.Fatal("unexpected display names")
	}
	if got := Stat(99).String(); got != "Stat(99)" {
		t.Fatalf("got %q", got)
	}
}
