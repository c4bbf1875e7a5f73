// Package standings turns a free-text standings request into a league/division
// selection and builds the fixed-width table shown in chat.
package standings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/onnwee/bunt/statsapi"
)

// Division offsets within a league. NL ids are AL ids + 3.
const (
	West    = 0
	East    = 1
	Central = 2

	firstDivisionID  = 200
	nationalOffset   = 3
	wildCardCutoff   = 3
	placeholderValue = "-"
)

var (
	// ErrDivisionNotFound is returned when the standings feed lacks the selected division.
	ErrDivisionNotFound = errors.New("division not found in standings")
	// ErrMalformed marks a standings record missing a required field.
	ErrMalformed = errors.New("malformed standings record")
)

// Selector picks what to show.
type Selector struct {
	LeagueID   int64
	DivisionID int64
	WildCard   bool
}

// ParseSelector reads keyword tokens, case-insensitively. verb is the command
// that was invoked; the wild-card verbs select wild-card mode on their own.
func ParseSelector(verb string, args []string) Selector {
	has := func(keys ...string) bool {
		for _, a := range args {
			for _, k := range keys {
				if strings.EqualFold(a, k) {
					return true
				}
			}
		}
		return false
	}

	american := has("al", "a", "american")
	div := int64(East)
	switch {
	case has("west", "w"):
		div = West
	case has("central", "c"):
		div = Central
	}
	sel := Selector{
		LeagueID:   statsapi.NationalLeagueID,
		DivisionID: firstDivisionID + div + nationalOffset,
		WildCard:   has("wc", "wildcard") || strings.EqualFold(verb, "wc") || strings.EqualFold(verb, "wildcard"),
	}
	if american {
		sel.LeagueID = statsapi.AmericanLeagueID
		sel.DivisionID = firstDivisionID + div
	}
	return sel
}

// Row is one team line. Prefix is "D" for a division leader, the wild-card rank
// when it is 1 to 3, else blank.
type Row struct {
	Prefix string
	Team   string
	WPCT   string
	Third  string
	Fourth string
}

// Table is a built standings table.
type Table struct {
	Title    string
	Headers  [4]string
	Rows     []Row
	WildCard bool
}

// Build selects and orders team records. now stands in for the division's
// lastUpdated timestamp in wild-card mode.
func Build(records []statsapi.DivisionRecord, sel Selector, now time.Time) (Table, error) {
	var teams []statsapi.TeamRecord
	var stamp time.Time
	t := Table{WildCard: sel.WildCard}
	if sel.WildCard {
		for _, d := range records {
			teams = append(teams, d.TeamRecords...)
		}
		sort.SliceStable(teams, func(i, j int) bool { return wildCardRank(teams[i]) < wildCardRank(teams[j]) })
		stamp = now.UTC()
		league := "NL"
		if sel.LeagueID == statsapi.AmericanLeagueID {
			league = "AL"
		}
		t.Title = league + " Wild Card Standings"
	} else {
		d, ok := findDivision(records, sel.DivisionID)
		if !ok {
			return Table{}, fmt.Errorf("%w: %d", ErrDivisionNotFound, sel.DivisionID)
		}
		ts, err := time.Parse(time.RFC3339, d.LastUpdated)
		if err != nil {
			return Table{}, fmt.Errorf("%w: lastUpdated %q", ErrMalformed, d.LastUpdated)
		}
		teams, stamp = d.TeamRecords, ts.UTC()
		t.Title = d.Division.NameShort + " Standings"
	}

	late := stamp.Month() >= time.September
	if late {
		t.Headers = [4]string{"Team", "WPCT", "M#", "E#"}
	} else {
		t.Headers = [4]string{"Team", "WPCT", "GB", "Streak"}
	}

	for _, tr := range teams {
		if tr.Team.ClubName == "" {
			return Table{}, fmt.Errorf("%w: team %d has no club name", ErrMalformed, tr.Team.ID)
		}
		if tr.WinningPercentage == "" {
			return Table{}, fmt.Errorf("%w: %s has no winning percentage", ErrMalformed, tr.Team.ClubName)
		}
		row := Row{Prefix: prefix(tr), Team: tr.Team.ClubName, WPCT: tr.WinningPercentage}
		switch {
		case late:
			row.Third, row.Fourth = tr.MagicNumber, tr.EliminationNumber
		case sel.WildCard:
			row.Third, row.Fourth = tr.WildCardGamesBack, tr.Streak.StreakCode
		default:
			row.Third, row.Fourth = tr.GamesBack, tr.Streak.StreakCode
		}
		row.Third, row.Fourth = orPlaceholder(row.Third), orPlaceholder(row.Fourth)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Lines renders the table as padded text lines, without fences.
func (t Table) Lines() []string {
	var w [4]int
	for i, h := range t.Headers {
		w[i] = utf8.RuneCountInString(h)
	}
	for _, r := range t.Rows {
		for i, c := range [4]string{r.Team, r.WPCT, r.Third, r.Fourth} {
			w[i] = max(w[i], utf8.RuneCountInString(c))
		}
	}

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, "  "+pad(t.Headers[0], w[0])+"  "+pad(t.Headers[1], w[1])+"  "+pad(t.Headers[2], w[2])+"  "+pad(t.Headers[3], w[3]))
	for i, r := range t.Rows {
		lines = append(lines, r.Prefix+" "+pad(r.Team, w[0])+"  "+pad(r.WPCT, w[1])+"  "+pad(r.Third, w[2])+"  "+pad(r.Fourth, w[3]))
		if t.WildCard && i == wildCardCutoff-1 {
			lines = append(lines, strings.Repeat("-", 2+w[0]+2+w[1]+2+w[2]+2+w[3]))
		}
	}
	return lines
}

func findDivision(records []statsapi.DivisionRecord, id int64) (statsapi.DivisionRecord, bool) {
	for _, d := range records {
		if d.Division.ID == id {
			return d, true
		}
	}
	return statsapi.DivisionRecord{}, false
}

// wildCardRank treats a missing or unparseable rank as 0.
func wildCardRank(tr statsapi.TeamRecord) int {
	n, err := strconv.Atoi(tr.WildCardRank)
	if err != nil {
		return 0
	}
	return n
}

func prefix(tr statsapi.TeamRecord) string {
	if tr.DivisionLeader {
		return "D"
	}
	if r := wildCardRank(tr); r >= 1 && r <= wildCardCutoff {
		return strconv.Itoa(r)
	}
	return " "
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholderValue
	}
	return s
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
