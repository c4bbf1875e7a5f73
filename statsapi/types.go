package statsapi

type scheduleResponse struct {
	Dates []struct {
		Games []ScheduleEntry `json:"games"`
	} `json:"dates"`
}

// ScheduleEntry is one game row of a schedule query.
type ScheduleEntry struct {
	GamePK int64         `json:"gamePk"`
	Teams  ScheduleTeams `json:"teams"`
	Status GameStatus    `json:"status"`
}

// ScheduleTeams holds both sides of a scheduled game.
type ScheduleTeams struct {
	Home ScheduleSide `json:"home"`
	Away ScheduleSide `json:"away"`
}

// ScheduleSide is one team slot of a scheduled game.
type ScheduleSide struct {
	Team TeamRef `json:"team"`
}

// TeamRef identifies a team.
type TeamRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	ClubName string `json:"clubName,omitempty"`
}

// GameStatus carries the coarse game state; only FinalGameState is inspected.
type GameStatus struct {
	AbstractGameState string `json:"abstractGameState"`
}

// Involves reports whether teamID plays in the game.
func (e ScheduleEntry) Involves(teamID int64) bool {
	return e.Teams.Home.Team.ID == teamID || e.Teams.Away.Team.ID == teamID
}

// Final reports whether the game has reached its terminal state.
func (e ScheduleEntry) Final() bool { return e.Status.AbstractGameState == FinalGameState }

type standingsResponse struct {
	Records []DivisionRecord `json:"records"`
}

// DivisionRecord is one division block of a standings response.
type DivisionRecord struct {
	Division    Division     `json:"division"`
	LastUpdated string       `json:"lastUpdated"`
	TeamRecords []TeamRecord `json:"teamRecords"`
}

// Division identifies a division.
type Division struct {
	ID        int64  `json:"id"`
	NameShort string `json:"nameShort"`
}

// TeamRecord is one team line of the standings. Numeric columns arrive as strings
// ("-", "E", "2.5") and are rendered verbatim.
type TeamRecord struct {
	Team              TeamRef `json:"team"`
	DivisionLeader    bool    `json:"divisionLeader"`
	WildCardRank      string  `json:"wildCardRank"`
	WinningPercentage string  `json:"winningPercentage"`
	GamesBack         string  `json:"gamesBack"`
	WildCardGamesBack string  `json:"wildCardGamesBack"`
	MagicNumber       string  `json:"magicNumber"`
	EliminationNumber string  `json:"eliminationNumber"`
	Streak            Streak  `json:"streak"`
}

// Streak is the current win/loss run, e.g. "W3".
type Streak struct {
	StreakCode string `json:"streakCode"`
}
