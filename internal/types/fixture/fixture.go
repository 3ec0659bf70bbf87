package fixture

// Record is one match occurrence under matchPool/{date}/{fixtureId}.
// HomeStats, AwayStats and H2H are placeholders populated by other jobs;
// this service writes them empty and never reads them.
type Record struct {
	FixtureID   int64         `json:"fixtureId"`
	HomeTeam    string        `json:"homeTeam"`
	AwayTeam    string        `json:"awayTeam"`
	HomeTeamID  int64         `json:"homeTeamId"`
	AwayTeamID  int64         `json:"awayTeamId"`
	League      string        `json:"league"`
	LeagueID    int64         `json:"leagueId"`
	Date        string        `json:"date"`      // YYYY-MM-DD
	Time        string        `json:"time"`      // HH:MM kickoff
	Timestamp   int64         `json:"timestamp"` // kickoff epoch ms
	Status      string        `json:"status"`
	HomeStats   interface{}   `json:"homeStats"`
	AwayStats   interface{}   `json:"awayStats"`
	H2H         []interface{} `json:"h2h"`
	LastUpdated int64         `json:"lastUpdated"`
}

// PoolMetadata is the singleton summary at poolMetadata, overwritten
// wholesale on each refresh.
type PoolMetadata struct {
	LastUpdate   interface{} `json:"lastUpdate"` // server timestamp on write
	TotalMatches int         `json:"totalMatches"`
	Leagues      []int64     `json:"leagues"`
	LeagueCount  int         `json:"leagueCount"`
	NextUpdate   int64       `json:"nextUpdate"` // advisory, not enforced
}

// RefreshSummary is the refresh endpoint's success payload body.
type RefreshSummary struct {
	TotalMatches int    `json:"totalMatches"`
	Leagues      int    `json:"leagues"`
	Timestamp    string `json:"timestamp"` // ISO-8601
}
