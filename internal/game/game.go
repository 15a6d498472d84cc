// Package game defines the Game aggregate, its status machine, and the
// pure reducers that the transaction layer runs against it. It has zero
// external dependencies — everything here is pure Go.
package game

import "time"

// Status is the lifecycle state of a Game document.
type Status string

const (
	StatusLobby    Status = "lobby"
	StatusStarting Status = "starting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// SessionType selects between shared-team play and per-player sessions.
type SessionType string

const (
	SessionTeam       SessionType = "team"
	SessionIndividual SessionType = "individual"
)

// DefaultGridSize is the number of hex squares in a freshly created grid.
const DefaultGridSize = 22

// Game is the root aggregate for one trivia session, persisted as a single
// document keyed by PIN. All mutation goes through the reducers in this
// package, executed inside a store transaction.
type Game struct {
	ID              string       `json:"id"`
	Title           string       `json:"title,omitempty"`
	Description     string       `json:"description,omitempty"`
	Status          Status       `json:"status"`
	Teams           []Team       `json:"teams"`
	Questions       []Question   `json:"questions"`
	Grid            []GridSquare `json:"grid"`
	GameStartedAt   *time.Time   `json:"gameStartedAt"`
	TimerSeconds    int          `json:"timerSeconds"`
	Topic           string       `json:"topic"`
	Difficulty      string       `json:"difficulty"`
	SessionType     SessionType  `json:"sessionType"`
	ParentSessionID string       `json:"parentSessionId,omitempty"`
	AdminID         string       `json:"adminId"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// Team groups players and accumulates shared score. Name is unique per game
// and is the foreign key players reference.
type Team struct {
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	Players  []Player `json:"players"`
	Capacity int      `json:"capacity"`
	Color    string   `json:"color"`
	Icon     string   `json:"icon"`
}

// Player is one participant. ID maps 1:1 to the external identity and is
// unique across all teams of the game. PlayerID is a separate, possibly
// custom identifier (e.g. an ID-card number).
type Player struct {
	ID                string   `json:"id"`
	PlayerID          string   `json:"playerId"`
	Name              string   `json:"name"`
	TeamName          string   `json:"teamName"`
	AnsweredQuestions []string `json:"answeredQuestions"`
	ColoringCredits   int      `json:"coloringCredits"`
	Score             int      `json:"score"`
}

// Question is one entry of the immutable question bank. Index into
// Game.Questions is the question's identity for a player's progress.
type Question struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Answer     string   `json:"answer"`
	Difficulty string   `json:"difficulty,omitempty"`
	Topic      string   `json:"topic,omitempty"`
}

// GridSquare is one hex cell of the shared territory map. ColoredBy holds a
// team name (team mode) or a player identity (individual mode) and is
// write-once: a non-nil value is never overwritten until a full reset.
type GridSquare struct {
	ID        int     `json:"id"`
	ColoredBy *string `json:"coloredBy"`
}

// NewGrid returns a zeroed grid of n squares with stable ids 0..n-1.
func NewGrid(n int) []GridSquare {
	grid := make([]GridSquare, n)
	for i := range grid {
		grid[i].ID = i
	}
	return grid
}

// New creates a Game in lobby status with empty rosters and a fresh grid.
func New(pin string, teams []Team, cfg Config, now time.Time) Game {
	for i := range teams {
		teams[i].Score = 0
		teams[i].Players = []Player{}
		if teams[i].Capacity <= 0 {
			teams[i].Capacity = cfg.TeamCapacity
		}
	}
	gridSize := cfg.GridSize
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	sessionType := cfg.SessionType
	if sessionType == "" {
		sessionType = SessionTeam
	}
	return Game{
		ID:           NormalizePIN(pin),
		Title:        cfg.Title,
		Description:  cfg.Description,
		Status:       StatusLobby,
		Teams:        teams,
		Questions:    cfg.Questions,
		Grid:         NewGrid(gridSize),
		TimerSeconds: cfg.TimerSeconds,
		Topic:        cfg.Topic,
		Difficulty:   cfg.Difficulty,
		SessionType:  sessionType,
		AdminID:      cfg.AdminID,
		CreatedAt:    now.UTC(),
	}
}

// Config carries the creation-time settings of a Game.
type Config struct {
	Title        string
	Description  string
	Topic        string
	Difficulty   string
	TimerSeconds int
	GridSize     int
	TeamCapacity int
	SessionType  SessionType
	AdminID      string
	// Questions may be pre-authored by a curator; when empty the bank is
	// generated on start.
	Questions []Question
}

// FindPlayer locates a player by external identity across all teams.
// The second return is the index of the player's team in g.Teams.
func (g *Game) FindPlayer(identity string) (*Player, int) {
	for ti := range g.Teams {
		for pi := range g.Teams[ti].Players {
			if g.Teams[ti].Players[pi].ID == identity {
				return &g.Teams[ti].Players[pi], ti
			}
		}
	}
	return nil, -1
}

// Team returns the team with the given name, or nil.
func (g *Game) Team(name string) *Team {
	for i := range g.Teams {
		if g.Teams[i].Name == name {
			return &g.Teams[i]
		}
	}
	return nil
}

// PlayerCount is the total number of joined players across all teams.
func (g *Game) PlayerCount() int {
	n := 0
	for i := range g.Teams {
		n += len(g.Teams[i].Players)
	}
	return n
}

// Deadline returns the moment the game times out, or false when the game has
// no authoritative start anchor yet. Countdowns derive remaining time from
// this anchor locally; no server tick is ever pushed.
func (g *Game) Deadline() (time.Time, bool) {
	if g.GameStartedAt == nil || g.TimerSeconds <= 0 {
		return time.Time{}, false
	}
	return g.GameStartedAt.Add(time.Duration(g.TimerSeconds) * time.Second), true
}
