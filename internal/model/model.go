package model

import "time"

// EventKind distinguishes the two record shapes in the event log.
type EventKind string

const (
	KindSession         EventKind = "session"
	KindTournamentPasse EventKind = "tournamentPasse"
)

// EventStatus gates visibility: only completed records take part in replay.
type EventStatus string

const (
	StatusCompleted  EventStatus = "completed"
	StatusInProgress EventStatus = "inProgress"
)

// Result is the outcome of a game or session from one team's perspective.
type Result int

const (
	ResultDraw Result = iota
	ResultWin
	ResultLoss
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultLoss:
		return "loss"
	default:
		return "draw"
	}
}

// Invert mirrors a result to the opposing team's perspective.
func (r Result) Invert() Result {
	switch r {
	case ResultWin:
		return ResultLoss
	case ResultLoss:
		return ResultWin
	default:
		return ResultDraw
	}
}

// StrokeSet holds the five named stroke sub-counts of one team in one game.
type StrokeSet struct {
	Berg         int `json:"berg"`
	Sieg         int `json:"sieg"`
	Matsch       int `json:"matsch"`
	Schneider    int `json:"schneider"`
	Kontermatsch int `json:"kontermatsch"`
}

// Total is the stroke count that enters scoring and rating.
func (s StrokeSet) Total() int {
	return s.Berg + s.Sieg + s.Matsch + s.Schneider + s.Kontermatsch
}

// ---- Raw event payloads as stored in the event log ----

// RawGame is one row of a session's embedded summary list. It is authoritative
// for score, strokes, and game number. Optional fields are pointers; a nil
// pointer means the source never recorded the value.
type RawGame struct {
	Number   int        `json:"number"`
	PointsA  *int       `json:"pointsA"`
	PointsB  *int       `json:"pointsB"`
	StrokesA *StrokeSet `json:"strokesA"`
	StrokesB *StrokeSet `json:"strokesB"`
	WeisA    *int       `json:"weisA"`
	WeisB    *int       `json:"weisB"`
}

// RawGameDetail is a supplementary per-game sub-record. Where it overlaps with
// the summary row of the same number, only its bonus and weis fields win.
type RawGameDetail struct {
	Number        int  `json:"number"`
	MatschA       *int `json:"matschA"`
	MatschB       *int `json:"matschB"`
	SchneiderA    *int `json:"schneiderA"`
	SchneiderB    *int `json:"schneiderB"`
	KontermatschA *int `json:"kontermatschA"`
	KontermatschB *int `json:"kontermatschB"`
	WeisA         *int `json:"weisA"`
	WeisB         *int `json:"weisB"`
}

// RawSession is a completed multi-game evening with fixed team rosters.
type RawSession struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"groupId"`
	Status    EventStatus     `json:"status"`
	StartedAt time.Time       `json:"startedAt"`
	TeamA     []string        `json:"teamA"`
	TeamB     []string        `json:"teamB"`
	Games     []RawGame       `json:"games"`
	Details   []RawGameDetail `json:"details,omitempty"`
}

// RawPasseGame is one game inside a tournament passe. Tables rotate, so each
// game carries its own rosters.
type RawPasseGame struct {
	Number   int        `json:"number"`
	TeamA    []string   `json:"teamA"`
	TeamB    []string   `json:"teamB"`
	PointsA  *int       `json:"pointsA"`
	PointsB  *int       `json:"pointsB"`
	StrokesA *StrokeSet `json:"strokesA"`
	StrokesB *StrokeSet `json:"strokesB"`
	WeisA    *int       `json:"weisA"`
	WeisB    *int       `json:"weisB"`
}

// RawPasse is a completed tournament passe.
type RawPasse struct {
	ID           string         `json:"id"`
	GroupID      string         `json:"groupId"`
	TournamentID string         `json:"tournamentId"`
	Status       EventStatus    `json:"status"`
	CompletedAt  *time.Time     `json:"completedAt"`
	Games        []RawPasseGame `json:"games"`
}

// ---- Derived records ----

// Player identity; display names are owned elsewhere and only mirrored here.
type Player struct {
	ID          string
	DisplayName string
}

// MatchOutcome is the uniform per-game unit everything downstream consumes.
type MatchOutcome struct {
	SourceID      string
	Kind          EventKind
	Timestamp     time.Time
	GameNumber    int
	TeamA         [2]string
	TeamB         [2]string
	PointsA       int
	PointsB       int
	StrokesA      StrokeSet
	StrokesB      StrokeSet
	WeisA         int
	WeisB         int
	WeisEstimated bool
}

// GameResult compares stroke totals from team A's perspective.
func (m MatchOutcome) GameResult() Result {
	switch {
	case m.StrokesA.Total() > m.StrokesB.Total():
		return ResultWin
	case m.StrokesA.Total() < m.StrokesB.Total():
		return ResultLoss
	default:
		return ResultDraw
	}
}

// Players returns all four participants, team A first.
func (m MatchOutcome) Players() []string {
	return []string{m.TeamA[0], m.TeamA[1], m.TeamB[0], m.TeamB[1]}
}

// RatingState is the current rating of one player within one group.
type RatingState struct {
	GroupID     string
	PlayerID    string
	Rating      float64
	GamesPlayed int
}

// CumulativeSnapshot is the running-total excerpt stored on every history entry.
type CumulativeSnapshot struct {
	Strokes        int  `json:"strokes"`
	Wins           int  `json:"wins"`
	Losses         int  `json:"losses"`
	Points         int  `json:"points"`
	PointsReceived int  `json:"pointsReceived"`
	SessionWon     bool `json:"sessionWon"`
	SessionLost    bool `json:"sessionLost"`
	SessionDrawn   bool `json:"sessionDrawn"`
}

// RatingHistoryEntry is one step of a player's rating chronology. The match
// timestamp is the key, so replaying overwrites instead of duplicating.
type RatingHistoryEntry struct {
	GroupID    string
	PlayerID   string
	MatchTime  time.Time
	SourceKind EventKind
	SourceID   string
	Rating     float64 // rating after this match
	Delta      float64
	Tier       string
	Snapshot   CumulativeSnapshot
}

// LeaderboardEntry is the read-only row exposed to leaderboard consumers.
type LeaderboardEntry struct {
	PlayerID    string
	DisplayName string
	Rating      float64
	Tier        string
	GamesPlayed int
}

// EventRecord is the storage envelope around a raw session or passe payload.
type EventRecord struct {
	ID          string
	GroupID     string
	Kind        EventKind
	Status      EventStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Payload     []byte
}

// ReplayTime picks the timestamp an event sorts by during collection:
// sessions order by start, tournament passes by completion.
func (e EventRecord) ReplayTime() (time.Time, bool) {
	if e.Kind == KindTournamentPasse {
		if e.CompletedAt == nil {
			return time.Time{}, false
		}
		return *e.CompletedAt, true
	}
	return e.StartedAt, true
}
