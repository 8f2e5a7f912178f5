package model

import (
	"fmt"
	"time"
)

// ScopeKind selects one of the four granularities cumulative stats are kept at.
type ScopeKind string

const (
	ScopeGlobal   ScopeKind = "global"
	ScopeGroup    ScopeKind = "group"
	ScopePartner  ScopeKind = "partner"
	ScopeOpponent ScopeKind = "opponent"
)

// Scope identifies one cumulative-stats bucket. The ID is empty for the
// global scope, a group id for group scope, and a player id for the
// relationship scopes.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

func GlobalScope() Scope                  { return Scope{Kind: ScopeGlobal} }
func GroupScope(groupID string) Scope     { return Scope{Kind: ScopeGroup, ID: groupID} }
func PartnerScope(playerID string) Scope  { return Scope{Kind: ScopePartner, ID: playerID} }
func OpponentScope(playerID string) Scope { return Scope{Kind: ScopeOpponent, ID: playerID} }

func (s Scope) String() string {
	if s.Kind == ScopeGlobal {
		return string(ScopeGlobal)
	}
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}

// BonusCounter tracks one bonus-event category from a player's perspective.
type BonusCounter struct {
	Made     int `json:"made"`
	Received int `json:"received"`
}

// Bilanz is the made-minus-received balance.
func (b BonusCounter) Bilanz() int {
	return b.Made - b.Received
}

// ScoreDelta is the per-match increment emitted for history charts. Summing
// the deltas of the first N matches reproduces the cumulative state after N
// matches exactly.
type ScoreDelta struct {
	MatchTime       time.Time    `json:"matchTime"`
	SourceID        string       `json:"sourceId"`
	SourceKind      EventKind    `json:"sourceKind"`
	GameNumber      int          `json:"gameNumber"`
	GameResult      Result       `json:"gameResult"`
	StrokesMade     int          `json:"strokesMade"`
	StrokesReceived int          `json:"strokesReceived"`
	PointsMade      int          `json:"pointsMade"`
	PointsReceived  int          `json:"pointsReceived"`
	Matsch          BonusCounter `json:"matsch"`
	Schneider       BonusCounter `json:"schneider"`
	Kontermatsch    BonusCounter `json:"kontermatsch"`
	WeisMade        int          `json:"weisMade"`
	WeisReceived    int          `json:"weisReceived"`
	WeisEstimated   bool         `json:"weisEstimated,omitempty"`
}

// StrokeDiff is the signed stroke differential of this match.
func (d ScoreDelta) StrokeDiff() int { return d.StrokesMade - d.StrokesReceived }

// PointDiff is the signed point differential of this match.
func (d ScoreDelta) PointDiff() int { return d.PointsMade - d.PointsReceived }

// WeisDiff is the signed weis differential of this match.
func (d ScoreDelta) WeisDiff() int { return d.WeisMade - d.WeisReceived }

// CumulativeScore is the running total for one (player, scope) pair.
// Game-level and session-level win/loss/draw are tracked separately: a session
// can end drawn while its games split, and neither view may shadow the other.
type CumulativeScore struct {
	GamesPlayed    int `json:"gamesPlayed"`
	SessionsPlayed int `json:"sessionsPlayed"`

	GameWins   int `json:"gameWins"`
	GameLosses int `json:"gameLosses"`
	GameDraws  int `json:"gameDraws"`

	SessionWins   int `json:"sessionWins"`
	SessionLosses int `json:"sessionLosses"`
	SessionDraws  int `json:"sessionDraws"`

	StrokesMade     int `json:"strokesMade"`
	StrokesReceived int `json:"strokesReceived"`
	PointsMade      int `json:"pointsMade"`
	PointsReceived  int `json:"pointsReceived"`

	Matsch       BonusCounter `json:"matsch"`
	Schneider    BonusCounter `json:"schneider"`
	Kontermatsch BonusCounter `json:"kontermatsch"`

	WeisMade     int `json:"weisMade"`
	WeisReceived int `json:"weisReceived"`

	History []ScoreDelta `json:"history,omitempty"`
}

func (c CumulativeScore) StrokeDiff() int { return c.StrokesMade - c.StrokesReceived }
func (c CumulativeScore) PointDiff() int  { return c.PointsMade - c.PointsReceived }
func (c CumulativeScore) WeisDiff() int   { return c.WeisMade - c.WeisReceived }
