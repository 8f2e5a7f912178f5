// Package stats maintains cumulative performance counters per player at four
// scopes: global, per group, per partner, and per opponent. The same pure
// accumulation functions serve full replays and single-match live updates, so
// the two paths cannot drift apart.
package stats

import (
	"sort"

	"github.com/schieber/jasstat/internal/model"
	"github.com/schieber/jasstat/internal/normalize"
)

// DeltaFor computes the per-match increment from one player's perspective.
// It returns false when the player is not a participant of the match.
func DeltaFor(m model.MatchOutcome, playerID string) (model.ScoreDelta, bool) {
	onA := m.TeamA[0] == playerID || m.TeamA[1] == playerID
	onB := m.TeamB[0] == playerID || m.TeamB[1] == playerID
	if !onA && !onB {
		return model.ScoreDelta{}, false
	}

	own, opp := m.StrokesA, m.StrokesB
	ownPoints, oppPoints := m.PointsA, m.PointsB
	ownWeis, oppWeis := m.WeisA, m.WeisB
	result := m.GameResult()
	if onB {
		own, opp = opp, own
		ownPoints, oppPoints = oppPoints, ownPoints
		ownWeis, oppWeis = oppWeis, ownWeis
		result = result.Invert()
	}

	return model.ScoreDelta{
		MatchTime:       m.Timestamp,
		SourceID:        m.SourceID,
		SourceKind:      m.Kind,
		GameNumber:      m.GameNumber,
		GameResult:      result,
		StrokesMade:     own.Total(),
		StrokesReceived: opp.Total(),
		PointsMade:      ownPoints,
		PointsReceived:  oppPoints,
		Matsch:          model.BonusCounter{Made: own.Matsch, Received: opp.Matsch},
		Schneider:       model.BonusCounter{Made: own.Schneider, Received: opp.Schneider},
		Kontermatsch:    model.BonusCounter{Made: own.Kontermatsch, Received: opp.Kontermatsch},
		WeisMade:        ownWeis,
		WeisReceived:    oppWeis,
		WeisEstimated:   m.WeisEstimated,
	}, true
}

// ApplyOutcome folds one per-match delta into a cumulative state and returns
// the updated state. This is the contract shared with the live incremental
// updater: cumulative counters after N matches equal the exact sum of the N
// deltas.
func ApplyOutcome(state model.CumulativeScore, d model.ScoreDelta) model.CumulativeScore {
	state.GamesPlayed++
	switch d.GameResult {
	case model.ResultWin:
		state.GameWins++
	case model.ResultLoss:
		state.GameLosses++
	default:
		state.GameDraws++
	}
	state.StrokesMade += d.StrokesMade
	state.StrokesReceived += d.StrokesReceived
	state.PointsMade += d.PointsMade
	state.PointsReceived += d.PointsReceived
	state.Matsch.Made += d.Matsch.Made
	state.Matsch.Received += d.Matsch.Received
	state.Schneider.Made += d.Schneider.Made
	state.Schneider.Received += d.Schneider.Received
	state.Kontermatsch.Made += d.Kontermatsch.Made
	state.Kontermatsch.Received += d.Kontermatsch.Received
	state.WeisMade += d.WeisMade
	state.WeisReceived += d.WeisReceived
	state.History = append(state.History, d)
	return state
}

// ApplySessionResult folds a session-level outcome into a cumulative state.
// Session counters move once per session, never per game.
func ApplySessionResult(state model.CumulativeScore, r model.Result) model.CumulativeScore {
	state.SessionsPlayed++
	switch r {
	case model.ResultWin:
		state.SessionWins++
	case model.ResultLoss:
		state.SessionLosses++
	default:
		state.SessionDraws++
	}
	return state
}

type scopeKey struct {
	playerID string
	scope    model.Scope
}

// Entry is one (player, scope) cumulative state ready for persistence.
type Entry struct {
	PlayerID string
	Scope    model.Scope
	Score    model.CumulativeScore
}

// Accumulator holds every (player, scope) state touched during a replay.
// Full-rebuild mode starts it empty and feeds the chronological event list;
// since each step is a pure fold, repeated rebuilds are bit-identical.
type Accumulator struct {
	scores map[scopeKey]*model.CumulativeScore
}

func New() *Accumulator {
	return &Accumulator{scores: make(map[scopeKey]*model.CumulativeScore)}
}

func (a *Accumulator) score(playerID string, scope model.Scope) *model.CumulativeScore {
	k := scopeKey{playerID, scope}
	s, ok := a.scores[k]
	if !ok {
		s = &model.CumulativeScore{}
		a.scores[k] = s
	}
	return s
}

// Get returns the current state for a (player, scope), zero if untouched.
func (a *Accumulator) Get(playerID string, scope model.Scope) model.CumulativeScore {
	if s, ok := a.scores[scopeKey{playerID, scope}]; ok {
		return *s
	}
	return model.CumulativeScore{}
}

// ApplyMatch folds one match of a unit into all affected scopes of its four
// participants. Only game-level counters move here.
func (a *Accumulator) ApplyMatch(groupID string, u normalize.Unit, m model.MatchOutcome) {
	for _, playerID := range m.Players() {
		d, ok := DeltaFor(m, playerID)
		if !ok {
			continue
		}
		for _, scope := range a.scopesFor(groupID, playerID, u) {
			s := a.score(playerID, scope)
			*s = ApplyOutcome(*s, d)
		}
	}
}

// CloseUnit moves the session-level and relationship counters, once per unit.
func (a *Accumulator) CloseUnit(groupID string, u normalize.Unit) {
	participants := [][2]string{u.TeamA, u.TeamB}
	for i, team := range participants {
		result := u.AggregateResult
		if i == 1 {
			result = result.Invert()
		}
		for _, playerID := range team {
			for _, scope := range a.scopesFor(groupID, playerID, u) {
				s := a.score(playerID, scope)
				*s = ApplySessionResult(*s, result)
			}
		}
	}
}

// ApplyUnit folds a whole unit: every match, then the session close.
func (a *Accumulator) ApplyUnit(groupID string, u normalize.Unit) {
	for _, m := range u.Outcomes {
		a.ApplyMatch(groupID, u, m)
	}
	a.CloseUnit(groupID, u)
}

// scopesFor lists the buckets one player's counters move in for this unit:
// global, the owning group, the partner, and each opponent.
func (a *Accumulator) scopesFor(groupID, playerID string, u normalize.Unit) []model.Scope {
	scopes := []model.Scope{model.GlobalScope(), model.GroupScope(groupID)}

	team, opponents := u.TeamA, u.TeamB
	if u.TeamB[0] == playerID || u.TeamB[1] == playerID {
		team, opponents = u.TeamB, u.TeamA
	}
	for _, id := range team {
		if id != playerID {
			scopes = append(scopes, model.PartnerScope(id))
		}
	}
	for _, id := range opponents {
		scopes = append(scopes, model.OpponentScope(id))
	}
	return scopes
}

// Snapshot produces the history-entry excerpt for one player from the group
// scope, stamped with this unit's session-level outcome.
func (a *Accumulator) Snapshot(groupID, playerID string, sessionResult model.Result) model.CumulativeSnapshot {
	s := a.Get(playerID, model.GroupScope(groupID))
	return model.CumulativeSnapshot{
		Strokes:        s.StrokesMade,
		Wins:           s.GameWins,
		Losses:         s.GameLosses,
		Points:         s.PointsMade,
		PointsReceived: s.PointsReceived,
		SessionWon:     sessionResult == model.ResultWin,
		SessionLost:    sessionResult == model.ResultLoss,
		SessionDrawn:   sessionResult == model.ResultDraw,
	}
}

// Entries returns all accumulated states in a deterministic order for
// persistence.
func (a *Accumulator) Entries() []Entry {
	out := make([]Entry, 0, len(a.scores))
	for k, s := range a.scores {
		out = append(out, Entry{PlayerID: k.playerID, Scope: k.scope, Score: *s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		if out[i].Scope.Kind != out[j].Scope.Kind {
			return out[i].Scope.Kind < out[j].Scope.Kind
		}
		return out[i].Scope.ID < out[j].Scope.ID
	})
	return out
}
