// Package rating implements the team-Elo update applied to every match.
package rating

import (
	"errors"
	"math"

	"github.com/schieber/jasstat/internal/model"
)

// Tunables. BaseRating is the anchor every new player starts from, KFactor
// scales how hard a single match moves a rating, Scale is the Elo logistic
// spread.
const (
	BaseRating = 100.0
	KFactor    = 15.0
	Scale      = 400.0
)

// ErrUnresolvableTeam marks a match whose sides do not resolve to four
// distinct players. Such a match is skipped for rating purposes and no rating
// is touched.
var ErrUnresolvableTeam = errors.New("match does not resolve to four distinct players")

// Delta maps player id to the rating change one match produced.
type Delta map[string]float64

// Current returns the player's rating, defaulting to BaseRating for players
// with no prior matches.
func Current(ratings map[string]float64, playerID string) float64 {
	if r, ok := ratings[playerID]; ok {
		return r
	}
	return BaseRating
}

// Expected is the Elo win expectation of a side rated rA against rB.
func Expected(rA, rB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (rB-rA)/Scale))
}

// Actual is the realized score from the stroke totals of both sides.
// A 0-0 match is a defined draw.
func Actual(ownStrokes, oppStrokes int) float64 {
	total := ownStrokes + oppStrokes
	if total == 0 {
		return 0.5
	}
	return float64(ownStrokes) / float64(total)
}

// ApplyMatch updates ratings in place for one match and returns the applied
// per-player deltas. Team ratings are means of the members' current values,
// so updates within a replay are strictly sequential: a later match observes
// every earlier one. The team delta is split evenly and mirrored onto the
// opposing side, which keeps each match zero-sum.
func ApplyMatch(ratings map[string]float64, m model.MatchOutcome) (Delta, error) {
	if !resolvable(m.TeamA) || !resolvable(m.TeamB) || overlap(m.TeamA, m.TeamB) {
		return nil, ErrUnresolvableTeam
	}

	teamA := (Current(ratings, m.TeamA[0]) + Current(ratings, m.TeamA[1])) / 2
	teamB := (Current(ratings, m.TeamB[0]) + Current(ratings, m.TeamB[1])) / 2

	expected := Expected(teamA, teamB)
	actual := Actual(m.StrokesA.Total(), m.StrokesB.Total())
	teamDelta := KFactor * (actual - expected)

	half := teamDelta / 2
	delta := Delta{
		m.TeamA[0]: half,
		m.TeamA[1]: half,
		m.TeamB[0]: -half,
		m.TeamB[1]: -half,
	}
	for id, d := range delta {
		ratings[id] = Current(ratings, id) + d
	}
	return delta, nil
}

func resolvable(team [2]string) bool {
	return team[0] != "" && team[1] != "" && team[0] != team[1]
}

// overlap reports whether a player sits on both sides. The Delta map is keyed
// by player id, so such a match cannot be applied zero-sum.
func overlap(a, b [2]string) bool {
	return a[0] == b[0] || a[0] == b[1] || a[1] == b[0] || a[1] == b[1]
}
