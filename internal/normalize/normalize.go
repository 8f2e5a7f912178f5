// Package normalize converts heterogeneous raw event records into uniform
// match outcomes. Sessions and tournament passes disagree about where team
// rosters, timestamps, and bonus data live; everything downstream sees one
// shape.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/schieber/jasstat/internal/model"
)

// weisEstimateRate is the labeled fallback for tournament passes without
// recorded weis data: 10% of a team's point total. It is an estimation
// heuristic inherited from the source data, not a verified scoring rule, and
// every outcome produced through it is flagged WeisEstimated.
const weisEstimateRate = 0.10

// Unit groups the match outcomes that share one fixed team constellation and
// one aggregate result. A session is a single unit spanning all its games; a
// passe yields one unit per game because tables rotate.
type Unit struct {
	TeamA           [2]string
	TeamB           [2]string
	Outcomes        []model.MatchOutcome
	AggregateResult model.Result // team A perspective, from summed points
}

// ResultFor returns the unit's aggregate result from the given player's
// perspective: mirrored for team B members.
func (u Unit) ResultFor(playerID string) model.Result {
	if u.TeamB[0] == playerID || u.TeamB[1] == playerID {
		return u.AggregateResult.Invert()
	}
	return u.AggregateResult
}

// Skip records a game that was intentionally excluded, with its reason.
// Skips are not errors; they are tallied and logged, never fatal.
type Skip struct {
	GameNumber int
	Reason     string
}

// Normalized is the full derived view of one source event.
type Normalized struct {
	SourceID  string
	Kind      model.EventKind
	Timestamp time.Time
	Units     []Unit
	Skips     []Skip
}

// Outcomes flattens all units' match outcomes in game order.
func (n Normalized) Outcomes() []model.MatchOutcome {
	var out []model.MatchOutcome
	for _, u := range n.Units {
		out = append(out, u.Outcomes...)
	}
	return out
}

// Normalizer turns raw event records into Normalized views.
type Normalizer struct {
	log   *slog.Logger
	merge MergePolicy
}

func New(log *slog.Logger) *Normalizer {
	return &Normalizer{log: log}
}

// Event decodes an event record's payload and normalizes it. A payload that
// cannot be decoded is a per-event normalization error: the caller logs it,
// counts it, and moves on.
func (n *Normalizer) Event(rec model.EventRecord) (Normalized, error) {
	ts, ok := rec.ReplayTime()
	if !ok {
		return Normalized{}, fmt.Errorf("event %s: no completion time", rec.ID)
	}

	switch rec.Kind {
	case model.KindSession:
		var s model.RawSession
		if err := json.Unmarshal(rec.Payload, &s); err != nil {
			return Normalized{}, fmt.Errorf("decode session %s: %w", rec.ID, err)
		}
		return n.Session(s, ts), nil
	case model.KindTournamentPasse:
		var p model.RawPasse
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return Normalized{}, fmt.Errorf("decode passe %s: %w", rec.ID, err)
		}
		return n.Passe(p, ts), nil
	default:
		return Normalized{}, fmt.Errorf("event %s: unknown kind %q", rec.ID, rec.Kind)
	}
}

// Session normalizes a multi-game session. Team composition is fixed for the
// whole session; each summary game row is merged with its detail record and
// emitted as one MatchOutcome. Games without authoritative score data are
// skipped.
func (n *Normalizer) Session(s model.RawSession, ts time.Time) Normalized {
	out := Normalized{SourceID: s.ID, Kind: model.KindSession, Timestamp: ts}

	teamA, okA := roster(s.TeamA)
	teamB, okB := roster(s.TeamB)
	if !okA || !okB || !disjoint(teamA, teamB) {
		for _, g := range s.Games {
			out.Skips = append(out.Skips, Skip{GameNumber: g.Number, Reason: "session rosters do not form two disjoint pairs"})
		}
		n.logSkips(s.ID, out.Skips)
		return out
	}

	details := make(map[int]*model.RawGameDetail, len(s.Details))
	for i := range s.Details {
		details[s.Details[i].Number] = &s.Details[i]
	}

	// Timestamps derive from the game number, so replay must walk the games
	// in number order regardless of payload order.
	games := append([]model.RawGame(nil), s.Games...)
	sort.Slice(games, func(i, j int) bool { return games[i].Number < games[j].Number })

	unit := Unit{TeamA: teamA, TeamB: teamB}
	totalA, totalB := 0, 0
	for _, g := range games {
		merged := n.merge.Merge(g, details[g.Number])

		strokesA, haveA := StrokesOr(merged.StrokesA)
		strokesB, haveB := StrokesOr(merged.StrokesB)
		if merged.PointsA == nil || merged.PointsB == nil || !haveA || !haveB {
			out.Skips = append(out.Skips, Skip{GameNumber: merged.Number, Reason: "missing authoritative score data"})
			continue
		}

		o := model.MatchOutcome{
			SourceID:   s.ID,
			Kind:       model.KindSession,
			Timestamp:  gameTime(ts, merged.Number),
			GameNumber: merged.Number,
			TeamA:      teamA,
			TeamB:      teamB,
			PointsA:    *merged.PointsA,
			PointsB:    *merged.PointsB,
			StrokesA:   strokesA,
			StrokesB:   strokesB,
			WeisA:      IntOr(merged.WeisA, 0),
			WeisB:      IntOr(merged.WeisB, 0),
		}
		totalA += o.PointsA
		totalB += o.PointsB
		unit.Outcomes = append(unit.Outcomes, o)
	}
	unit.AggregateResult = compare(totalA, totalB)
	if len(unit.Outcomes) > 0 {
		out.Units = append(out.Units, unit)
	}
	n.logSkips(s.ID, out.Skips)
	return out
}

// Passe normalizes a tournament passe. Rosters are re-read per game; a game
// whose sides do not both have exactly two members is skipped. Missing weis
// data falls back to the flagged 10% estimation.
func (n *Normalizer) Passe(p model.RawPasse, ts time.Time) Normalized {
	out := Normalized{SourceID: p.ID, Kind: model.KindTournamentPasse, Timestamp: ts}

	games := append([]model.RawPasseGame(nil), p.Games...)
	sort.Slice(games, func(i, j int) bool { return games[i].Number < games[j].Number })

	for _, g := range games {
		teamA, okA := roster(g.TeamA)
		teamB, okB := roster(g.TeamB)
		if !okA || !okB || !disjoint(teamA, teamB) {
			out.Skips = append(out.Skips, Skip{GameNumber: g.Number, Reason: "passe table does not seat two disjoint pairs"})
			continue
		}

		strokesA, haveA := StrokesOr(g.StrokesA)
		strokesB, haveB := StrokesOr(g.StrokesB)
		if g.PointsA == nil || g.PointsB == nil || !haveA || !haveB {
			out.Skips = append(out.Skips, Skip{GameNumber: g.Number, Reason: "missing authoritative score data"})
			continue
		}

		o := model.MatchOutcome{
			SourceID:   p.ID,
			Kind:       model.KindTournamentPasse,
			Timestamp:  gameTime(ts, g.Number),
			GameNumber: g.Number,
			TeamA:      teamA,
			TeamB:      teamB,
			PointsA:    *g.PointsA,
			PointsB:    *g.PointsB,
			StrokesA:   strokesA,
			StrokesB:   strokesB,
		}
		// Coalesce weis per side: a recorded value is never replaced by the
		// estimation heuristic.
		if g.WeisA != nil {
			o.WeisA = *g.WeisA
		} else {
			o.WeisA = estimateWeis(o.PointsA)
			o.WeisEstimated = true
		}
		if g.WeisB != nil {
			o.WeisB = *g.WeisB
		} else {
			o.WeisB = estimateWeis(o.PointsB)
			o.WeisEstimated = true
		}

		// Each passe game is its own unit: its table constellation exists
		// only for this one game, and its aggregate result is the game's.
		out.Units = append(out.Units, Unit{
			TeamA:           teamA,
			TeamB:           teamB,
			Outcomes:        []model.MatchOutcome{o},
			AggregateResult: compare(o.PointsA, o.PointsB),
		})
	}
	n.logSkips(p.ID, out.Skips)
	return out
}

func (n *Normalizer) logSkips(sourceID string, skips []Skip) {
	if n.log == nil {
		return
	}
	for _, s := range skips {
		n.log.Warn("game skipped during normalization",
			"source", sourceID, "game", s.GameNumber, "reason", s.Reason)
	}
}

// gameTime derives a distinct, deterministic timestamp per game so history
// entries within one event do not collide on their key.
func gameTime(base time.Time, number int) time.Time {
	return base.Add(time.Duration(number) * time.Minute)
}

func estimateWeis(points int) int {
	return int(float64(points) * weisEstimateRate)
}

func roster(ids []string) ([2]string, bool) {
	if len(ids) != 2 || ids[0] == "" || ids[1] == "" || ids[0] == ids[1] {
		return [2]string{}, false
	}
	return [2]string{ids[0], ids[1]}, true
}

func disjoint(a, b [2]string) bool {
	return a[0] != b[0] && a[0] != b[1] && a[1] != b[0] && a[1] != b[1]
}

func compare(a, b int) model.Result {
	switch {
	case a > b:
		return model.ResultWin
	case a < b:
		return model.ResultLoss
	default:
		return model.ResultDraw
	}
}
