// Package replay rebuilds ratings and cumulative stats by replaying a group's
// completed event history in chronological order, exactly once per run.
package replay

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schieber/jasstat/internal/model"
	"github.com/schieber/jasstat/internal/normalize"
	"github.com/schieber/jasstat/internal/rating"
	"github.com/schieber/jasstat/internal/stats"
)

// State is the orchestrator's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateClearing
	StateReplaying
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateClearing:
		return "clearing"
	case StateReplaying:
		return "replaying"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Store is the persistence surface the orchestrator drives. *storage.DB
// satisfies it; dry runs swap in a writer that discards.
type Store interface {
	ListGroupIDs() ([]string, error)
	CompletedEvents(groupID string) ([]model.EventRecord, error)
	ClearRatingHistory(groupID string) error
	InsertRatingHistory(entries []model.RatingHistoryEntry) error
	FinalizeRatings(groupID string, states []model.RatingState) error
	PutCumulative(entries []stats.Entry) error
}

// Options steer one rebuild run.
type Options struct {
	// ClearExisting deletes all prior history entries for the scope before
	// replaying, guaranteeing a clean rebuild.
	ClearExisting bool
	// DryRun computes everything without persisting.
	DryRun bool
	// PlayerFilter restricts cumulative-stats persistence to one player
	// (used for cross-group per-player backfills).
	PlayerFilter string
}

// Summary is the per-run report. No failure is silent: everything that was
// not processed shows up in Skipped or Failed.
type Summary struct {
	RunID     string
	GroupID   string
	Processed int
	Skipped   int
	Failed    int
}

// Orchestrator replays one group at a time. It holds no cross-run state; the
// single-writer rule per group is enforced by the runner, which never hands
// one group to two workers.
type Orchestrator struct {
	store Store
	norm  *normalize.Normalizer
	log   *slog.Logger
	state State
}

func New(store Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store: store,
		norm:  normalize.New(log),
		log:   log,
		state: StateIdle,
	}
}

// State reports the current lifecycle position.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) transition(s State, runID, groupID string) {
	o.state = s
	o.log.Debug("replay state", "run", runID, "group", groupID, "state", s.String())
}

// sortedEvent pairs an event with its resolved replay timestamp.
type sortedEvent struct {
	ts  time.Time
	rec model.EventRecord
}

// Rebuild replays a group's full history: ratings, rating-history entries,
// and the final leaderboard state. Only a collection failure is fatal;
// per-match and per-player problems are logged, counted, and skipped.
func (o *Orchestrator) Rebuild(groupID string, opts Options) (Summary, error) {
	sum := Summary{RunID: uuid.NewString(), GroupID: groupID}
	store := o.store
	if opts.DryRun {
		store = discardWrites{o.store}
	}

	// CollectingEvents: the only fatal stage.
	o.transition(StateCollecting, sum.RunID, groupID)
	events, fatal := o.collect(groupID, &sum)
	if fatal != nil {
		o.transition(StateFailed, sum.RunID, groupID)
		return sum, fatal
	}

	if opts.ClearExisting {
		o.transition(StateClearing, sum.RunID, groupID)
		if err := store.ClearRatingHistory(groupID); err != nil {
			o.transition(StateFailed, sum.RunID, groupID)
			return sum, fmt.Errorf("clear rating history for %s: %w", groupID, err)
		}
	}

	// Replaying: strictly sequential, so every match observes the rating
	// effects of all earlier matches.
	o.transition(StateReplaying, sum.RunID, groupID)
	ratings := make(map[string]float64)
	games := make(map[string]int)
	acc := stats.New()

	for _, ev := range events {
		norm, err := o.norm.Event(ev.rec)
		if err != nil {
			sum.Failed++
			o.log.Error("event normalization failed", "run", sum.RunID, "group", groupID,
				"event", ev.rec.ID, "error", err)
			continue
		}
		sum.Skipped += len(norm.Skips)

		for _, unit := range norm.Units {
			for _, m := range unit.Outcomes {
				delta, err := rating.ApplyMatch(ratings, m)
				if err != nil {
					sum.Skipped++
					o.log.Warn("match skipped for rating", "run", sum.RunID, "group", groupID,
						"event", m.SourceID, "game", m.GameNumber, "reason", err)
					continue
				}
				acc.ApplyMatch(groupID, unit, m)
				sum.Processed++

				for _, playerID := range m.Players() {
					games[playerID]++
					entry := model.RatingHistoryEntry{
						GroupID:    groupID,
						PlayerID:   playerID,
						MatchTime:  m.Timestamp,
						SourceKind: m.Kind,
						SourceID:   m.SourceID,
						Rating:     rating.Current(ratings, playerID),
						Delta:      delta[playerID],
						Tier:       model.TierFor(rating.Current(ratings, playerID)),
						Snapshot:   acc.Snapshot(groupID, playerID, unit.ResultFor(playerID)),
					}
					if err := store.InsertRatingHistory([]model.RatingHistoryEntry{entry}); err != nil {
						sum.Failed++
						o.log.Error("history write failed", "run", sum.RunID, "group", groupID,
							"player", playerID, "error", err)
					}
				}
			}
			acc.CloseUnit(groupID, unit)
		}
	}

	// Finalizing: the group's end-state ratings land in one atomic batch.
	o.transition(StateFinalizing, sum.RunID, groupID)
	states := make([]model.RatingState, 0, len(ratings))
	for playerID, r := range ratings {
		states = append(states, model.RatingState{
			GroupID:     groupID,
			PlayerID:    playerID,
			Rating:      r,
			GamesPlayed: games[playerID],
		})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].PlayerID < states[j].PlayerID })
	if err := store.FinalizeRatings(groupID, states); err != nil {
		o.transition(StateFailed, sum.RunID, groupID)
		return sum, fmt.Errorf("finalize ratings for %s: %w", groupID, err)
	}

	o.transition(StateDone, sum.RunID, groupID)
	o.log.Info("replay finished", "run", sum.RunID, "group", groupID,
		"processed", sum.Processed, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// RebuildStats replays event history for cumulative stats only, leaving
// ratings and history untouched. Global, partner, and opponent scopes span
// groups, so all groups feed one accumulator: with an empty group list every
// stored group is replayed and every scope is persisted. An explicit group
// list persists only that list's group scopes, since the cross-group scopes
// cannot be rebuilt from a subset. With a player filter, only that player's
// scopes are persisted.
func (o *Orchestrator) RebuildStats(groupIDs []string, opts Options) (Summary, error) {
	sum := Summary{RunID: uuid.NewString(), GroupID: strings.Join(groupIDs, ",")}
	store := o.store
	if opts.DryRun {
		store = discardWrites{o.store}
	}

	o.transition(StateCollecting, sum.RunID, sum.GroupID)
	partial := len(groupIDs) > 0
	groups := groupIDs
	if !partial {
		all, err := o.store.ListGroupIDs()
		if err != nil {
			o.transition(StateFailed, sum.RunID, sum.GroupID)
			return sum, fmt.Errorf("list groups: %w", err)
		}
		groups = all
		sum.GroupID = "all"
	}

	var events []sortedEvent
	for _, groupID := range groups {
		collected, fatal := o.collect(groupID, &sum)
		if fatal != nil {
			o.transition(StateFailed, sum.RunID, sum.GroupID)
			return sum, fatal
		}
		events = append(events, collected...)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].ts.Equal(events[j].ts) {
			return events[i].ts.Before(events[j].ts)
		}
		return events[i].rec.ID < events[j].rec.ID
	})

	o.transition(StateReplaying, sum.RunID, sum.GroupID)
	acc := stats.New()
	for _, ev := range events {
		norm, err := o.norm.Event(ev.rec)
		if err != nil {
			sum.Failed++
			o.log.Error("event normalization failed", "run", sum.RunID, "group", ev.rec.GroupID,
				"event", ev.rec.ID, "error", err)
			continue
		}
		sum.Skipped += len(norm.Skips)
		for _, unit := range norm.Units {
			acc.ApplyUnit(ev.rec.GroupID, unit)
			sum.Processed += len(unit.Outcomes)
		}
	}

	o.transition(StateFinalizing, sum.RunID, sum.GroupID)
	entries := acc.Entries()
	if partial {
		wanted := make(map[model.Scope]bool, len(groups))
		for _, groupID := range groups {
			wanted[model.GroupScope(groupID)] = true
		}
		filtered := entries[:0]
		for _, e := range entries {
			if wanted[e.Scope] {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if opts.PlayerFilter != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.PlayerID == opts.PlayerFilter {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if err := store.PutCumulative(entries); err != nil {
		o.transition(StateFailed, sum.RunID, sum.GroupID)
		return sum, fmt.Errorf("persist cumulative stats: %w", err)
	}

	o.transition(StateDone, sum.RunID, sum.GroupID)
	o.log.Info("stats rebuild finished", "run", sum.RunID, "groups", sum.GroupID,
		"processed", sum.Processed, "skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// collect fetches and orders a group's completed events: ascending by replay
// timestamp, event id as the stable tie-break. An unreadable event source is
// the one fatal error of a run; an event without a usable timestamp is
// skipped, not fatal.
func (o *Orchestrator) collect(groupID string, sum *Summary) ([]sortedEvent, error) {
	records, err := o.store.CompletedEvents(groupID)
	if err != nil {
		return nil, fmt.Errorf("collect events for %s: %w", groupID, err)
	}

	events := make([]sortedEvent, 0, len(records))
	for _, rec := range records {
		ts, ok := rec.ReplayTime()
		if !ok {
			sum.Skipped++
			o.log.Warn("event has no usable timestamp", "run", sum.RunID, "group", groupID, "event", rec.ID)
			continue
		}
		events = append(events, sortedEvent{ts: ts, rec: rec})
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].ts.Equal(events[j].ts) {
			return events[i].ts.Before(events[j].ts)
		}
		return events[i].rec.ID < events[j].rec.ID
	})
	return events, nil
}

// discardWrites keeps reads live and swallows writes, powering dry runs.
type discardWrites struct {
	Store
}

func (discardWrites) ClearRatingHistory(string) error                      { return nil }
func (discardWrites) InsertRatingHistory([]model.RatingHistoryEntry) error { return nil }
func (discardWrites) FinalizeRatings(string, []model.RatingState) error    { return nil }
func (discardWrites) PutCumulative([]stats.Entry) error                    { return nil }
