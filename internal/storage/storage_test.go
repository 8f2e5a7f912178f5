package storage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/schieber/jasstat/internal/model"
	"github.com/schieber/jasstat/internal/normalize"
	"github.com/schieber/jasstat/internal/stats"
)

var base = time.Date(2026, 3, 6, 19, 30, 0, 0, time.UTC)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func event(id, groupID string, kind model.EventKind, status model.EventStatus, startedAt time.Time) model.EventRecord {
	return model.EventRecord{
		ID: id, GroupID: groupID, Kind: kind, Status: status,
		StartedAt: startedAt, Payload: []byte("{}"),
	}
}

func TestPlayerUpsertAndGet(t *testing.T) {
	db := openMemDB(t)

	if err := db.UpsertPlayer(model.Player{ID: "anna", DisplayName: "Anna"}); err != nil {
		t.Fatalf("UpsertPlayer: %v", err)
	}
	p, rs, err := db.GetPlayer("anna")
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if p.DisplayName != "Anna" {
		t.Errorf("display name = %q, want Anna", p.DisplayName)
	}
	if rs.Rating != 100 {
		t.Errorf("new player rating = %v, want the 100 default", rs.Rating)
	}

	// Upsert refreshes the name without touching rating columns.
	if err := db.UpsertPlayer(model.Player{ID: "anna", DisplayName: "Anna B."}); err != nil {
		t.Fatalf("second UpsertPlayer: %v", err)
	}
	p, _, _ = db.GetPlayer("anna")
	if p.DisplayName != "Anna B." {
		t.Errorf("display name = %q, want Anna B.", p.DisplayName)
	}

	if _, _, err := db.GetPlayer("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing player err = %v, want ErrNotFound", err)
	}
}

func TestEventsInsertIdempotentAndFiltered(t *testing.T) {
	db := openMemDB(t)

	rec := event("sess-1", "g1", model.KindSession, model.StatusCompleted, base)
	if err := db.InsertEvent(rec); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}
	if err := db.InsertEvent(rec); err != nil {
		t.Fatalf("repeat InsertEvent: %v", err)
	}
	if err := db.InsertEvent(event("sess-2", "g1", model.KindSession, model.StatusInProgress, base)); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}

	events, err := db.CompletedEvents("g1")
	if err != nil {
		t.Fatalf("CompletedEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1 (no duplicates, no in-progress)", len(events))
	}
	if events[0].ID != "sess-1" || !events[0].StartedAt.Equal(base) {
		t.Errorf("round trip mangled the record: %+v", events[0])
	}
	if events[0].CompletedAt != nil {
		t.Error("session without completion must come back with nil CompletedAt")
	}
}

func TestEventCompletionTimestampRoundTrip(t *testing.T) {
	db := openMemDB(t)

	done := base.Add(3 * time.Hour)
	rec := event("passe-1", "g1", model.KindTournamentPasse, model.StatusCompleted, base)
	rec.CompletedAt = &done
	if err := db.InsertEvent(rec); err != nil {
		t.Fatalf("InsertEvent: %v", err)
	}

	events, err := db.CompletedEvents("g1")
	if err != nil {
		t.Fatalf("CompletedEvents: %v", err)
	}
	if events[0].CompletedAt == nil || !events[0].CompletedAt.Equal(done) {
		t.Errorf("completedAt = %v, want %v", events[0].CompletedAt, done)
	}
}

func TestGroupSummariesAndIDs(t *testing.T) {
	db := openMemDB(t)

	db.InsertEvent(event("s1", "turnier", model.KindSession, model.StatusCompleted, base))
	db.InsertEvent(event("s2", "stammtisch", model.KindSession, model.StatusCompleted, base))
	db.InsertEvent(event("s3", "stammtisch", model.KindSession, model.StatusCompleted, base.Add(time.Hour)))
	db.InsertEvent(event("p1", "stammtisch", model.KindTournamentPasse, model.StatusCompleted, base))

	groups, err := db.ListGroupIDs()
	if err != nil {
		t.Fatalf("ListGroupIDs: %v", err)
	}
	if len(groups) != 2 || groups[0] != "stammtisch" || groups[1] != "turnier" {
		t.Fatalf("groups = %v, want sorted [stammtisch turnier]", groups)
	}

	sums, err := db.GroupSummaries()
	if err != nil {
		t.Fatalf("GroupSummaries: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("summaries = %d, want 2", len(sums))
	}
	if sums[0].Sessions != 2 || sums[0].Passen != 1 {
		t.Errorf("stammtisch = %+v, want 2 sessions and 1 passe", sums[0])
	}
}

func historyEntry(playerID string, ts time.Time, rtg, delta float64) model.RatingHistoryEntry {
	return model.RatingHistoryEntry{
		GroupID: "g1", PlayerID: playerID, MatchTime: ts,
		SourceKind: model.KindSession, SourceID: "sess-1",
		Rating: rtg, Delta: delta, Tier: model.TierFor(rtg),
		Snapshot: model.CumulativeSnapshot{Wins: 1, Strokes: 2},
	}
}

func TestRatingHistoryRoundTrip(t *testing.T) {
	db := openMemDB(t)

	entries := []model.RatingHistoryEntry{
		historyEntry("anna", base.Add(2*time.Minute), 101.5, 0.75),
		historyEntry("anna", base.Add(time.Minute), 100.75, 0.75),
	}
	if err := db.InsertRatingHistory(entries); err != nil {
		t.Fatalf("InsertRatingHistory: %v", err)
	}

	got, err := db.RatingHistory("g1", "anna")
	if err != nil {
		t.Fatalf("RatingHistory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	// Returned oldest first regardless of insert order.
	if !got[0].MatchTime.Before(got[1].MatchTime) {
		t.Error("history not sorted ascending")
	}
	if got[0].Snapshot.Wins != 1 || got[0].Snapshot.Strokes != 2 {
		t.Errorf("snapshot lost in round trip: %+v", got[0].Snapshot)
	}
}

func TestRatingHistoryReplaceOnSameKey(t *testing.T) {
	db := openMemDB(t)

	ts := base.Add(time.Minute)
	if err := db.InsertRatingHistory([]model.RatingHistoryEntry{historyEntry("anna", ts, 100.75, 0.75)}); err != nil {
		t.Fatalf("InsertRatingHistory: %v", err)
	}
	// Same (group, player, timestamp) key: the rewrite wins, no duplicate.
	if err := db.InsertRatingHistory([]model.RatingHistoryEntry{historyEntry("anna", ts, 101.0, 1.0)}); err != nil {
		t.Fatalf("second InsertRatingHistory: %v", err)
	}

	got, err := db.RatingHistory("g1", "anna")
	if err != nil {
		t.Fatalf("RatingHistory: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	if got[0].Rating != 101.0 {
		t.Errorf("rating = %v, want the replacing 101.0", got[0].Rating)
	}
}

func TestClearRatingHistory(t *testing.T) {
	db := openMemDB(t)

	db.InsertRatingHistory([]model.RatingHistoryEntry{historyEntry("anna", base, 100.75, 0.75)})
	if err := db.ClearRatingHistory("g1"); err != nil {
		t.Fatalf("ClearRatingHistory: %v", err)
	}
	got, _ := db.RatingHistory("g1", "anna")
	if len(got) != 0 {
		t.Errorf("entries = %d after clear, want 0", len(got))
	}
}

func TestFinalizeRatingsAndLeaderboard(t *testing.T) {
	db := openMemDB(t)

	db.UpsertPlayer(model.Player{ID: "anna", DisplayName: "Anna"})
	states := []model.RatingState{
		{GroupID: "g1", PlayerID: "anna", Rating: 121.5, GamesPlayed: 20},
		{GroupID: "g1", PlayerID: "beat", Rating: 98.0, GamesPlayed: 20},
		{GroupID: "g1", PlayerID: "celine", Rating: 98.0, GamesPlayed: 18},
	}
	if err := db.FinalizeRatings("g1", states); err != nil {
		t.Fatalf("FinalizeRatings: %v", err)
	}

	board, err := db.Leaderboard("g1")
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("board = %d rows, want 3", len(board))
	}
	if board[0].PlayerID != "anna" || board[0].Tier != "Jassmeister" {
		t.Errorf("top row = %+v, want anna as Jassmeister", board[0])
	}
	// Equal ratings tie-break on player id.
	if board[1].PlayerID != "beat" || board[2].PlayerID != "celine" {
		t.Errorf("tie-break order = %s, %s; want beat before celine", board[1].PlayerID, board[2].PlayerID)
	}
	if board[0].DisplayName != "Anna" {
		t.Errorf("display name not joined: %q", board[0].DisplayName)
	}

	// The global mirror on the players row follows the finalize.
	_, rs, err := db.GetPlayer("anna")
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if rs.Rating != 121.5 || rs.GamesPlayed != 20 {
		t.Errorf("mirror = %+v, want 121.5 over 20 games", rs)
	}

	// A later finalize replaces, never accumulates.
	states[0].Rating = 119.0
	if err := db.FinalizeRatings("g1", states); err != nil {
		t.Fatalf("second FinalizeRatings: %v", err)
	}
	rs2, err := db.GroupRating("g1", "anna")
	if err != nil {
		t.Fatalf("GroupRating: %v", err)
	}
	if rs2.Rating != 119.0 {
		t.Errorf("rating = %v, want replaced 119.0", rs2.Rating)
	}
}

func TestGroupRatingNotFound(t *testing.T) {
	db := openMemDB(t)
	if _, err := db.GroupRating("g1", "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCumulativeRoundTrip(t *testing.T) {
	db := openMemDB(t)

	entries := []stats.Entry{
		{PlayerID: "anna", Scope: model.GlobalScope(), Score: model.CumulativeScore{GamesPlayed: 5, GameWins: 3}},
		{PlayerID: "anna", Scope: model.PartnerScope("beat"), Score: model.CumulativeScore{GamesPlayed: 2, GameWins: 2}},
	}
	if err := db.PutCumulative(entries); err != nil {
		t.Fatalf("PutCumulative: %v", err)
	}

	got, err := db.GetCumulative("anna", model.PartnerScope("beat"))
	if err != nil {
		t.Fatalf("GetCumulative: %v", err)
	}
	if got.GamesPlayed != 2 || got.GameWins != 2 {
		t.Errorf("round trip mangled the score: %+v", got)
	}

	all, err := db.ListCumulative("anna")
	if err != nil {
		t.Fatalf("ListCumulative: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("scopes = %d, want 2", len(all))
	}

	// Rewriting the same (player, scope) replaces.
	entries[0].Score.GamesPlayed = 6
	if err := db.PutCumulative(entries[:1]); err != nil {
		t.Fatalf("second PutCumulative: %v", err)
	}
	got, err = db.GetCumulative("anna", model.GlobalScope())
	if err != nil {
		t.Fatalf("GetCumulative: %v", err)
	}
	if got.GamesPlayed != 6 {
		t.Errorf("games = %d, want replaced 6", got.GamesPlayed)
	}

	if _, err := db.GetCumulative("anna", model.OpponentScope("x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing scope err = %v, want ErrNotFound", err)
	}
}

func TestMarshalDocumentPrunesUnsetFields(t *testing.T) {
	doc := map[string]any{
		"gamesPlayed": 3,
		"weisMade":    normalize.Unset,
		"matsch":      map[string]any{"made": 1, "received": normalize.Unset},
	}

	out, err := marshalDocument(doc)
	if err != nil {
		t.Fatalf("marshalDocument: %v", err)
	}
	if strings.Contains(out, "weisMade") || strings.Contains(out, "received") {
		t.Errorf("unset fields survived encoding: %s", out)
	}
	if !strings.Contains(out, `"gamesPlayed":3`) || !strings.Contains(out, `"made":1`) {
		t.Errorf("set fields lost in encoding: %s", out)
	}
}
