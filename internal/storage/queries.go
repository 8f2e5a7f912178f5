package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/schieber/jasstat/internal/model"
	"github.com/schieber/jasstat/internal/normalize"
	"github.com/schieber/jasstat/internal/stats"
)

// ---- Players ----

// UpsertPlayer inserts or refreshes a player's identity row. Rating and games
// are left to FinalizeRatings.
func (db *DB) UpsertPlayer(p model.Player) error {
	_, err := db.conn.Exec(`
		INSERT INTO players(id, display_name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name`,
		p.ID, p.DisplayName,
	)
	return err
}

// GetPlayer returns one player row with the global rating mirror.
func (db *DB) GetPlayer(id string) (model.Player, model.RatingState, error) {
	var p model.Player
	var rs model.RatingState
	err := db.conn.QueryRow(`
		SELECT id, display_name, rating, games_played FROM players WHERE id = ?`, id).
		Scan(&p.ID, &p.DisplayName, &rs.Rating, &rs.GamesPlayed)
	if err == sql.ErrNoRows {
		return model.Player{}, model.RatingState{}, ErrNotFound
	}
	if err != nil {
		return model.Player{}, model.RatingState{}, err
	}
	rs.PlayerID = p.ID
	return p, rs, nil
}

// ---- Events ----

// InsertEvent stores one event record. INSERT OR REPLACE keeps re-seeding
// idempotent.
func (db *DB) InsertEvent(rec model.EventRecord) error {
	var completed sql.NullInt64
	if rec.CompletedAt != nil {
		completed = sql.NullInt64{Int64: rec.CompletedAt.UnixNano(), Valid: true}
	}
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO events(id, group_id, kind, status, started_at, completed_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.GroupID, rec.Kind, rec.Status,
		rec.StartedAt.UnixNano(), completed, string(rec.Payload),
	)
	return err
}

// CompletedEvents returns all completed events of one group. In-progress
// records are invisible to replay by contract.
func (db *DB) CompletedEvents(groupID string) ([]model.EventRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, group_id, kind, status, started_at, completed_at, payload
		FROM events WHERE group_id = ? AND status = ?`,
		groupID, model.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EventRecord
	for rows.Next() {
		var rec model.EventRecord
		var started int64
		var completed sql.NullInt64
		var payload string
		if err := rows.Scan(&rec.ID, &rec.GroupID, &rec.Kind, &rec.Status,
			&started, &completed, &payload); err != nil {
			return nil, err
		}
		rec.StartedAt = time.Unix(0, started).UTC()
		if completed.Valid {
			t := time.Unix(0, completed.Int64).UTC()
			rec.CompletedAt = &t
		}
		rec.Payload = []byte(payload)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GroupSummary is a per-group event tally for list output.
type GroupSummary struct {
	GroupID  string
	Sessions int
	Passen   int
}

// GroupSummaries tallies completed events per group, sorted by group id.
func (db *DB) GroupSummaries() ([]GroupSummary, error) {
	rows, err := db.conn.Query(`
		SELECT group_id, kind, COUNT(1)
		FROM events WHERE status = ?
		GROUP BY group_id, kind
		ORDER BY group_id`, model.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupSummary
	for rows.Next() {
		var groupID string
		var kind model.EventKind
		var count int
		if err := rows.Scan(&groupID, &kind, &count); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].GroupID != groupID {
			out = append(out, GroupSummary{GroupID: groupID})
		}
		switch kind {
		case model.KindSession:
			out[len(out)-1].Sessions = count
		case model.KindTournamentPasse:
			out[len(out)-1].Passen = count
		}
	}
	return out, rows.Err()
}

// ListGroupIDs returns every group that has stored events, sorted.
func (db *DB) ListGroupIDs() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT group_id FROM events ORDER BY group_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ---- Rating history ----

// ClearRatingHistory deletes every history entry of a group, enabling a
// guaranteed clean rebuild.
func (db *DB) ClearRatingHistory(groupID string) error {
	_, err := db.conn.Exec(`DELETE FROM rating_history WHERE group_id = ?`, groupID)
	return err
}

// InsertRatingHistory bulk-writes history entries in a transaction. The match
// timestamp is the key, so re-running a replay overwrites instead of
// duplicating.
func (db *DB) InsertRatingHistory(entries []model.RatingHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO rating_history(
			group_id, player_id, match_ts, source_kind, source_id,
			rating, delta, tier, snapshot
		) VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		snapshot, err := marshalDocument(e.Snapshot)
		if err != nil {
			return fmt.Errorf("encode snapshot for %s: %w", e.PlayerID, err)
		}
		_, err = stmt.Exec(
			e.GroupID, e.PlayerID, e.MatchTime.UnixNano(), e.SourceKind, e.SourceID,
			e.Rating, e.Delta, e.Tier, snapshot,
		)
		if err != nil {
			return fmt.Errorf("insert rating_history for %s: %w", e.PlayerID, err)
		}
	}
	return tx.Commit()
}

// RatingHistory returns one player's chronology within a group, oldest first.
func (db *DB) RatingHistory(groupID, playerID string) ([]model.RatingHistoryEntry, error) {
	rows, err := db.conn.Query(`
		SELECT match_ts, source_kind, source_id, rating, delta, tier, snapshot
		FROM rating_history
		WHERE group_id = ? AND player_id = ?
		ORDER BY match_ts ASC`, groupID, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RatingHistoryEntry
	for rows.Next() {
		e := model.RatingHistoryEntry{GroupID: groupID, PlayerID: playerID}
		var ts int64
		var snapshot string
		if err := rows.Scan(&ts, &e.SourceKind, &e.SourceID, &e.Rating, &e.Delta, &e.Tier, &snapshot); err != nil {
			return nil, err
		}
		e.MatchTime = time.Unix(0, ts).UTC()
		if err := json.Unmarshal([]byte(snapshot), &e.Snapshot); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ---- Ratings and leaderboard ----

// FinalizeRatings commits a group's end-state ratings and the per-player
// global mirror in a single transaction, so leaderboard readers never observe
// a partial update.
func (db *DB) FinalizeRatings(groupID string, states []model.RatingState) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	group, err := tx.Prepare(`
		INSERT OR REPLACE INTO ratings(group_id, player_id, rating, games_played)
		VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer group.Close()

	mirror, err := tx.Prepare(`
		INSERT INTO players(id, rating, games_played) VALUES (?,?,?)
		ON CONFLICT(id) DO UPDATE SET rating = excluded.rating, games_played = excluded.games_played`)
	if err != nil {
		return err
	}
	defer mirror.Close()

	for _, s := range states {
		if _, err := group.Exec(groupID, s.PlayerID, s.Rating, s.GamesPlayed); err != nil {
			return fmt.Errorf("insert rating for %s: %w", s.PlayerID, err)
		}
		if _, err := mirror.Exec(s.PlayerID, s.Rating, s.GamesPlayed); err != nil {
			return fmt.Errorf("mirror rating for %s: %w", s.PlayerID, err)
		}
	}
	return tx.Commit()
}

// Leaderboard returns a group's players sorted by rating descending, player
// id as the deterministic tie-break. Tier labels are derived on read.
func (db *DB) Leaderboard(groupID string) ([]model.LeaderboardEntry, error) {
	rows, err := db.conn.Query(`
		SELECT r.player_id, COALESCE(p.display_name, ''), r.rating, r.games_played
		FROM ratings r
		LEFT JOIN players p ON p.id = r.player_id
		WHERE r.group_id = ?
		ORDER BY r.rating DESC, r.player_id ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.DisplayName, &e.Rating, &e.GamesPlayed); err != nil {
			return nil, err
		}
		e.Tier = model.TierFor(e.Rating)
		out = append(out, e)
	}
	return out, rows.Err()
}

// GroupRating returns one player's rating state within a group.
func (db *DB) GroupRating(groupID, playerID string) (model.RatingState, error) {
	rs := model.RatingState{GroupID: groupID, PlayerID: playerID}
	err := db.conn.QueryRow(`
		SELECT rating, games_played FROM ratings WHERE group_id = ? AND player_id = ?`,
		groupID, playerID).Scan(&rs.Rating, &rs.GamesPlayed)
	if err == sql.ErrNoRows {
		return model.RatingState{}, ErrNotFound
	}
	if err != nil {
		return model.RatingState{}, err
	}
	return rs, nil
}

// ---- Cumulative stats ----

// PutCumulative bulk-writes (player, scope) states in a transaction. Payloads
// pass through the document sanitizer before they are stored.
func (db *DB) PutCumulative(entries []stats.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO cumulative_stats(player_id, scope_kind, scope_id, payload)
		VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		payload, err := marshalDocument(e.Score)
		if err != nil {
			return fmt.Errorf("encode cumulative for %s/%s: %w", e.PlayerID, e.Scope, err)
		}
		if _, err := stmt.Exec(e.PlayerID, e.Scope.Kind, e.Scope.ID, payload); err != nil {
			return fmt.Errorf("insert cumulative for %s/%s: %w", e.PlayerID, e.Scope, err)
		}
	}
	return tx.Commit()
}

// GetCumulative returns one (player, scope) state.
func (db *DB) GetCumulative(playerID string, scope model.Scope) (model.CumulativeScore, error) {
	var payload string
	err := db.conn.QueryRow(`
		SELECT payload FROM cumulative_stats
		WHERE player_id = ? AND scope_kind = ? AND scope_id = ?`,
		playerID, scope.Kind, scope.ID).Scan(&payload)
	if err == sql.ErrNoRows {
		return model.CumulativeScore{}, ErrNotFound
	}
	if err != nil {
		return model.CumulativeScore{}, err
	}
	var score model.CumulativeScore
	if err := json.Unmarshal([]byte(payload), &score); err != nil {
		return model.CumulativeScore{}, fmt.Errorf("decode cumulative: %w", err)
	}
	return score, nil
}

// ListCumulative returns all stored scopes for one player, sorted by scope.
func (db *DB) ListCumulative(playerID string) ([]stats.Entry, error) {
	rows, err := db.conn.Query(`
		SELECT scope_kind, scope_id, payload FROM cumulative_stats
		WHERE player_id = ? ORDER BY scope_kind, scope_id`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stats.Entry
	for rows.Next() {
		e := stats.Entry{PlayerID: playerID}
		var payload string
		if err := rows.Scan(&e.Scope.Kind, &e.Scope.ID, &payload); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &e.Score); err != nil {
			return nil, fmt.Errorf("decode cumulative: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// marshalDocument encodes a document payload. Unset fields are pruned before
// encoding so the sentinel never reaches the encoder: map-shaped documents
// from incremental updates lose their unset entries, struct payloads pass
// through and rely on omitempty.
func marshalDocument(v any) (string, error) {
	out, err := json.Marshal(normalize.Sanitize(v))
	if err != nil {
		return "", err
	}
	return string(out), nil
}
