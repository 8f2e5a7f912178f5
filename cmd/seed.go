package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/schieber/jasstat/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a deterministic demo dataset",
	Long:  "Insert a fixed set of players, sessions, and tournament passes. Seeding is idempotent: running it twice leaves the database unchanged.",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	players := []model.Player{
		{ID: "anna", DisplayName: "Anna"},
		{ID: "beat", DisplayName: "Beat"},
		{ID: "celine", DisplayName: "Céline"},
		{ID: "dario", DisplayName: "Dario"},
		{ID: "esther", DisplayName: "Esther"},
		{ID: "fritz", DisplayName: "Fritz"},
	}
	for _, p := range players {
		if err := db.UpsertPlayer(p); err != nil {
			return fmt.Errorf("seed player %s: %w", p.ID, err)
		}
	}

	for _, rec := range seedEvents() {
		if err := db.InsertEvent(rec); err != nil {
			return fmt.Errorf("seed event %s: %w", rec.ID, err)
		}
	}

	fmt.Fprintf(os.Stdout, "Seeded %d players and demo events for groups 'stammtisch' and 'turnier'.\n", len(players))
	fmt.Fprintln(os.Stdout, "Run 'jasstat backfill-ratings' and 'jasstat backfill-stats' to build ratings and stats.")
	return nil
}

func seedEvents() []model.EventRecord {
	base := time.Date(2026, 3, 6, 19, 30, 0, 0, time.UTC)

	sessions := []model.RawSession{
		{
			ID:        "sess-0001",
			GroupID:   "stammtisch",
			Status:    model.StatusCompleted,
			StartedAt: base,
			TeamA:     []string{"anna", "beat"},
			TeamB:     []string{"celine", "dario"},
			Games: []model.RawGame{
				{Number: 1, PointsA: ip(157), PointsB: ip(100), StrokesA: strokes(1, 1, 0, 1, 0), StrokesB: strokes(0, 0, 0, 0, 0), WeisA: ip(40), WeisB: ip(20)},
				{Number: 2, PointsA: ip(98), PointsB: ip(157), StrokesA: strokes(0, 0, 0, 0, 0), StrokesB: strokes(1, 1, 1, 0, 0), WeisB: ip(50)},
				{Number: 3, PointsA: ip(120), PointsB: ip(137), StrokesA: strokes(1, 0, 0, 0, 0), StrokesB: strokes(0, 1, 0, 0, 0)},
			},
			Details: []model.RawGameDetail{
				{Number: 2, MatschB: ip(1), WeisA: ip(15)},
			},
		},
		{
			ID:        "sess-0002",
			GroupID:   "stammtisch",
			Status:    model.StatusCompleted,
			StartedAt: base.AddDate(0, 0, 7),
			TeamA:     []string{"anna", "celine"},
			TeamB:     []string{"beat", "dario"},
			Games: []model.RawGame{
				{Number: 1, PointsA: ip(157), PointsB: ip(60), StrokesA: strokes(1, 1, 0, 1, 0), StrokesB: strokes(0, 0, 0, 0, 0), WeisA: ip(20)},
				{Number: 2, PointsA: ip(130), PointsB: ip(127), StrokesA: strokes(0, 1, 0, 0, 0), StrokesB: strokes(1, 0, 0, 0, 0)},
			},
		},
	}

	completed := base.AddDate(0, 0, 14).Add(3 * time.Hour)
	passes := []model.RawPasse{
		{
			ID:           "passe-0001",
			GroupID:      "turnier",
			TournamentID: "fruehling-2026",
			Status:       model.StatusCompleted,
			CompletedAt:  &completed,
			Games: []model.RawPasseGame{
				{Number: 1, TeamA: []string{"anna", "dario"}, TeamB: []string{"esther", "fritz"},
					PointsA: ip(157), PointsB: ip(112), StrokesA: strokes(1, 1, 0, 0, 0), StrokesB: strokes(0, 0, 0, 0, 0), WeisA: ip(30), WeisB: ip(0)},
				{Number: 2, TeamA: []string{"beat", "esther"}, TeamB: []string{"celine", "fritz"},
					PointsA: ip(101), PointsB: ip(157), StrokesA: strokes(0, 0, 0, 0, 0), StrokesB: strokes(1, 1, 0, 1, 0)},
			},
		},
	}

	var out []model.EventRecord
	for _, s := range sessions {
		payload, _ := json.Marshal(s)
		out = append(out, model.EventRecord{
			ID:        s.ID,
			GroupID:   s.GroupID,
			Kind:      model.KindSession,
			Status:    s.Status,
			StartedAt: s.StartedAt,
			Payload:   payload,
		})
	}
	for _, p := range passes {
		payload, _ := json.Marshal(p)
		out = append(out, model.EventRecord{
			ID:          p.ID,
			GroupID:     p.GroupID,
			Kind:        model.KindTournamentPasse,
			Status:      p.Status,
			StartedAt:   p.CompletedAt.Add(-3 * time.Hour),
			CompletedAt: p.CompletedAt,
			Payload:     payload,
		})
	}
	return out
}

func ip(v int) *int { return &v }

func strokes(berg, sieg, matsch, schneider, kontermatsch int) *model.StrokeSet {
	return &model.StrokeSet{
		Berg:         berg,
		Sieg:         sieg,
		Matsch:       matsch,
		Schneider:    schneider,
		Kontermatsch: kontermatsch,
	}
}
