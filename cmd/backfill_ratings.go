package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schieber/jasstat/internal/replay"
	"github.com/schieber/jasstat/internal/report"
)

var (
	clearExisting bool
	ratingsDryRun bool
)

var backfillRatingsCmd = &cobra.Command{
	Use:   "backfill-ratings [group-id]",
	Short: "Replay a group's history and rebuild ratings",
	Long:  "Replay all completed sessions and tournament passes of a group in chronological order, rebuilding per-player ratings and the full rating history. Without a group id, every group is rebuilt through a bounded worker pool.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackfillRatings,
}

func init() {
	backfillRatingsCmd.Flags().BoolVar(&clearExisting, "clear", false, "delete existing rating history before replaying")
	backfillRatingsCmd.Flags().BoolVar(&ratingsDryRun, "dry-run", false, "compute without persisting")
}

func runBackfillRatings(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	opts := replay.Options{ClearExisting: clearExisting, DryRun: ratingsDryRun}

	if len(args) == 1 {
		orch := replay.New(db, log)
		sum, err := orch.Rebuild(args[0], opts)
		if err != nil {
			return fmt.Errorf("backfill ratings: %w", err)
		}
		report.PrintRunSummaries(os.Stdout, []replay.Summary{sum})
		return nil
	}

	groups, err := db.ListGroupIDs()
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	if len(groups) == 0 {
		fmt.Fprintln(os.Stdout, "No events stored yet. Run 'jasstat seed' to load the demo dataset.")
		return nil
	}

	runner := replay.NewRunner(cfg.Workers, log)
	sums := runner.Run(cmd.Context(), groups, func(groupID string) (replay.Summary, error) {
		// One orchestrator per group: replay state is never shared.
		return replay.New(db, log).Rebuild(groupID, opts)
	})
	report.PrintRunSummaries(os.Stdout, sums)
	return nil
}
