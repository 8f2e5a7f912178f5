package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schieber/jasstat/internal/report"
)

var focusPlayer string

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard <group-id>",
	Short: "Show a group's ranking",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().StringVar(&focusPlayer, "focus", "", "mark this player's row")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.Leaderboard(args[0])
	if err != nil {
		return fmt.Errorf("load leaderboard: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stdout, "No ratings for group %q. Run 'jasstat backfill-ratings %s' first.\n", args[0], args[0])
		return nil
	}
	report.PrintLeaderboard(os.Stdout, args[0], entries, focusPlayer)
	return nil
}
