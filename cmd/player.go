package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schieber/jasstat/internal/model"
	"github.com/schieber/jasstat/internal/report"
	"github.com/schieber/jasstat/internal/storage"
)

var historyGroup string

var playerCmd = &cobra.Command{
	Use:   "player <player-id>",
	Short: "Show one player's profile",
	Long:  "Print a player's global rating, tier, and cumulative counters at every stored scope. With --group, the rating chronology within that group is printed as well.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayer,
}

func init() {
	playerCmd.Flags().StringVar(&historyGroup, "group", "", "also print the rating history within this group")
}

func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	playerID := args[0]
	p, rs, err := db.GetPlayer(playerID)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintf(os.Stdout, "Player %q not found.\n", playerID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load player: %w", err)
	}

	name := p.DisplayName
	if name == "" {
		name = p.ID
	}
	fmt.Fprintf(os.Stdout, "\nPlayer: %s  |  Rating: %.2f (%s)  |  Games: %d\n\n",
		name, rs.Rating, model.TierFor(rs.Rating), rs.GamesPlayed)

	scopes, err := db.ListCumulative(playerID)
	if err != nil {
		return fmt.Errorf("load cumulative stats: %w", err)
	}
	if len(scopes) == 0 {
		fmt.Fprintln(os.Stdout, "No cumulative stats yet. Run 'jasstat backfill-stats' first.")
	} else {
		report.PrintScopes(os.Stdout, scopes)
	}

	if historyGroup == "" {
		return nil
	}
	history, err := db.RatingHistory(historyGroup, playerID)
	if err != nil {
		return fmt.Errorf("load rating history: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\nRating history in group %s:\n\n", historyGroup)
	if len(history) == 0 {
		fmt.Fprintln(os.Stdout, "No history entries.")
		return nil
	}
	report.PrintHistory(os.Stdout, history)
	return nil
}
