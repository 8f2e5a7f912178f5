package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all groups with stored events",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	groups, err := db.GroupSummaries()
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	if len(groups) == 0 {
		fmt.Fprintln(os.Stdout, "No events stored yet. Run 'jasstat seed' to load the demo dataset.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %8s  %6s\n", "GROUP", "SESSIONS", "PASSEN")
	fmt.Fprintf(os.Stdout, "%-20s  %8s  %6s\n", "────────────────────", "────────", "──────")
	for _, g := range groups {
		fmt.Fprintf(os.Stdout, "%-20s  %8d  %6d\n", g.GroupID, g.Sessions, g.Passen)
	}
	return nil
}
