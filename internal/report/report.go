package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/schieber/jasstat/internal/model"
	"github.com/schieber/jasstat/internal/replay"
	"github.com/schieber/jasstat/internal/stats"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintLeaderboard prints a group's ranking. If focusPlayerID is non-empty,
// that player's row is marked with ">".
func PrintLeaderboard(w io.Writer, groupID string, entries []model.LeaderboardEntry, focusPlayerID string) {
	fmt.Fprintf(w, "\nGroup: %s  |  Players: %d\n\n", groupID, len(entries))

	table := newTable(w)
	table.Header(" ", "#", "PLAYER", "TIER", "RATING", "GAMES")

	for i, e := range entries {
		marker := " "
		if focusPlayerID != "" && e.PlayerID == focusPlayerID {
			marker = ">"
		}
		name := e.DisplayName
		if name == "" {
			name = e.PlayerID
		}
		table.Append(
			marker,
			strconv.Itoa(i+1),
			name,
			e.Tier,
			fmt.Sprintf("%.2f", e.Rating),
			strconv.Itoa(e.GamesPlayed),
		)
	}
	table.Render()
}

// PrintScopes prints a player's cumulative counters, one row per scope.
func PrintScopes(w io.Writer, entries []stats.Entry) {
	table := newTable(w)
	table.Header(
		"SCOPE", "GAMES", "G_W-L-D", "SESS", "S_W-L-D",
		"STR_DIFF", "PT_DIFF", "MATSCH", "SCHNEIDER", "KMATSCH", "WEIS_DIFF",
	)

	for _, e := range entries {
		s := e.Score
		table.Append(
			e.Scope.String(),
			strconv.Itoa(s.GamesPlayed),
			fmt.Sprintf("%d-%d-%d", s.GameWins, s.GameLosses, s.GameDraws),
			strconv.Itoa(s.SessionsPlayed),
			fmt.Sprintf("%d-%d-%d", s.SessionWins, s.SessionLosses, s.SessionDraws),
			fmt.Sprintf("%+d", s.StrokeDiff()),
			fmt.Sprintf("%+d", s.PointDiff()),
			fmt.Sprintf("%+d", s.Matsch.Bilanz()),
			fmt.Sprintf("%+d", s.Schneider.Bilanz()),
			fmt.Sprintf("%+d", s.Kontermatsch.Bilanz()),
			fmt.Sprintf("%+d", s.WeisDiff()),
		)
	}
	table.Render()
}

// PrintHistory prints a player's rating chronology within a group, oldest
// first.
func PrintHistory(w io.Writer, entries []model.RatingHistoryEntry) {
	table := newTable(w)
	table.Header("DATE", "SOURCE", "KIND", "DELTA", "RATING", "TIER")

	for _, e := range entries {
		table.Append(
			e.MatchTime.Format("2006-01-02 15:04"),
			e.SourceID,
			string(e.SourceKind),
			fmt.Sprintf("%+.4f", e.Delta),
			fmt.Sprintf("%.2f", e.Rating),
			e.Tier,
		)
	}
	table.Render()
}

// PrintRunSummaries prints the per-group outcome of a batch run.
func PrintRunSummaries(w io.Writer, sums []replay.Summary) {
	fmt.Fprintf(w, "%-20s  %9s  %7s  %6s\n", "GROUP", "PROCESSED", "SKIPPED", "FAILED")
	fmt.Fprintf(w, "%-20s  %9s  %7s  %6s\n", "────────────────────", "─────────", "───────", "──────")
	for _, s := range sums {
		fmt.Fprintf(w, "%-20s  %9d  %7d  %6d\n", s.GroupID, s.Processed, s.Skipped, s.Failed)
	}
}
