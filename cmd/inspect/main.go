package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/danielpatrickdp/dialogue-memo/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to policy database")
	last := flag.Int("last", 20, "show N most recent versions")
	version := flag.String("version", "", "show single version detail")
	predictions := flag.Int("predictions", 0, "also show N most recent prediction log rows")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/policy.db [--last N] [--version id] [--predictions N] [--json]")
		os.Exit(2)
	}

	s, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if *version != "" {
		err = runDetailMode(s, *version, *jsonOut)
	} else {
		err = runListMode(s, *last, *jsonOut)
	}
	if err == nil && *predictions > 0 {
		err = runPredictionMode(s, *predictions, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	VersionID  string `json:"version_id"`
	Priority   int    `json:"priority"`
	MaxHistory int    `json:"max_history"`
	NumEntries int    `json:"num_entries"`
	CreatedAt  string `json:"created_at"`
	Active     bool   `json:"active"`
}

func runListMode(s *store.Store, last int, jsonOut bool) error {
	versions, err := s.ListVersions(last)
	if err != nil {
		return err
	}

	activeID := ""
	if rec, err := s.ActiveVersion(); err == nil {
		activeID = rec.VersionID
	}

	rows := make([]listRow, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, listRow{
			VersionID:  v.VersionID,
			Priority:   v.Priority,
			MaxHistory: v.MaxHistory,
			NumEntries: v.NumEntries,
			CreatedAt:  v.CreatedAt.Format(time.RFC3339),
			Active:     v.VersionID == activeID,
		})
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-38s %-8s %-11s %-9s %-20s %s\n", "VERSION", "PRIORITY", "MAX_HISTORY", "ENTRIES", "CREATED", "ACTIVE")
	for _, r := range rows {
		active := ""
		if r.Active {
			active = "*"
		}
		fmt.Printf("%-38s %-8d %-11d %-9d %-20s %s\n",
			r.VersionID, r.Priority, r.MaxHistory, r.NumEntries, r.CreatedAt, active)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOut struct {
	listRow
	ActionCounts map[string]int `json:"action_counts"`
}

func runDetailMode(s *store.Store, versionID string, jsonOut bool) error {
	rec, err := s.GetVersion(versionID)
	if err != nil {
		return err
	}
	counts, err := s.ActionCounts(versionID)
	if err != nil {
		return err
	}

	activeID := ""
	if a, err := s.ActiveVersion(); err == nil {
		activeID = a.VersionID
	}

	out := detailOut{
		listRow: listRow{
			VersionID:  rec.VersionID,
			Priority:   rec.Priority,
			MaxHistory: rec.MaxHistory,
			NumEntries: rec.NumEntries,
			CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
			Active:     rec.VersionID == activeID,
		},
		ActionCounts: counts,
	}
	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("version     %s\n", out.VersionID)
	fmt.Printf("priority    %d\n", out.Priority)
	fmt.Printf("max_history %d\n", out.MaxHistory)
	fmt.Printf("entries     %d\n", out.NumEntries)
	fmt.Printf("created     %s\n", out.CreatedAt)
	fmt.Printf("active      %v\n", out.Active)

	actions := make([]string, 0, len(counts))
	for a := range counts {
		actions = append(actions, a)
	}
	slices.Sort(actions)
	for _, a := range actions {
		fmt.Printf("  %-30s %d\n", a, counts[a])
	}
	return nil
}

// #endregion detail-mode

// #region prediction-mode

func runPredictionMode(s *store.Store, n int, jsonOut bool) error {
	entries, err := s.RecentPredictions(n)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(entries)
	}

	fmt.Printf("\n%-38s %-20s %-22s %-6s %s\n", "VERSION", "CONVERSATION", "ACTION", "SCORE", "MODE")
	for _, e := range entries {
		action := e.Action
		if action == "" {
			action = "(none)"
		}
		fmt.Printf("%-38s %-20s %-22s %-6.2f %s\n",
			e.VersionID, e.ConversationID, action, e.Score, e.RecallMode)
	}
	return nil
}

// #endregion prediction-mode

// #region helpers

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion helpers
