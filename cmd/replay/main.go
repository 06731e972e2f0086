package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/dialogue-memo/internal/policy"
	"github.com/danielpatrickdp/dialogue-memo/internal/replay"
	"github.com/danielpatrickdp/dialogue-memo/internal/store"
	"github.com/danielpatrickdp/dialogue-memo/internal/stories"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	dbPath := flag.String("db", "", "path to policy database (DB mode)")
	versionID := flag.String("version", "", "policy version to evaluate (default: active)")
	domainPath := flag.String("domain", "", "path to domain YAML (DB mode)")
	storiesPath := flag.String("stories", "", "path to evaluation stories YAML (DB mode)")
	truncation := flag.Bool("truncation", false, "enable time-travel recall (DB mode)")
	minAccuracy := flag.Float64("min-accuracy", 1.0, "lowest accuracy that still passes (DB mode)")
	flag.Parse()

	if (*fixturePath == "") == (*dbPath == "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --db policy.db --domain domain.yml --stories eval_stories.yml [--version id] [--truncation] [--min-accuracy F]")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *versionID, *domainPath, *storiesPath, *truncation, *minAccuracy)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	result, err := replay.RunFixture(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if f.Description != "" {
		fmt.Println(f.Description)
	}
	printRun(result.Results, result.Summary)
	if !result.Passed {
		fmt.Printf("FAIL: accuracy %.3f below required %.3f\n", result.Summary.Accuracy, f.MinAccuracy)
		return 1
	}
	fmt.Println("PASS")
	return 0
}

// #endregion fixture-mode

// #region db-mode

func runDBMode(dbPath, versionID, domainPath, storiesPath string, truncation bool, minAccuracy float64) int {
	if domainPath == "" || storiesPath == "" {
		fmt.Fprintln(os.Stderr, "DB mode needs --domain and --stories")
		return 2
	}

	s, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		return 1
	}
	defer s.Close()

	if versionID == "" {
		rec, err := s.ActiveVersion()
		if err != nil {
			fmt.Fprintf(os.Stderr, "active version: %v\n", err)
			return 1
		}
		versionID = rec.VersionID
	}

	artifact, err := s.LoadArtifact(versionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load artifact: %v\n", err)
		return 1
	}

	domain, err := stories.LoadDomain(domainPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load domain: %v\n", err)
		return 1
	}
	trackers, err := stories.LoadStories(storiesPath, domain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load stories: %v\n", err)
		return 1
	}

	cfg := policy.DefaultConfig()
	cfg.TruncationRecall = truncation
	p := policy.FromArtifact(artifact, cfg)

	results, summary, err := replay.Run(p, domain, trackers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}

	fmt.Printf("Evaluated version %s on %d stories.\n", versionID, len(trackers))
	printRun(results, summary)
	if summary.Accuracy < minAccuracy {
		fmt.Printf("FAIL: accuracy %.3f below required %.3f\n", summary.Accuracy, minAccuracy)
		return 1
	}
	fmt.Println("PASS")
	return 0
}

// #endregion db-mode

// #region output

func printRun(results []replay.TurnResult, summary replay.Summary) {
	for _, r := range results {
		if r.Outcome == replay.OutcomeHit {
			continue
		}
		predicted := r.Predicted
		if predicted == "" {
			predicted = "(none)"
		}
		fmt.Printf("  %-4s %s turn %d: expected %s, predicted %s\n",
			r.Outcome, r.ConversationID, r.TurnIndex, r.Expected, predicted)
	}
	fmt.Printf("turns=%d hits=%d (truncated=%d) wrong=%d misses=%d accuracy=%.3f\n",
		summary.Turns, summary.Hits, summary.TruncatedHits, summary.Wrong, summary.Misses, summary.Accuracy)
}

// #endregion output
