package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/danielpatrickdp/dialogue-memo/internal/policy"
	"github.com/danielpatrickdp/dialogue-memo/internal/store"
	"github.com/danielpatrickdp/dialogue-memo/internal/stories"
)

// #region main

func main() {
	domainPath := flag.String("domain", "", "path to domain YAML")
	storiesPath := flag.String("stories", "", "path to training stories YAML")
	dbPath := flag.String("db", "dialogue_memo.db", "path to policy database")
	maxHistory := flag.Int("max-history", policy.DefaultMaxHistory, "turns per window, 0 = unbounded")
	priority := flag.Int("priority", policy.DefaultPriority, "ensemble priority stored with the artifact")
	noCompress := flag.Bool("no-compress", false, "store raw canonical keys instead of compressed ones")
	flag.Parse()

	if *domainPath == "" || *storiesPath == "" {
		fmt.Fprintln(os.Stderr, "usage: train --domain domain.yml --stories stories.yml [--db path] [--max-history N] [--priority N] [--no-compress]")
		os.Exit(2)
	}

	domain, err := stories.LoadDomain(*domainPath)
	if err != nil {
		log.Fatalf("load domain: %v", err)
	}
	trackers, err := stories.LoadStories(*storiesPath, domain)
	if err != nil {
		log.Fatalf("load stories: %v", err)
	}

	p := policy.New(policy.Config{
		Priority:     *priority,
		MaxHistory:   *maxHistory,
		CompressKeys: !*noCompress,
	})
	summary, err := p.Train(trackers)
	if err != nil {
		log.Fatalf("train: %v", err)
	}

	s, err := store.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer s.Close()

	rec, err := s.SaveVersion(p.Artifact())
	if err != nil {
		log.Fatalf("save version: %v", err)
	}
	if err := s.Activate(rec.VersionID); err != nil {
		log.Fatalf("activate: %v", err)
	}

	fmt.Printf("Trained %s from %d stories.\n", policy.ArtifactName, len(trackers))
	fmt.Printf("  examples: %d  memorized: %d  ambiguous: %d  skipped empty: %d  skipped augmented: %d\n",
		summary.Examples, summary.Memorized, summary.Ambiguous, summary.SkippedEmpty, summary.SkippedAugmented)
	fmt.Printf("  version %s active (max_history=%d, priority=%d)\n", rec.VersionID, *maxHistory, *priority)
}

// #endregion main
