package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
	"github.com/danielpatrickdp/dialogue-memo/internal/policy"
	"github.com/danielpatrickdp/dialogue-memo/internal/store"
	"github.com/danielpatrickdp/dialogue-memo/internal/stories"
)

// maxActionsPerTurn bounds the execute-predicted-action loop so a table
// that memorized a cycle without action_listen cannot spin forever.
const maxActionsPerTurn = 10

// #region main

func main() {
	dbPath := flag.String("db", envOr("MEMO_DB", "dialogue_memo.db"), "path to policy database")
	domainPath := flag.String("domain", "", "path to domain YAML")
	truncation := flag.Bool("truncation", false, "enable time-travel recall")
	flag.Parse()

	if *domainPath == "" {
		fmt.Fprintln(os.Stderr, "usage: console --domain domain.yml [--db path] [--truncation]")
		os.Exit(2)
	}

	domain, err := stories.LoadDomain(*domainPath)
	if err != nil {
		log.Fatalf("load domain: %v", err)
	}

	s, err := store.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer s.Close()

	active, err := s.ActiveVersion()
	if err != nil {
		log.Fatalf("active version: %v", err)
	}
	artifact, err := s.LoadArtifact(active.VersionID)
	if err != nil {
		log.Fatalf("load artifact: %v", err)
	}

	cfg := policy.DefaultConfig()
	cfg.TruncationRecall = *truncation
	p := policy.FromArtifact(artifact, cfg)

	fmt.Println("Memoization policy console ready.")
	fmt.Printf("  DB: %s | version: %s | entries: %d | max_history: %d\n",
		*dbPath, active.VersionID, p.TableSize(), artifact.MaxHistory)
	fmt.Println("Type an intent name, '/slot name value', '/restart', or 'quit':")

	tracker := dialogue.NewTracker("")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		switch {
		case strings.HasPrefix(line, "/slot "):
			fields := strings.Fields(line)
			if len(fields) < 2 || len(fields) > 3 {
				fmt.Println("usage: /slot name [value]")
				continue
			}
			name := fields[1]
			value := ""
			if len(fields) == 3 {
				value = fields[2]
			}
			if !domain.HasSlot(name) {
				fmt.Printf("slot %q not in domain\n", name)
				continue
			}
			tracker.Update(dialogue.SlotSet{Name: name, Value: value})

		case line == "/restart":
			tracker.Update(dialogue.Restarted{})
			fmt.Println("conversation restarted")

		default:
			if !domain.HasIntent(line) {
				fmt.Printf("intent %q not in domain\n", line)
				continue
			}
			tracker.Update(dialogue.ActionExecuted{ActionName: dialogue.ActionListenName})
			tracker.Update(dialogue.UserUttered{Intent: line, Confidence: 1.0})
			runTurn(p, s, active.VersionID, domain, tracker)
		}
	}
}

// #endregion main

// #region turn

// runTurn predicts and executes actions until the policy asks to listen
// again, misses, or the per-turn action cap is reached.
func runTurn(p *policy.Policy, s *store.Store, versionID string, domain *dialogue.Domain, tracker *dialogue.Tracker) {
	for i := 0; i < maxActionsPerTurn; i++ {
		pred, err := p.PredictActionProbabilities(tracker, domain)
		if err != nil {
			log.Printf("predict: %v", err)
			return
		}

		logErr := s.LogPrediction(store.PredictionEntry{
			VersionID:      versionID,
			ConversationID: tracker.ConversationID,
			Action:         pred.Action,
			Score:          pred.Score,
			RecallMode:     string(pred.Mode),
		})
		if logErr != nil {
			log.Printf("provenance: %v", logErr)
		}

		if pred.Action == "" {
			fmt.Println("  no memorized next action")
			return
		}
		fmt.Printf("  -> %s (score %.2f, %s recall)\n", pred.Action, pred.Score, pred.Mode)
		if pred.Action == dialogue.ActionListenName {
			// The next user input appends the listen; executing it here
			// would put two listens in a row, which no story produces.
			return
		}
		tracker.Update(dialogue.ActionExecuted{ActionName: pred.Action})
	}
	fmt.Printf("  stopped after %d actions without action_listen\n", maxActionsPerTurn)
}

// #endregion turn

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
