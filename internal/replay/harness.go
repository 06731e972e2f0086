// Package replay evaluates a trained policy by stepping through recorded
// stories and comparing each memorized prediction with the action the
// story actually took.
package replay

import (
	"fmt"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
	"github.com/danielpatrickdp/dialogue-memo/internal/policy"
)

// #region types

// Outcome classifies one replayed turn.
type Outcome string

const (
	OutcomeHit   Outcome = "hit"   // predicted the story's action
	OutcomeWrong Outcome = "wrong" // predicted a different action
	OutcomeMiss  Outcome = "miss"  // no memorized prediction
)

// TurnResult captures the outcome of replaying one executed action.
type TurnResult struct {
	ConversationID string
	TurnIndex      int
	Expected       string
	Predicted      string
	Score          float64
	Mode           policy.RecallMode
	Outcome        Outcome
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Turns         int
	Hits          int
	Wrong         int
	Misses        int
	TruncatedHits int
	Accuracy      float64
}

// #endregion types

// #region replay

// Run replays each tracker event by event. Before every executed action
// it asks the policy for a prediction on the history so far, records the
// outcome, then applies the actual event and continues, so a wrong
// prediction never contaminates later turns.
func Run(p *policy.Policy, d *dialogue.Domain, trackers []*dialogue.Tracker) ([]TurnResult, Summary, error) {
	var results []TurnResult

	for _, t := range trackers {
		partial := t.EmptyCopy()
		turn := 0
		for _, e := range t.AppliedEvents() {
			if a, ok := e.(dialogue.ActionExecuted); ok {
				pred, err := p.PredictActionProbabilities(partial, d)
				if err != nil {
					return nil, Summary{}, fmt.Errorf("conversation %s turn %d: %w", t.ConversationID, turn, err)
				}
				results = append(results, turnResult(t.ConversationID, turn, a.ActionName, pred))
				turn++
			}
			partial.Update(e)
		}
	}

	var summary Summary
	for _, r := range results {
		summary.Turns++
		switch r.Outcome {
		case OutcomeHit:
			summary.Hits++
			if r.Mode == policy.RecallTruncated {
				summary.TruncatedHits++
			}
		case OutcomeWrong:
			summary.Wrong++
		case OutcomeMiss:
			summary.Misses++
		}
	}
	if summary.Turns > 0 {
		summary.Accuracy = float64(summary.Hits) / float64(summary.Turns)
	}
	return results, summary, nil
}

func turnResult(conversationID string, turn int, expected string, pred policy.Prediction) TurnResult {
	r := TurnResult{
		ConversationID: conversationID,
		TurnIndex:      turn,
		Expected:       expected,
		Predicted:      pred.Action,
		Score:          pred.Score,
		Mode:           pred.Mode,
	}
	switch {
	case pred.Action == "":
		r.Outcome = OutcomeMiss
	case pred.Action == expected:
		r.Outcome = OutcomeHit
	default:
		r.Outcome = OutcomeWrong
	}
	return r
}

// #endregion replay
