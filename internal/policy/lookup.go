package policy

import (
	"fmt"

	"github.com/danielpatrickdp/dialogue-memo/internal/featkey"
	"github.com/danielpatrickdp/dialogue-memo/internal/featurize"
)

// #region build-lookup

// buildLookup turns featurized examples into a key→action mapping.
//
// Conflict policy: a key seen with two different actions is deleted and
// blacklisted for the rest of the pass, so it can never re-enter the
// table no matter how later examples are ordered. An example whose
// action list does not have exactly one entry fails the whole pass.
func buildLookup(examples []featurize.TrainingExample, compress bool) (map[string]string, BuildSummary, error) {
	lookup := make(map[string]string)
	ambiguous := make(map[string]struct{})
	summary := BuildSummary{Examples: len(examples)}

	for i, ex := range examples {
		if len(ex.Actions) != 1 {
			return nil, BuildSummary{}, fmt.Errorf(
				"training example %d: action list has length %d, want 1", i, len(ex.Actions))
		}
		action := ex.Actions[0]

		key := featkey.Key(ex.States, compress)
		if key == "" {
			summary.SkippedEmpty++
			continue
		}
		if _, excluded := ambiguous[key]; excluded {
			continue
		}

		if existing, ok := lookup[key]; ok {
			if existing != action {
				// Contradicting evidence: purge rather than guess.
				ambiguous[key] = struct{}{}
				delete(lookup, key)
			}
			continue
		}
		lookup[key] = action
	}

	summary.Memorized = len(lookup)
	summary.Ambiguous = len(ambiguous)
	return lookup, summary, nil
}

// #endregion build-lookup
