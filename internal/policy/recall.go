package policy

import (
	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
	"github.com/danielpatrickdp/dialogue-memo/internal/featurize"
)

// #region recaller

// Recaller resolves a state window to a memorized action. The two
// implementations differ only in what they try after an exact miss.
type Recaller interface {
	Recall(table *Table, window []dialogue.State, tracker *dialogue.Tracker) (string, RecallMode)
}

// #endregion recaller

// #region basic

// BasicRecall is the exact-match strategy: hit or nothing.
type BasicRecall struct{}

func (BasicRecall) Recall(table *Table, window []dialogue.State, _ *dialogue.Tracker) (string, RecallMode) {
	if action, ok := table.Get(window); ok {
		return action, RecallExact
	}
	return "", RecallNone
}

// #endregion basic

// #region truncation

// TruncationRecall extends exact matching with a time-travel search:
// when the current window misses, it pretends the conversation started
// more recently by stripping leading turns one at a time and retrying
// the lookup against the freshly computed window. Slot values persisted
// from stale context stop appearing in the shorter windows, which is
// exactly what lets a match resurface.
type TruncationRecall struct {
	Featurizer featurize.MaxHistoryFeaturizer
}

func (r TruncationRecall) Recall(table *Table, window []dialogue.State, tracker *dialogue.Tracker) (string, RecallMode) {
	if action, ok := table.Get(window); ok {
		return action, RecallExact
	}

	// Each step advances the start of the log past one more executed
	// action, so the search strictly shrinks and must terminate.
	lastKey := table.Key(window)
	truncated := featurize.StripLeadingTurn(
		featurize.TrimTracker(tracker, r.Featurizer.MaxHistory), false)
	for truncated != nil {
		key := table.Key(r.Featurizer.PredictionStates(truncated))
		if key != lastKey {
			if action, ok := table.GetKey(key); ok {
				return action, RecallTruncated
			}
			lastKey = key
		}
		truncated = featurize.StripLeadingTurn(truncated, true)
	}
	return "", RecallNone
}

// #endregion truncation
