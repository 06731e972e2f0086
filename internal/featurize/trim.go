package featurize

import "github.com/danielpatrickdp/dialogue-memo/internal/dialogue"

// #region max-applied-events

// maxAppliedEvents counts, from the end of the applied event log, how
// many events cover maxTurns executed actions. The cut is placed at the
// most recent action_listen found once more than maxTurns actions have
// been seen, so the last user message is never split away from its turn.
// Returns 0 when the whole log should be kept.
func maxAppliedEvents(t *dialogue.Tracker, maxTurns int) int {
	if maxTurns <= 0 {
		return 0
	}
	applied := t.AppliedEvents()
	numEvents := 0
	numActions := 0
	for i := len(applied) - 1; i >= 0; i-- {
		numEvents++
		if a, ok := applied[i].(dialogue.ActionExecuted); ok {
			numActions++
			if numActions > maxTurns && a.ActionName == dialogue.ActionListenName {
				return numEvents
			}
		}
	}
	return 0
}

// #endregion max-applied-events

// #region trim

// TrimTracker returns a fresh tracker holding only the trailing events
// that cover maxTurns turns. The input tracker is never mutated; it is
// returned as-is when no trimming applies.
func TrimTracker(t *dialogue.Tracker, maxTurns int) *dialogue.Tracker {
	n := maxAppliedEvents(t, maxTurns)
	if n == 0 {
		return t
	}

	applied := t.AppliedEvents()
	out := t.EmptyCopy()
	for _, e := range applied[len(applied)-n:] {
		out.Update(e)
	}
	return out
}

// #endregion trim

// #region strip-leading-turn

// StripLeadingTurn truncates a tracker to begin at an executed action:
// the first one when again is false, the second one when again is true.
// Returns nil when no such action exists.
func StripLeadingTurn(t *dialogue.Tracker, again bool) *dialogue.Tracker {
	applied := t.AppliedEvents()

	idxFirst, idxSecond := -1, -1
	for i, e := range applied {
		if _, ok := e.(dialogue.ActionExecuted); ok {
			if idxFirst == -1 {
				idxFirst = i
			} else {
				idxSecond = i
				break
			}
		}
	}

	idx := idxFirst
	if again {
		idx = idxSecond
	}
	if idx == -1 {
		return nil
	}

	out := t.EmptyCopy()
	for _, e := range applied[idx:] {
		out.Update(e)
	}
	return out
}

// #endregion strip-leading-turn
