// Package featurize derives bounded state windows from conversation
// trackers: one snapshot per executed action plus the live state, cut to
// a configured number of turns.
package featurize

import (
	"slices"
	"strings"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
)

// #region featurizer

// MaxHistoryFeaturizer produces state windows covering at most MaxHistory
// turns. MaxHistory <= 0 means unbounded.
type MaxHistoryFeaturizer struct {
	MaxHistory int
}

// TrainingExample pairs a state window with the action that followed it.
// Actions always has length 1 for valid examples; the slice shape is kept
// so the table builder can reject malformed featurizer output.
type TrainingExample struct {
	States  []dialogue.State
	Actions []string
}

// #endregion featurizer

// #region state-walk

// trackerStates replays the applied events and returns one frozen
// snapshot per executed action (the state just before that action ran,
// so the first snapshot is always empty) plus the labels of those
// actions, and the live state after all events.
func trackerStates(t *dialogue.Tracker) (freezes []dialogue.State, labels []string, live dialogue.State) {
	var cur dialogue.State

	for _, e := range t.AppliedEvents() {
		switch ev := e.(type) {
		case dialogue.ActionExecuted:
			freezes = append(freezes, cloneState(cur))
			labels = append(labels, ev.ActionName)
			cur.PrevAction = ev.ActionName
		case dialogue.UserUttered:
			names := make([]string, 0, len(ev.Entities))
			for _, ent := range ev.Entities {
				names = append(names, ent.Name)
			}
			slices.Sort(names)
			cur.User = dialogue.UserState{Intent: ev.Intent, Entities: names}
		case dialogue.SlotSet:
			cur.Slots = setSlot(cur.Slots, ev.Name, ev.Value)
		}
	}
	return freezes, labels, cloneState(cur)
}

func cloneState(s dialogue.State) dialogue.State {
	s.Slots = slices.Clone(s.Slots)
	s.User.Entities = slices.Clone(s.User.Entities)
	return s
}

// setSlot keeps the slot list sorted by name. An empty value clears.
func setSlot(slots []dialogue.SlotValue, name, value string) []dialogue.SlotValue {
	i, found := slices.BinarySearchFunc(slots, name, func(sv dialogue.SlotValue, n string) int {
		return strings.Compare(sv.Name, n)
	})
	switch {
	case value == "" && found:
		return slices.Delete(slices.Clone(slots), i, i+1)
	case value == "":
		return slots
	case found:
		slots = slices.Clone(slots)
		slots[i].Value = value
		return slots
	default:
		return slices.Insert(slices.Clone(slots), i, dialogue.SlotValue{Name: name, Value: value})
	}
}

// #endregion state-walk

// #region windows

// lastN returns the trailing n entries, or everything when n <= 0.
func lastN(states []dialogue.State, n int) []dialogue.State {
	if n > 0 && len(states) > n {
		states = states[len(states)-n:]
	}
	return slices.Clone(states)
}

// PredictionStates returns the window for predicting the tracker's next
// action: every frozen snapshot followed by the live state, cut to the
// last MaxHistory entries.
func (f MaxHistoryFeaturizer) PredictionStates(t *dialogue.Tracker) []dialogue.State {
	freezes, _, live := trackerStates(t)
	return lastN(append(freezes, live), f.MaxHistory)
}

// TrainingExamples featurizes training trackers: for the k-th executed
// action of each tracker, the example window is the snapshots up to and
// including the one frozen just before that action, cut to MaxHistory.
func (f MaxHistoryFeaturizer) TrainingExamples(trackers []*dialogue.Tracker) []TrainingExample {
	var out []TrainingExample
	for _, t := range trackers {
		freezes, labels, _ := trackerStates(t)
		for k, label := range labels {
			out = append(out, TrainingExample{
				States:  lastN(freezes[:k+1], f.MaxHistory),
				Actions: []string{label},
			})
		}
	}
	return out
}

// #endregion windows
