package dialogue

import "github.com/google/uuid"

// #region tracker

// Tracker is the append-only event log of one conversation.
type Tracker struct {
	// ConversationID identifies the conversation across predictions and
	// provenance rows.
	ConversationID string

	// Augmented marks a tracker that was synthesized from partial-history
	// augmentation rather than recorded as an original training story.
	Augmented bool

	events []Event
}

// NewTracker creates an empty tracker. A fresh conversation ID is
// generated when id is empty.
func NewTracker(id string) *Tracker {
	if id == "" {
		id = uuid.NewString()
	}
	return &Tracker{ConversationID: id}
}

// #endregion tracker

// #region update

// Update appends an event to the log.
func (t *Tracker) Update(e Event) {
	t.events = append(t.events, e)
}

// #endregion

// #region applied-events

// AppliedEvents returns the events that are in effect: everything after
// the most recent Restarted event, in log order. The returned slice is
// shared with the tracker and must not be mutated.
func (t *Tracker) AppliedEvents() []Event {
	for i := len(t.events) - 1; i >= 0; i-- {
		if _, ok := t.events[i].(Restarted); ok {
			return t.events[i+1:]
		}
	}
	return t.events
}

// #endregion applied-events

// #region empty-copy

// EmptyCopy returns a tracker with the same identity and no events.
func (t *Tracker) EmptyCopy() *Tracker {
	return &Tracker{ConversationID: t.ConversationID, Augmented: t.Augmented}
}

// #endregion

// #region latest-message

// LatestMessage returns the most recent applied user message, if any.
func (t *Tracker) LatestMessage() (UserUttered, bool) {
	applied := t.AppliedEvents()
	for i := len(applied) - 1; i >= 0; i-- {
		if u, ok := applied[i].(UserUttered); ok {
			return u, true
		}
	}
	return UserUttered{}, false
}

// #endregion latest-message
