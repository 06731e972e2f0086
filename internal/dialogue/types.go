package dialogue

// #region constants

// ActionListenName is the action that waits for the next user message.
// Every user turn in a conversation begins with it.
const ActionListenName = "action_listen"

// #endregion

// #region events

// Event is a single entry in a conversation's event log.
type Event interface {
	// EventType returns a stable identifier for the event kind.
	EventType() string
}

// ActionExecuted records that the agent ran an action.
type ActionExecuted struct {
	ActionName string
}

func (e ActionExecuted) EventType() string { return "action" }

// Entity is a single entity extracted from a user message.
type Entity struct {
	Name  string
	Value string
}

// UserUttered records a parsed user message: the recognized intent,
// extracted entities, and the understanding confidence for the intent.
type UserUttered struct {
	Intent     string
	Entities   []Entity
	Confidence float64
}

func (e UserUttered) EventType() string { return "user" }

// SlotSet records a slot assignment. An empty value clears the slot.
type SlotSet struct {
	Name  string
	Value string
}

func (e SlotSet) EventType() string { return "slot" }

// Restarted marks a conversation reset. Events before the most recent
// Restarted are not part of the applied event log.
type Restarted struct{}

func (e Restarted) EventType() string { return "restart" }

// #endregion events

// #region state

// SlotValue is one slot assignment inside a state snapshot.
type SlotValue struct {
	Name  string
	Value string
}

// UserState is the user substate of a snapshot: the latest recognized
// intent and the names of the entities that came with it.
type UserState struct {
	Intent   string
	Entities []string
}

// State is one turn snapshot: what the user last said, which action the
// agent last executed, and the slots currently set. Slots are kept sorted
// by name so that two states with the same content always compare and
// serialize identically regardless of the order the slots were filled.
type State struct {
	User       UserState
	PrevAction string
	Slots      []SlotValue
}

// IsEmpty reports whether the snapshot carries no information at all.
func (s State) IsEmpty() bool {
	return s.User.Intent == "" && len(s.User.Entities) == 0 &&
		s.PrevAction == "" && len(s.Slots) == 0
}

// #endregion state
