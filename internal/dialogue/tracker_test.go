package dialogue

import "testing"

func TestAppliedEventsWithoutRestart(t *testing.T) {
	tr := NewTracker("")
	tr.Update(ActionExecuted{ActionName: ActionListenName})
	tr.Update(UserUttered{Intent: "greet", Confidence: 1.0})
	tr.Update(ActionExecuted{ActionName: "utter_greet"})

	applied := tr.AppliedEvents()
	if len(applied) != 3 {
		t.Fatalf("expected 3 applied events, got %d", len(applied))
	}
}

func TestAppliedEventsDropBeforeRestart(t *testing.T) {
	tr := NewTracker("")
	tr.Update(ActionExecuted{ActionName: ActionListenName})
	tr.Update(UserUttered{Intent: "greet", Confidence: 1.0})
	tr.Update(Restarted{})
	tr.Update(ActionExecuted{ActionName: ActionListenName})
	tr.Update(UserUttered{Intent: "bye", Confidence: 1.0})

	applied := tr.AppliedEvents()
	if len(applied) != 2 {
		t.Fatalf("expected 2 applied events after restart, got %d", len(applied))
	}
	u, ok := applied[1].(UserUttered)
	if !ok || u.Intent != "bye" {
		t.Fatalf("expected trailing bye utterance, got %#v", applied[1])
	}
}

func TestAppliedEventsSecondRestartWins(t *testing.T) {
	tr := NewTracker("")
	tr.Update(Restarted{})
	tr.Update(UserUttered{Intent: "greet", Confidence: 1.0})
	tr.Update(Restarted{})

	if got := tr.AppliedEvents(); len(got) != 0 {
		t.Fatalf("expected no applied events, got %d", len(got))
	}
}

func TestEmptyCopyKeepsIdentity(t *testing.T) {
	tr := NewTracker("conv-1")
	tr.Augmented = true
	tr.Update(UserUttered{Intent: "greet", Confidence: 1.0})

	cp := tr.EmptyCopy()
	if cp.ConversationID != "conv-1" {
		t.Errorf("conversation ID not kept: %q", cp.ConversationID)
	}
	if !cp.Augmented {
		t.Error("augmented flag not kept")
	}
	if len(cp.AppliedEvents()) != 0 {
		t.Error("copy should start with no events")
	}
}

func TestNewTrackerGeneratesID(t *testing.T) {
	a := NewTracker("")
	b := NewTracker("")
	if a.ConversationID == "" {
		t.Fatal("expected generated conversation ID")
	}
	if a.ConversationID == b.ConversationID {
		t.Fatal("expected distinct conversation IDs")
	}
}

func TestLatestMessage(t *testing.T) {
	tr := NewTracker("")
	if _, ok := tr.LatestMessage(); ok {
		t.Fatal("empty tracker should have no message")
	}

	tr.Update(ActionExecuted{ActionName: ActionListenName})
	tr.Update(UserUttered{Intent: "greet", Confidence: 0.7})
	tr.Update(ActionExecuted{ActionName: "utter_greet"})
	tr.Update(ActionExecuted{ActionName: ActionListenName})
	tr.Update(UserUttered{Intent: "bye", Confidence: 0.9})

	msg, ok := tr.LatestMessage()
	if !ok {
		t.Fatal("expected a latest message")
	}
	if msg.Intent != "bye" || msg.Confidence != 0.9 {
		t.Fatalf("got %q/%.2f, want bye/0.90", msg.Intent, msg.Confidence)
	}
}
