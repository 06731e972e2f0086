package policy

import (
	"testing"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
	"github.com/danielpatrickdp/dialogue-memo/internal/featurize"
)

// #region helpers

func truncationPolicy(t *testing.T, trackers ...*dialogue.Tracker) *Policy {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TruncationRecall = true
	p := New(cfg)
	if _, err := p.Train(trackers); err != nil {
		t.Fatalf("Train: %v", err)
	}
	return p
}

// #endregion helpers

// #region time-travel

func TestTruncationRecallRecoversFromStaleSlot(t *testing.T) {
	d := testDomain(t)
	p := truncationPolicy(t, singleTurn("confirm", "confirm_booking"))

	// The live conversation carries a slot set before the turn started;
	// no training window contains it, so the exact lookup must miss.
	tr := dialogue.NewTracker("")
	tr.Update(dialogue.SlotSet{Name: "city", Value: "London"})
	tr.Update(dialogue.ActionExecuted{ActionName: dialogue.ActionListenName})
	tr.Update(dialogue.UserUttered{Intent: "confirm", Confidence: 1.0})

	pred := predict(t, p, d, tr)
	if pred.Action != "confirm_booking" {
		t.Fatalf("predicted %q, want confirm_booking", pred.Action)
	}
	if pred.Mode != RecallTruncated {
		t.Fatalf("mode %v, want truncated", pred.Mode)
	}
}

func TestBasicRecallDoesNotTimeTravel(t *testing.T) {
	d := testDomain(t)
	p := New(DefaultConfig()) // basic recall
	if _, err := p.Train([]*dialogue.Tracker{singleTurn("confirm", "confirm_booking")}); err != nil {
		t.Fatalf("Train: %v", err)
	}

	tr := dialogue.NewTracker("")
	tr.Update(dialogue.SlotSet{Name: "city", Value: "London"})
	tr.Update(dialogue.ActionExecuted{ActionName: dialogue.ActionListenName})
	tr.Update(dialogue.UserUttered{Intent: "confirm", Confidence: 1.0})

	pred := predict(t, p, d, tr)
	if pred.Action != "" || pred.Mode != RecallNone {
		t.Fatalf("base variant must miss on a non-exact window, got %q/%v", pred.Action, pred.Mode)
	}
}

func TestExactMatchWinsOverTruncated(t *testing.T) {
	d := testDomain(t)

	// Train both the slotted window and its slot-free suffix, mapped to
	// different actions.
	slotted := dialogue.NewTracker("")
	slotted.Update(dialogue.SlotSet{Name: "city", Value: "London"})
	slotted.Update(dialogue.ActionExecuted{ActionName: dialogue.ActionListenName})
	slotted.Update(dialogue.UserUttered{Intent: "confirm", Confidence: 1.0})
	slotted.Update(dialogue.ActionExecuted{ActionName: "ask_name"})

	p := truncationPolicy(t, slotted, singleTurn("confirm", "confirm_booking"))

	tr := dialogue.NewTracker("")
	tr.Update(dialogue.SlotSet{Name: "city", Value: "London"})
	tr.Update(dialogue.ActionExecuted{ActionName: dialogue.ActionListenName})
	tr.Update(dialogue.UserUttered{Intent: "confirm", Confidence: 1.0})

	pred := predict(t, p, d, tr)
	if pred.Action != "ask_name" || pred.Mode != RecallExact {
		t.Fatalf("exact match must win over time travel, got %q/%v", pred.Action, pred.Mode)
	}
}

func TestTruncationRecallExhaustsAndMisses(t *testing.T) {
	d := testDomain(t)
	p := truncationPolicy(t, singleTurn("greet", "utter_greet"))

	// A long unseen conversation: every truncation suffix is unseen too,
	// so the search must walk to the end of the log and give up.
	tr := dialogue.NewTracker("")
	for i := 0; i < 4; i++ {
		tr.Update(dialogue.ActionExecuted{ActionName: dialogue.ActionListenName})
		tr.Update(dialogue.UserUttered{Intent: "ask", Confidence: 1.0})
		tr.Update(dialogue.ActionExecuted{ActionName: "ask_age"})
	}
	tr.Update(dialogue.ActionExecuted{ActionName: dialogue.ActionListenName})
	tr.Update(dialogue.UserUttered{Intent: "ask", Confidence: 1.0})

	pred := predict(t, p, d, tr)
	if pred.Action != "" || pred.Mode != RecallNone {
		t.Fatalf("expected exhausted miss, got %q/%v", pred.Action, pred.Mode)
	}
}

func TestTruncationRecallOnEventlessTracker(t *testing.T) {
	d := testDomain(t)
	p := truncationPolicy(t) // empty table

	pred := predict(t, p, d, dialogue.NewTracker(""))
	if pred.Action != "" || pred.Mode != RecallNone {
		t.Fatalf("expected miss on empty log, got %q/%v", pred.Action, pred.Mode)
	}
}

// #endregion time-travel

// #region strategies

func TestRecallerSelection(t *testing.T) {
	base := New(DefaultConfig())
	if _, ok := base.recaller.(BasicRecall); !ok {
		t.Fatalf("default config should select BasicRecall, got %T", base.recaller)
	}

	cfg := DefaultConfig()
	cfg.TruncationRecall = true
	extended := New(cfg)
	tr, ok := extended.recaller.(TruncationRecall)
	if !ok {
		t.Fatalf("expected TruncationRecall, got %T", extended.recaller)
	}
	if tr.Featurizer != (featurize.MaxHistoryFeaturizer{MaxHistory: DefaultMaxHistory}) {
		t.Fatalf("truncation recall featurizer misconfigured: %+v", tr.Featurizer)
	}
}

// #endregion strategies
