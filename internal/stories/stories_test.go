package stories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
)

// #region helpers

const domainYAML = `
actions:
  - utter_greet
  - utter_confirm
intents:
  - greet
  - confirm
slots:
  - city
`

const storiesYAML = `
stories:
  - story: greet path
    steps:
      - intent: greet
      - action: utter_greet
  - story: booking path
    augmented: true
    steps:
      - intent: confirm
        confidence: 0.8
        entities:
          - name: city
            value: London
      - slot:
          name: city
          value: London
      - action: utter_confirm
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func loadTestDomain(t *testing.T) *dialogue.Domain {
	t.Helper()
	d, err := LoadDomain(writeFile(t, "domain.yml", domainYAML))
	if err != nil {
		t.Fatalf("LoadDomain: %v", err)
	}
	return d
}

// #endregion helpers

func TestLoadDomain(t *testing.T) {
	d := loadTestDomain(t)
	if d.ActionCount() != 3 { // action_listen prepended
		t.Fatalf("expected 3 actions, got %d", d.ActionCount())
	}
	if !d.HasIntent("greet") || !d.HasSlot("city") {
		t.Fatal("domain membership not loaded")
	}
}

func TestLoadStories(t *testing.T) {
	d := loadTestDomain(t)
	trackers, err := LoadStories(writeFile(t, "stories.yml", storiesYAML), d)
	if err != nil {
		t.Fatalf("LoadStories: %v", err)
	}
	if len(trackers) != 2 {
		t.Fatalf("expected 2 trackers, got %d", len(trackers))
	}

	greet := trackers[0]
	if greet.Augmented {
		t.Error("greet path should not be augmented")
	}
	events := greet.AppliedEvents()
	if len(events) != 3 {
		t.Fatalf("expected 3 events (implicit listen, utterance, action), got %d", len(events))
	}
	if a, ok := events[0].(dialogue.ActionExecuted); !ok || a.ActionName != dialogue.ActionListenName {
		t.Fatalf("user step must be preceded by action_listen, got %#v", events[0])
	}
	if u, ok := events[1].(dialogue.UserUttered); !ok || u.Intent != "greet" || u.Confidence != 1.0 {
		t.Fatalf("default confidence should be 1.0, got %#v", events[1])
	}

	booking := trackers[1]
	if !booking.Augmented {
		t.Error("booking path should be augmented")
	}
	events = booking.AppliedEvents()
	u, ok := events[1].(dialogue.UserUttered)
	if !ok || u.Confidence != 0.8 {
		t.Fatalf("explicit confidence lost: %#v", events[1])
	}
	if len(u.Entities) != 1 || u.Entities[0].Name != "city" {
		t.Fatalf("entities lost: %#v", u.Entities)
	}
	if s, ok := events[2].(dialogue.SlotSet); !ok || s.Name != "city" || s.Value != "London" {
		t.Fatalf("slot step lost: %#v", events[2])
	}
}

func TestLoadStoriesValidation(t *testing.T) {
	d := loadTestDomain(t)

	tests := []struct {
		name string
		yaml string
	}{
		{
			"unknown-intent",
			"stories:\n  - story: s\n    steps:\n      - intent: unknown\n",
		},
		{
			"unknown-action",
			"stories:\n  - story: s\n    steps:\n      - action: utter_unknown\n",
		},
		{
			"unknown-slot",
			"stories:\n  - story: s\n    steps:\n      - slot:\n          name: nope\n          value: x\n",
		},
		{
			"two-fields-in-one-step",
			"stories:\n  - story: s\n    steps:\n      - intent: greet\n        action: utter_greet\n",
		},
		{
			"empty-step",
			"stories:\n  - story: s\n    steps:\n      - {}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadStories(writeFile(t, "bad.yml", tt.yaml), d); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestBuildTrackerRestart(t *testing.T) {
	d := loadTestDomain(t)
	tr, err := BuildTracker(Story{
		Name: "restarting",
		Steps: []Step{
			{Intent: "greet"},
			{Action: "utter_greet"},
			{Restart: true},
			{Intent: "confirm"},
		},
	}, d)
	if err != nil {
		t.Fatalf("BuildTracker: %v", err)
	}
	applied := tr.AppliedEvents()
	if len(applied) != 2 {
		t.Fatalf("restart should drop earlier events, got %d applied", len(applied))
	}
}
