// Package stories loads domain and training-story files (YAML) into
// trackers the policy can train and evaluate on.
package stories

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
)

// #region file-types

// DomainFile is the YAML shape of a domain definition.
type DomainFile struct {
	Actions []string `yaml:"actions" json:"actions"`
	Intents []string `yaml:"intents" json:"intents"`
	Slots   []string `yaml:"slots" json:"slots"`
}

// Entity is an entity attached to an intent step.
type Entity struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// SlotStep assigns or clears a slot.
type SlotStep struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// Step is one entry in a story. Exactly one of Intent, Action, Slot, or
// Restart may be set.
type Step struct {
	Intent     string    `yaml:"intent,omitempty" json:"intent,omitempty"`
	Confidence float64   `yaml:"confidence,omitempty" json:"confidence,omitempty"`
	Entities   []Entity  `yaml:"entities,omitempty" json:"entities,omitempty"`
	Action     string    `yaml:"action,omitempty" json:"action,omitempty"`
	Slot       *SlotStep `yaml:"slot,omitempty" json:"slot,omitempty"`
	Restart    bool      `yaml:"restart,omitempty" json:"restart,omitempty"`
}

// Story is one named training or evaluation dialogue.
type Story struct {
	Name      string `yaml:"story" json:"story"`
	Augmented bool   `yaml:"augmented,omitempty" json:"augmented,omitempty"`
	Steps     []Step `yaml:"steps" json:"steps"`
}

// StoriesFile is the YAML shape of a stories file.
type StoriesFile struct {
	Stories []Story `yaml:"stories" json:"stories"`
}

// #endregion file-types

// #region load-domain

// LoadDomain reads and validates a domain YAML file.
func LoadDomain(path string) (*dialogue.Domain, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domain: %w", err)
	}
	var df DomainFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return nil, fmt.Errorf("parse domain: %w", err)
	}
	d, err := dialogue.NewDomain(df.Actions, df.Intents, df.Slots)
	if err != nil {
		return nil, fmt.Errorf("domain %s: %w", path, err)
	}
	return d, nil
}

// #endregion load-domain

// #region load-stories

// LoadStories reads a stories YAML file and builds one tracker per
// story, validated against the domain.
func LoadStories(path string, d *dialogue.Domain) ([]*dialogue.Tracker, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stories: %w", err)
	}
	var sf StoriesFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("parse stories: %w", err)
	}

	trackers := make([]*dialogue.Tracker, 0, len(sf.Stories))
	for i, st := range sf.Stories {
		t, err := BuildTracker(st, d)
		if err != nil {
			name := st.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("story %s: %w", name, err)
		}
		trackers = append(trackers, t)
	}
	return trackers, nil
}

// #endregion load-stories

// #region build-tracker

// BuildTracker converts one story into a tracker. User steps get the
// implicit action_listen prepended, matching how a live conversation
// records a turn.
func BuildTracker(st Story, d *dialogue.Domain) (*dialogue.Tracker, error) {
	t := dialogue.NewTracker("")
	t.Augmented = st.Augmented

	for i, step := range st.Steps {
		set := 0
		if step.Intent != "" {
			set++
		}
		if step.Action != "" {
			set++
		}
		if step.Slot != nil {
			set++
		}
		if step.Restart {
			set++
		}
		if set != 1 {
			return nil, fmt.Errorf("step %d: want exactly one of intent/action/slot/restart, got %d", i, set)
		}

		switch {
		case step.Intent != "":
			if !d.HasIntent(step.Intent) {
				return nil, fmt.Errorf("step %d: intent %q not in domain", i, step.Intent)
			}
			confidence := step.Confidence
			if confidence == 0 {
				confidence = 1.0
			}
			entities := make([]dialogue.Entity, 0, len(step.Entities))
			for _, e := range step.Entities {
				entities = append(entities, dialogue.Entity{Name: e.Name, Value: e.Value})
			}
			t.Update(dialogue.ActionExecuted{ActionName: dialogue.ActionListenName})
			t.Update(dialogue.UserUttered{Intent: step.Intent, Entities: entities, Confidence: confidence})

		case step.Action != "":
			if _, err := d.IndexForAction(step.Action); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			t.Update(dialogue.ActionExecuted{ActionName: step.Action})

		case step.Slot != nil:
			if !d.HasSlot(step.Slot.Name) {
				return nil, fmt.Errorf("step %d: slot %q not in domain", i, step.Slot.Name)
			}
			t.Update(dialogue.SlotSet{Name: step.Slot.Name, Value: step.Slot.Value})

		case step.Restart:
			t.Update(dialogue.Restarted{})
		}
	}
	return t, nil
}

// #endregion build-tracker
