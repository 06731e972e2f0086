package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
	"github.com/danielpatrickdp/dialogue-memo/internal/policy"
	"github.com/danielpatrickdp/dialogue-memo/internal/stories"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a self-contained replay
// run: a domain, training stories, evaluation stories, and the accuracy
// the run must reach to pass.
type Fixture struct {
	Description string             `json:"description"`
	Domain      stories.DomainFile `json:"domain"`
	Config      FixtureConfig      `json:"config"`
	Training    []stories.Story    `json:"training"`
	Eval        []stories.Story    `json:"eval"`
	MinAccuracy float64            `json:"min_accuracy"`
}

// FixtureConfig mirrors policy.Config with JSON tags.
type FixtureConfig struct {
	Priority             int  `json:"priority"`
	MaxHistory           int  `json:"max_history"`
	UseConfidenceAsScore bool `json:"use_confidence_as_score"`
	CompressKeys         bool `json:"compress_keys"`
	TruncationRecall     bool `json:"truncation_recall"`
}

// FixtureResult bundles the outcome of a fixture run.
type FixtureResult struct {
	Build   policy.BuildSummary
	Results []TurnResult
	Summary Summary
	Passed  bool
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a fixture JSON file.
func LoadFixture(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// #endregion fixture-loader

// #region fixture-run

// RunFixture trains a fresh policy from the fixture's training stories
// and replays its evaluation stories against it.
func RunFixture(f Fixture) (FixtureResult, error) {
	d, err := dialogue.NewDomain(f.Domain.Actions, f.Domain.Intents, f.Domain.Slots)
	if err != nil {
		return FixtureResult{}, fmt.Errorf("fixture domain: %w", err)
	}

	cfg := policy.Config{
		Priority:             f.Config.Priority,
		MaxHistory:           f.Config.MaxHistory,
		UseConfidenceAsScore: f.Config.UseConfidenceAsScore,
		CompressKeys:         f.Config.CompressKeys,
		TruncationRecall:     f.Config.TruncationRecall,
	}

	training, err := buildTrackers(f.Training, d)
	if err != nil {
		return FixtureResult{}, fmt.Errorf("training stories: %w", err)
	}
	eval, err := buildTrackers(f.Eval, d)
	if err != nil {
		return FixtureResult{}, fmt.Errorf("eval stories: %w", err)
	}

	p := policy.New(cfg)
	build, err := p.Train(training)
	if err != nil {
		return FixtureResult{}, fmt.Errorf("train: %w", err)
	}

	results, summary, err := Run(p, d, eval)
	if err != nil {
		return FixtureResult{}, err
	}

	return FixtureResult{
		Build:   build,
		Results: results,
		Summary: summary,
		Passed:  summary.Accuracy >= f.MinAccuracy,
	}, nil
}

func buildTrackers(src []stories.Story, d *dialogue.Domain) ([]*dialogue.Tracker, error) {
	out := make([]*dialogue.Tracker, 0, len(src))
	for i, st := range src {
		t, err := stories.BuildTracker(st, d)
		if err != nil {
			name := st.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("story %s: %w", name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// #endregion fixture-run
