package policy

import (
	"fmt"

	"github.com/danielpatrickdp/dialogue-memo/internal/dialogue"
	"github.com/danielpatrickdp/dialogue-memo/internal/featurize"
)

// #region policy-struct

// Policy memorizes training turns and replays them on exact recurrence.
// It is optimized for precision, not coverage: when it fires it is meant
// to outrank probabilistic policies, so a window either matches exactly
// (possibly after truncation) or predicts nothing.
type Policy struct {
	config     Config
	featurizer featurize.MaxHistoryFeaturizer
	recaller   Recaller

	// table is replaced wholesale by Train/restore, never mutated.
	table *Table
}

// New creates an untrained policy.
func New(config Config) *Policy {
	p := &Policy{
		config:     config,
		featurizer: featurize.MaxHistoryFeaturizer{MaxHistory: config.MaxHistory},
	}
	if config.TruncationRecall {
		p.recaller = TruncationRecall{Featurizer: p.featurizer}
	} else {
		p.recaller = BasicRecall{}
	}
	p.table = NewTable(nil, config.CompressKeys)
	return p
}

// FromArtifact restores a trained policy. The artifact's max history
// overrides the configured one so windows line up with the stored keys.
func FromArtifact(a Artifact, config Config) *Policy {
	config.Priority = a.Priority
	config.MaxHistory = a.MaxHistory
	p := New(config)
	p.table = NewTable(a.Lookup, config.CompressKeys)
	return p
}

// Config returns the policy settings.
func (p *Policy) Config() Config { return p.config }

// TableSize returns the number of memorized entries.
func (p *Policy) TableSize() int { return p.table.Len() }

// #endregion policy-struct

// #region train

// Train featurizes the given trackers and rebuilds the lookup table from
// scratch, replacing any previous table. Trackers flagged as augmented
// are excluded before featurization.
func (p *Policy) Train(trackers []*dialogue.Tracker) (BuildSummary, error) {
	original := make([]*dialogue.Tracker, 0, len(trackers))
	skipped := 0
	for _, t := range trackers {
		if t.Augmented {
			skipped++
			continue
		}
		original = append(original, t)
	}

	examples := p.featurizer.TrainingExamples(original)
	lookup, summary, err := buildLookup(examples, p.config.CompressKeys)
	if err != nil {
		return BuildSummary{}, fmt.Errorf("build lookup: %w", err)
	}
	summary.SkippedAugmented = skipped

	p.table = NewTable(lookup, p.config.CompressKeys)
	return summary, nil
}

// #endregion train

// #region predict

// PredictActionProbabilities recalls the next action for the tracker and
// returns a probability vector over the domain's actions: all zero on a
// miss, otherwise zero everywhere except the recalled action's index.
func (p *Policy) PredictActionProbabilities(t *dialogue.Tracker, d *dialogue.Domain) (Prediction, error) {
	window := p.featurizer.PredictionStates(t)
	action, mode := p.recaller.Recall(p.table, window, t)

	pred := Prediction{
		Probabilities: make([]float64, d.ActionCount()),
		Mode:          mode,
	}
	if action == "" {
		return pred, nil
	}

	idx, err := d.IndexForAction(action)
	if err != nil {
		return Prediction{}, fmt.Errorf("memorized action: %w", err)
	}

	score := 1.0
	if p.config.UseConfidenceAsScore {
		if msg, ok := t.LatestMessage(); ok {
			score = msg.Confidence
		}
	}

	pred.Action = action
	pred.Score = score
	pred.Probabilities[idx] = score
	return pred, nil
}

// #endregion predict

// #region artifact

// Artifact returns the serialization record for the trained table.
func (p *Policy) Artifact() Artifact {
	return Artifact{
		Priority:   p.config.Priority,
		MaxHistory: p.config.MaxHistory,
		Lookup:     p.table.Entries(),
	}
}

// #endregion artifact
