// Package policy implements the memoization policy: it memorizes the
// exact state windows seen in training stories and deterministically
// replays the action that followed whenever the same window recurs.
package policy

// #region constants

// ArtifactName labels the persisted lookup-table artifact.
const ArtifactName = "memorized_turns"

// DefaultPriority ranks the policy against other decision sources in an
// ensemble. Stored with the artifact, not enforced here.
const DefaultPriority = 3

// DefaultMaxHistory is the number of turns a window covers unless
// configured otherwise. Zero means unbounded.
const DefaultMaxHistory = 5

// #endregion

// #region recall-mode

// RecallMode records how a prediction was recalled.
type RecallMode string

const (
	RecallExact     RecallMode = "exact"
	RecallTruncated RecallMode = "truncated"
	RecallNone      RecallMode = "none"
)

// #endregion

// #region config

// Config holds the policy's tunable settings.
type Config struct {
	// Priority is the ensemble override rank stored with the artifact.
	Priority int

	// MaxHistory bounds prediction windows to this many turns.
	// Zero or negative means unbounded.
	MaxHistory int

	// UseConfidenceAsScore scores a recalled action with the
	// understanding confidence of the latest user message instead of 1.0.
	UseConfidenceAsScore bool

	// CompressKeys deflates and base64-encodes canonical window
	// serializations before storing them.
	CompressKeys bool

	// TruncationRecall enables the extended recall strategy that strips
	// leading turns and retries lookup when the exact window misses.
	TruncationRecall bool
}

// DefaultConfig returns the standard policy settings.
func DefaultConfig() Config {
	return Config{
		Priority:     DefaultPriority,
		MaxHistory:   DefaultMaxHistory,
		CompressKeys: true,
	}
}

// #endregion config

// #region prediction

// Prediction is the outcome of one policy call: a probability vector
// sized to the domain's action space plus a loggable summary of what was
// recalled. Action is empty on a miss.
type Prediction struct {
	Probabilities []float64
	Action        string
	Score         float64
	Mode          RecallMode
}

// #endregion prediction

// #region build-summary

// BuildSummary reports what a training pass did.
type BuildSummary struct {
	Examples         int // featurized examples processed
	Memorized        int // entries in the resulting table
	Ambiguous        int // keys excluded for conflicting actions
	SkippedEmpty     int // examples with an empty window
	SkippedAugmented int // trackers excluded before featurization
}

// #endregion

// #region artifact

// Artifact is the serialization shape of a trained policy: what the
// persistence collaborator stores and loads under ArtifactName.
type Artifact struct {
	Priority   int
	MaxHistory int
	Lookup     map[string]string
}

// #endregion artifact
