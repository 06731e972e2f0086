package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/dialogue-memo/internal/policy"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleArtifact() policy.Artifact {
	return policy.Artifact{
		Priority:   policy.DefaultPriority,
		MaxHistory: 5,
		Lookup: map[string]string{
			"key-a": "utter_greet",
			"key-b": "utter_bye",
			"key-c": "utter_greet",
		},
	}
}

func TestSaveAndLoadArtifact(t *testing.T) {
	s := tempDB(t)

	rec, err := s.SaveVersion(sampleArtifact())
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}
	if rec.VersionID == "" {
		t.Fatal("expected non-empty version ID")
	}
	if rec.NumEntries != 3 {
		t.Fatalf("num entries %d, want 3", rec.NumEntries)
	}

	loaded, err := s.LoadArtifact(rec.VersionID)
	if err != nil {
		t.Fatalf("LoadArtifact: %v", err)
	}
	want := sampleArtifact()
	if loaded.Priority != want.Priority || loaded.MaxHistory != want.MaxHistory {
		t.Fatalf("artifact header mismatch: %+v", loaded)
	}
	if len(loaded.Lookup) != len(want.Lookup) {
		t.Fatalf("lookup size %d, want %d", len(loaded.Lookup), len(want.Lookup))
	}
	for k, v := range want.Lookup {
		if loaded.Lookup[k] != v {
			t.Errorf("entry %q: got %q, want %q", k, loaded.Lookup[k], v)
		}
	}
}

func TestActiveVersionSwap(t *testing.T) {
	s := tempDB(t)

	if _, err := s.ActiveVersion(); !errors.Is(err, ErrNoActivePolicy) {
		t.Fatalf("expected ErrNoActivePolicy, got %v", err)
	}

	first, err := s.SaveVersion(sampleArtifact())
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}
	if err := s.Activate(first.VersionID); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	active, err := s.ActiveVersion()
	if err != nil {
		t.Fatalf("ActiveVersion: %v", err)
	}
	if active.VersionID != first.VersionID {
		t.Fatalf("active %s, want %s", active.VersionID, first.VersionID)
	}

	second, err := s.SaveVersion(sampleArtifact())
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}
	if err := s.Activate(second.VersionID); err != nil {
		t.Fatalf("Activate second: %v", err)
	}
	active, err = s.ActiveVersion()
	if err != nil {
		t.Fatalf("ActiveVersion: %v", err)
	}
	if active.VersionID != second.VersionID {
		t.Fatalf("active %s, want %s", active.VersionID, second.VersionID)
	}
}

func TestListVersions(t *testing.T) {
	s := tempDB(t)
	for i := 0; i < 3; i++ {
		if _, err := s.SaveVersion(sampleArtifact()); err != nil {
			t.Fatalf("SaveVersion %d: %v", i, err)
		}
	}
	versions, err := s.ListVersions(2)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(versions))
	}
}

func TestActionCounts(t *testing.T) {
	s := tempDB(t)
	rec, err := s.SaveVersion(sampleArtifact())
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}

	counts, err := s.ActionCounts(rec.VersionID)
	if err != nil {
		t.Fatalf("ActionCounts: %v", err)
	}
	if counts["utter_greet"] != 2 || counts["utter_bye"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestPredictionLog(t *testing.T) {
	s := tempDB(t)
	rec, err := s.SaveVersion(sampleArtifact())
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}

	entries := []PredictionEntry{
		{VersionID: rec.VersionID, ConversationID: "conv-1", Action: "utter_greet", Score: 1.0, RecallMode: "exact"},
		{VersionID: rec.VersionID, ConversationID: "conv-1", Action: "", Score: 0, RecallMode: "none"},
	}
	for _, e := range entries {
		if err := s.LogPrediction(e); err != nil {
			t.Fatalf("LogPrediction: %v", err)
		}
	}

	got, err := s.RecentPredictions(10)
	if err != nil {
		t.Fatalf("RecentPredictions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	// Newest first.
	if got[0].RecallMode != "none" || got[0].Action != "" {
		t.Fatalf("newest row wrong: %+v", got[0])
	}
	if got[1].Action != "utter_greet" || got[1].Score != 1.0 {
		t.Fatalf("older row wrong: %+v", got[1])
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatal("created_at not round-tripped")
	}
}
