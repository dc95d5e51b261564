package marker

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTripWithoutSynced(t *testing.T) {
	dir := t.TempDir()
	m := &Marker{
		Epic:         "A",
		BaseWorktree: "/repo",
		BaseBranch:   "main",
		Local:        Local{Status: "in_progress", StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	if err := Write(dir, m); err != nil {
		t.Fatal(err)
	}
	got, err := Read(dir)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTripWithSynced(t *testing.T) {
	dir := t.TempDir()
	m := &Marker{
		Epic:         "B",
		BaseWorktree: "/repo",
		BaseBranch:   "main",
		Local:        Local{Status: "in_progress", StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		Synced: &Synced{
			LastSync:     time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			Dependencies: map[string]string{"A": "in_progress"},
			Dependents:   []string{"C"},
			BlockedBy:    []string{"A"},
			DAGStatus:    "pending",
		},
	}
	if err := Write(dir, m); err != nil {
		t.Fatal(err)
	}
	got, err := Read(dir)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Fatal("should not exist before Write")
	}
	if err := Write(dir, &Marker{Epic: "A"}); err != nil {
		t.Fatal(err)
	}
	if !Exists(dir) {
		t.Fatal("should exist after Write")
	}
}
