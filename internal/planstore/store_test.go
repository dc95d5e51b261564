package planstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MBFrosty/planctl/internal/planmodel"
	"github.com/google/go-cmp/cmp"
)

func sampleGraph() *planmodel.Graph {
	return &planmodel.Graph{
		Epics: []*planmodel.Epic{
			{
				ID:       "A",
				Name:     "First epic",
				SpecPath: "docs/a.md",
				Status:   planmodel.StatusPending,
				Features: []*planmodel.Feature{
					{ID: "a-1", Name: "do the thing", Status: planmodel.StatusPending},
				},
			},
			{
				ID:        "B",
				Name:      "Second: epic # with odd chars",
				Status:    planmodel.StatusPending,
				DependsOn: []string{"A"},
				Worktree:  "",
			},
		},
		Blocked: []*planmodel.BlockedEntry{
			{
				TaskID:    "B",
				Reason:    "waiting on A",
				BlockedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
				Attempts: []planmodel.Attempt{
					{AttemptAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Action: "retry", Result: "still blocked"},
				},
			},
		},
	}
}

func writeRaw(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, PlanFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRoundTripStable(t *testing.T) {
	dir := t.TempDir()
	g := sampleGraph()

	if err := Save(dir, g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(g, loaded); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}

	first, err := os.ReadFile(filepath.Join(dir, PlanFileName))
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(dir, loaded); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(dir, PlanFileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("second save produced different bytes:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected NotFoundError")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %T: %v", err, err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "\":\n  - ][bad")
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected parse error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestLoadRejectsCycle(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "epics:\n  - id: A\n    status: pending\n    depends_on: [B]\n  - id: B\n    status: pending\n    depends_on: [A]\n")
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected schema error")
	}
	var se *SchemaErrorList
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaErrorList, got %T: %v", err, err)
	}
	if len(se.Violations) == 0 {
		t.Fatal("expected at least one violation listing the cycle")
	}
}

func TestLoadRejectsUnknownTopLevelField(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "epics: []\nbogus: true\n")
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected schema error for unknown field")
	}
}

func TestEncodeEmptySequencesAsFlow(t *testing.T) {
	g := &planmodel.Graph{Epics: []*planmodel.Epic{{ID: "A", Status: planmodel.StatusPending}}}
	data, err := EncodeGraph(g)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "depends_on: []") {
		t.Errorf("expected empty depends_on to serialize as [], got:\n%s", data)
	}
}
