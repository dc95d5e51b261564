package coordinator

import (
	"testing"

	"github.com/MBFrosty/planctl/internal/gitdriver"
	"github.com/MBFrosty/planctl/internal/planerrors"
	"github.com/MBFrosty/planctl/internal/planmodel"
	"github.com/MBFrosty/planctl/internal/planstore"
)

func readyGraph() *planmodel.Graph {
	return &planmodel.Graph{
		Epics: []*planmodel.Epic{
			{
				ID:     "A",
				Name:   "Epic A",
				Status: planmodel.StatusPending,
				Features: []*planmodel.Feature{
					{ID: "a-1", Name: "a-1", Status: planmodel.StatusPending},
				},
			},
			{
				ID:        "B",
				Name:      "Epic B",
				Status:    planmodel.StatusPending,
				DependsOn: []string{"A"},
			},
		},
	}
}

func seedPlan(t *testing.T, dir string, g *planmodel.Graph) error {
	t.Helper()
	return planstore.Save(dir, g)
}

func newTestCoordinator(t *testing.T, g *planmodel.Graph) (*Coordinator, *gitdriver.Fake) {
	t.Helper()
	dir := t.TempDir()
	if err := seedPlan(t, dir, g); err != nil {
		t.Fatalf("seeding plan: %v", err)
	}
	fake := gitdriver.NewFake("main")
	return New(dir, fake), fake
}

func TestStatusLoadsGraph(t *testing.T) {
	c, _ := newTestCoordinator(t, readyGraph())
	g, err := c.Status()
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Epics) != 2 {
		t.Fatalf("expected 2 epics, got %d", len(g.Epics))
	}
}

func TestNextReturnsReadyEpic(t *testing.T) {
	c, _ := newTestCoordinator(t, readyGraph())
	task, err := c.Next()
	if err != nil {
		t.Fatal(err)
	}
	if task == nil || task.TaskID() != "A" {
		t.Fatalf("expected epic A as next, got %v", task)
	}
}

func TestParallelReturnsReadyEpicsOnly(t *testing.T) {
	c, _ := newTestCoordinator(t, readyGraph())
	epics, err := c.Parallel()
	if err != nil {
		t.Fatal(err)
	}
	if len(epics) != 1 || epics[0].ID != "A" {
		t.Fatalf("expected only epic A ready, got %v", epics)
	}
}

func TestCompleteTransitionsEpicWhenAllFeaturesComplete(t *testing.T) {
	g := readyGraph()
	g.Epics[0].Status = planmodel.StatusInProgress
	c, _ := newTestCoordinator(t, g)

	if err := c.Complete("a-1"); err != nil {
		t.Fatal(err)
	}

	got, err := c.Status()
	if err != nil {
		t.Fatal(err)
	}
	epic := got.EpicByID("A")
	if epic.Status != planmodel.StatusCompleted {
		t.Fatalf("expected epic A completed, got %s", epic.Status)
	}
	feature := epic.FeatureByID("a-1")
	if feature.Status != planmodel.StatusCompleted {
		t.Fatalf("expected feature a-1 completed, got %s", feature.Status)
	}
}

func TestCompleteNotFound(t *testing.T) {
	c, _ := newTestCoordinator(t, readyGraph())
	err := c.Complete("missing")
	var nf *planerrors.NotFoundError
	if !asNotFound(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestBlockAppendsEntryThenReblockAppendsAttempt(t *testing.T) {
	c, _ := newTestCoordinator(t, readyGraph())

	if err := c.Block("A", "waiting on design review"); err != nil {
		t.Fatal(err)
	}
	g, err := c.Status()
	if err != nil {
		t.Fatal(err)
	}
	entry := g.BlockedEntryFor("A")
	if entry == nil {
		t.Fatal("expected a blocked entry for A")
	}
	if entry.Reason != "waiting on design review" || len(entry.Attempts) != 0 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if g.EpicByID("A").Status != planmodel.StatusBlocked {
		t.Fatal("expected epic A blocked")
	}

	if err := c.Block("A", "still waiting"); err != nil {
		t.Fatal(err)
	}
	g, err = c.Status()
	if err != nil {
		t.Fatal(err)
	}
	entry = g.BlockedEntryFor("A")
	if entry.Reason != "still waiting" {
		t.Fatalf("expected reason updated, got %q", entry.Reason)
	}
	if len(entry.Attempts) != 1 || entry.Attempts[0].Action != "re-block" {
		t.Fatalf("expected one re-block attempt, got %+v", entry.Attempts)
	}
}

func TestRebootSummary(t *testing.T) {
	g := readyGraph()
	g.Epics[0].Status = planmodel.StatusCompleted
	g.Epics[0].Features[0].Status = planmodel.StatusCompleted
	c, _ := newTestCoordinator(t, g)

	summary, err := c.Reboot("ship the thing")
	if err != nil {
		t.Fatal(err)
	}
	if summary.ProjectGoal != "ship the thing" {
		t.Fatalf("expected project goal carried through, got %q", summary.ProjectGoal)
	}
	if summary.CompletedEpics != 1 || summary.RemainingEpics != 1 {
		t.Fatalf("unexpected epic counts: %+v", summary)
	}
	if summary.CompletedFeatures != 1 {
		t.Fatalf("unexpected feature counts: %+v", summary)
	}
}

// asNotFound is a small type-assertion helper kept local to this file; it
// matches only an unwrapped *planerrors.NotFoundError.
func asNotFound(err error, target **planerrors.NotFoundError) bool {
	nf, ok := err.(*planerrors.NotFoundError)
	if !ok {
		return false
	}
	*target = nf
	return true
}
