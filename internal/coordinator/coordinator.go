// Package coordinator ties together the Plan Store, Lock Service, Plan
// Model, Marker Store, and Git Driver: scheduling, state transitions,
// worktree expand/merge/cleanup, and bidirectional sync. It is the
// composition root for every plan-mutating operation the command surface
// exposes.
package coordinator

import (
	"github.com/MBFrosty/planctl/internal/gitdriver"
	"github.com/MBFrosty/planctl/internal/planlock"
	"github.com/MBFrosty/planctl/internal/planmodel"
	"github.com/MBFrosty/planctl/internal/planstore"
)

// Coordinator is bound to one project root (either the base or a
// worktree, depending on the operation) and a Git Driver. A fresh
// Coordinator is created whenever an operation must delegate to the base
// project — no coordinator instance mutates more than one project root.
type Coordinator struct {
	ProjectRoot string
	Git         gitdriver.Driver
	LockOptions planlock.Options
}

// New returns a Coordinator bound to projectRoot using the package
// defaults for lock timeout.
func New(projectRoot string, git gitdriver.Driver) *Coordinator {
	return &Coordinator{ProjectRoot: projectRoot, Git: git}
}

func (c *Coordinator) load() (*planmodel.Graph, error) {
	return planstore.Load(c.ProjectRoot)
}

func (c *Coordinator) save(g *planmodel.Graph) error {
	return planstore.Save(c.ProjectRoot, g)
}

func (c *Coordinator) withLock(fn func() error) error {
	return planlock.WithLock(c.ProjectRoot, c.LockOptions, fn)
}

// Status is a pure read of the full graph; no lock required.
func (c *Coordinator) Status() (*planmodel.Graph, error) {
	return c.load()
}

// Next returns the single next runnable task per the Plan Model's
// tie-break order, or nil if nothing is runnable.
func (c *Coordinator) Next() (planmodel.Task, error) {
	g, err := c.load()
	if err != nil {
		return nil, err
	}
	return planmodel.NextTask(g), nil
}

// Parallel returns every ready, pending Epic.
func (c *Coordinator) Parallel() ([]*planmodel.Epic, error) {
	g, err := c.load()
	if err != nil {
		return nil, err
	}
	return planmodel.ParallelTasks(g), nil
}

// RebootSummary aggregates the graph into the small context a fresh agent
// session needs.
type RebootSummary struct {
	ProjectGoal       string
	CompletedEpics    int
	RemainingEpics    int
	CompletedFeatures int
	RemainingFeatures int
	Blocked           []*planmodel.BlockedEntry
	ResearchArtifacts []string // always empty; no adjunct research subsystem in this module
}

// Reboot is a pure read: aggregate counts of completed vs. remaining
// features and blocked entries, plus an externally configured project
// goal string (read by the caller and passed in — this core never
// invents a default).
func (c *Coordinator) Reboot(projectGoal string) (*RebootSummary, error) {
	g, err := c.load()
	if err != nil {
		return nil, err
	}
	summary := &RebootSummary{ProjectGoal: projectGoal, Blocked: g.Blocked}
	for _, e := range g.Epics {
		if e.Status == planmodel.StatusCompleted {
			summary.CompletedEpics++
		} else {
			summary.RemainingEpics++
		}
		for _, f := range e.Features {
			if f.Status == planmodel.StatusCompleted {
				summary.CompletedFeatures++
			} else {
				summary.RemainingFeatures++
			}
		}
	}
	return summary, nil
}
