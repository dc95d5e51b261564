package planmodel

import "time"

// Feature is a child work item within an Epic. Features do not nest.
type Feature struct {
	ID                string
	Name              string
	Status            Status
	DependsOn         []string
	SourceRequirement string
}

// Epic is a top-level unit of work with its own branch and optional worktree.
type Epic struct {
	ID        string
	Name      string
	SpecPath  string
	Status    Status
	Worktree  string // relative path, empty when none
	DependsOn []string
	Features  []*Feature
}

// Attempt is one informational entry in a BlockedEntry's history.
type Attempt struct {
	AttemptAt time.Time
	Action    string
	Result    string
}

// BlockedEntry records why a task was blocked and its attempt history.
type BlockedEntry struct {
	TaskID    string
	Reason    string
	BlockedAt time.Time
	Attempts  []Attempt
}

// Graph is the full persisted plan: an ordered sequence of Epics plus the
// blocked-task registry.
type Graph struct {
	Epics   []*Epic
	Blocked []*BlockedEntry
}

// FeatureByID returns the Feature with the given id within e, or nil.
func (e *Epic) FeatureByID(id string) *Feature {
	for _, f := range e.Features {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// EpicByID returns the Epic with the given id in g, or nil.
func (g *Graph) EpicByID(id string) *Epic {
	for _, e := range g.Epics {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// BlockedEntryFor returns the first BlockedEntry matching taskID, or nil.
func (g *Graph) BlockedEntryFor(taskID string) *BlockedEntry {
	for _, b := range g.Blocked {
		if b.TaskID == taskID {
			return b
		}
	}
	return nil
}
