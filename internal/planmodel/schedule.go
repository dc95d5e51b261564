package planmodel

// CompletedEpics returns the set of Epic ids whose status is completed.
func CompletedEpics(g *Graph) map[string]bool {
	out := make(map[string]bool)
	for _, e := range g.Epics {
		if e.Status == StatusCompleted {
			out[e.ID] = true
		}
	}
	return out
}

// CompletedFeatures returns the set of Feature ids, within epicID, whose
// status is completed.
func CompletedFeatures(g *Graph, epicID string) map[string]bool {
	out := make(map[string]bool)
	e := g.EpicByID(epicID)
	if e == nil {
		return out
	}
	for _, f := range e.Features {
		if f.Status == StatusCompleted {
			out[f.ID] = true
		}
	}
	return out
}

// EpicReady reports whether e is ready: pending, and every dependency id is
// in completed.
func EpicReady(e *Epic, completed map[string]bool) bool {
	if e.Status != StatusPending {
		return false
	}
	for _, dep := range e.DependsOn {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// FeatureReady reports whether f is ready: pending, and every dependency id
// (within the same epic) is in completedInEpic.
func FeatureReady(f *Feature, completedInEpic map[string]bool) bool {
	if f.Status != StatusPending {
		return false
	}
	for _, dep := range f.DependsOn {
		if !completedInEpic[dep] {
			return false
		}
	}
	return true
}

// NewlyAvailable returns the ids of tasks that became ready as a direct
// result of justCompletedID transitioning to completed: epics whose
// depends_on included it, plus features (within in-progress epics) whose
// depends_on included it.
func NewlyAvailable(g *Graph, justCompletedID string) []string {
	var out []string
	completed := CompletedEpics(g)

	for _, e := range g.Epics {
		if !dependsOnID(e.DependsOn, justCompletedID) {
			continue
		}
		if EpicReady(e, completed) {
			out = append(out, e.ID)
		}
	}

	for _, e := range g.Epics {
		if e.Status != StatusInProgress {
			continue
		}
		completedInEpic := CompletedFeatures(g, e.ID)
		for _, f := range e.Features {
			if !dependsOnID(f.DependsOn, justCompletedID) {
				continue
			}
			if FeatureReady(f, completedInEpic) {
				out = append(out, f.ID)
			}
		}
	}
	return out
}

func dependsOnID(deps []string, id string) bool {
	for _, d := range deps {
		if d == id {
			return true
		}
	}
	return false
}

// NextTask applies a fixed tie-break order: an in_progress
// Feature of the first in_progress Epic (document order) wins first; then
// any ready Feature inside an in_progress Epic; then any ready pending
// Epic. Returns nil if nothing is runnable.
func NextTask(g *Graph) Task {
	for _, e := range g.Epics {
		if e.Status != StatusInProgress {
			continue
		}
		for _, f := range e.Features {
			if f.Status == StatusInProgress {
				return f
			}
		}
	}

	for _, e := range g.Epics {
		if e.Status != StatusInProgress {
			continue
		}
		completedInEpic := CompletedFeatures(g, e.ID)
		for _, f := range e.Features {
			if FeatureReady(f, completedInEpic) {
				return f
			}
		}
	}

	completed := CompletedEpics(g)
	for _, e := range g.Epics {
		if EpicReady(e, completed) {
			return e
		}
	}
	return nil
}

// ParallelTasks returns every ready, pending Epic — the full set of epics
// that could be expanded into worktrees right now.
func ParallelTasks(g *Graph) []*Epic {
	completed := CompletedEpics(g)
	var out []*Epic
	for _, e := range g.Epics {
		if EpicReady(e, completed) {
			out = append(out, e)
		}
	}
	return out
}
