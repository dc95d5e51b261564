package planmodel

import "fmt"

// Violation is a single schema or invariant violation, with the document
// path it was found at (e.g. "epics[2].depends_on[0]").
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks uniqueness, reference integrity, enum validity, and
// acyclicity. It returns every violation found rather than stopping at the
// first one.
func Validate(g *Graph) []Violation {
	var violations []Violation

	epicIDs := make(map[string]int) // id -> count
	for i, e := range g.Epics {
		epicIDs[e.ID]++
		if epicIDs[e.ID] > 1 {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("epics[%d].id", i),
				Message: fmt.Sprintf("duplicate epic id %q", e.ID),
			})
		}
		if !ValidStatus(e.Status) {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("epics[%d].status", i),
				Message: fmt.Sprintf("invalid status %q", e.Status),
			})
		}

		featureIDs := make(map[string]int)
		for j, f := range e.Features {
			featureIDs[f.ID]++
			if featureIDs[f.ID] > 1 {
				violations = append(violations, Violation{
					Path:    fmt.Sprintf("epics[%d].features[%d].id", i, j),
					Message: fmt.Sprintf("duplicate feature id %q in epic %q", f.ID, e.ID),
				})
			}
			if !ValidStatus(f.Status) {
				violations = append(violations, Violation{
					Path:    fmt.Sprintf("epics[%d].features[%d].status", i, j),
					Message: fmt.Sprintf("invalid status %q", f.Status),
				})
			}
		}
	}

	for i, e := range g.Epics {
		for j, dep := range e.DependsOn {
			if _, ok := epicIDs[dep]; !ok {
				violations = append(violations, Violation{
					Path:    fmt.Sprintf("epics[%d].depends_on[%d]", i, j),
					Message: fmt.Sprintf("dangling epic dependency %q", dep),
				})
			}
		}
		for j, f := range e.Features {
			for k, dep := range f.DependsOn {
				if e.FeatureByID(dep) == nil {
					violations = append(violations, Violation{
						Path:    fmt.Sprintf("epics[%d].features[%d].depends_on[%d]", i, j, k),
						Message: fmt.Sprintf("dangling feature dependency %q in epic %q", dep, e.ID),
					})
				}
			}
		}
	}

	violations = append(violations, findEpicCycles(g)...)
	for _, e := range g.Epics {
		violations = append(violations, findFeatureCycles(e)...)
	}

	return violations
}

// findEpicCycles runs a DFS over the epic-level dependency graph and
// reports every back-edge found.
func findEpicCycles(g *Graph) []Violation {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.Epics))
	var violations []Violation

	var visit func(id string, path []string)
	visit = func(id string, path []string) {
		if color[id] == black {
			return
		}
		if color[id] == gray {
			violations = append(violations, Violation{
				Path:    "epics.depends_on",
				Message: fmt.Sprintf("cyclic epic dependency: %v -> %s", path, id),
			})
			return
		}
		color[id] = gray
		e := g.EpicByID(id)
		if e != nil {
			for _, dep := range e.DependsOn {
				visit(dep, append(path, id))
			}
		}
		color[id] = black
	}

	for _, e := range g.Epics {
		if color[e.ID] == white {
			visit(e.ID, nil)
		}
	}
	return violations
}

// findFeatureCycles runs the same DFS within a single epic's features.
func findFeatureCycles(e *Epic) []Violation {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(e.Features))
	var violations []Violation

	var visit func(id string, path []string)
	visit = func(id string, path []string) {
		if color[id] == black {
			return
		}
		if color[id] == gray {
			violations = append(violations, Violation{
				Path:    fmt.Sprintf("epics[%s].features.depends_on", e.ID),
				Message: fmt.Sprintf("cyclic feature dependency: %v -> %s", path, id),
			})
			return
		}
		color[id] = gray
		f := e.FeatureByID(id)
		if f != nil {
			for _, dep := range f.DependsOn {
				visit(dep, append(path, id))
			}
		}
		color[id] = black
	}

	for _, f := range e.Features {
		if color[f.ID] == white {
			visit(f.ID, nil)
		}
	}
	return violations
}
