package planmodel

import "testing"

func TestValidateDetectsDuplicateEpicID(t *testing.T) {
	g := &Graph{Epics: []*Epic{{ID: "A", Status: StatusPending}, {ID: "A", Status: StatusPending}}}
	violations := Validate(g)
	if len(violations) == 0 {
		t.Fatal("expected a duplicate-id violation")
	}
}

func TestValidateDetectsDanglingReference(t *testing.T) {
	g := &Graph{Epics: []*Epic{{ID: "A", Status: StatusPending, DependsOn: []string{"ghost"}}}}
	violations := Validate(g)
	if len(violations) == 0 {
		t.Fatal("expected a dangling-reference violation")
	}
}

func TestValidateDetectsEpicCycle(t *testing.T) {
	g := &Graph{Epics: []*Epic{
		{ID: "A", Status: StatusPending, DependsOn: []string{"B"}},
		{ID: "B", Status: StatusPending, DependsOn: []string{"A"}},
	}}
	violations := Validate(g)
	if len(violations) == 0 {
		t.Fatal("expected a cycle violation")
	}
}

func TestValidateDetectsFeatureCycle(t *testing.T) {
	g := &Graph{Epics: []*Epic{{
		ID:     "A",
		Status: StatusPending,
		Features: []*Feature{
			{ID: "a-1", Status: StatusPending, DependsOn: []string{"a-2"}},
			{ID: "a-2", Status: StatusPending, DependsOn: []string{"a-1"}},
		},
	}}}
	violations := Validate(g)
	if len(violations) == 0 {
		t.Fatal("expected a feature cycle violation")
	}
}

func TestValidateAcceptsWellFormedGraph(t *testing.T) {
	g := twoEpicGraph()
	if violations := Validate(g); len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}
}

func TestValidateRejectsUnknownStatus(t *testing.T) {
	g := &Graph{Epics: []*Epic{{ID: "A", Status: "in-review"}}}
	violations := Validate(g)
	if len(violations) == 0 {
		t.Fatal("expected an invalid-status violation")
	}
}
