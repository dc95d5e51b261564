// Package planstore loads, validates, and serializes the plan file
// (plan.yaml). It walks gopkg.in/yaml.v3's Node API directly rather than
// yaml.Unmarshal into plain structs, so that unknown top-level keys can be
// rejected and the on-disk quoting and ordering rules stay entirely under
// our control.
package planstore

import (
	"fmt"
	"time"

	"github.com/MBFrosty/planctl/internal/planmodel"
	"gopkg.in/yaml.v3"
)

// ParseError means plan.yaml exists but could not be parsed as YAML at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parsing plan.yaml: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// SchemaErrorList means plan.yaml parsed as YAML but failed schema or
// invariant validation. Every violation found is reported together.
type SchemaErrorList struct {
	Violations []planmodel.Violation
}

func (e *SchemaErrorList) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("schema error: %s", e.Violations[0])
	}
	return fmt.Sprintf("schema error: %d violations, first: %s", len(e.Violations), e.Violations[0])
}

// nilIfEmpty normalizes a zero-length slice to nil so that an absent or
// empty YAML sequence round-trips back to the same nil-slice zero value a
// freshly-constructed Graph would have, rather than an allocated empty one.
func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

// allowedTopLevelKeys is the closed set of keys plan.yaml may contain.
var allowedTopLevelKeys = map[string]bool{"epics": true, "blocked": true}

// allowedEpicKeys and allowedFeatureKeys police drift at the epic/feature
// level the same way: unknown fields there are rejected too.
var allowedEpicKeys = map[string]bool{
	"id": true, "name": true, "spec_path": true, "status": true,
	"worktree": true, "depends_on": true, "features": true,
}
var allowedFeatureKeys = map[string]bool{
	"id": true, "name": true, "status": true, "depends_on": true, "source_requirement": true,
}
var allowedBlockedKeys = map[string]bool{
	"task_id": true, "reason": true, "blocked_at": true, "attempts": true,
}

// DecodeGraph parses raw plan.yaml bytes into a Graph, reporting a
// *ParseError for unparsable YAML and a *SchemaErrorList (aggregating every
// violation) for structurally-parsable-but-invalid documents.
func DecodeGraph(data []byte) (*planmodel.Graph, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(doc.Content) == 0 {
		return &planmodel.Graph{}, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return &planmodel.Graph{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Err: fmt.Errorf("plan.yaml root must be a mapping")}
	}

	var violations []planmodel.Violation
	g := &planmodel.Graph{}
	haveEpics := false

	for i := 0; i < len(root.Content)-1; i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]
		if !allowedTopLevelKeys[key.Value] {
			violations = append(violations, planmodel.Violation{
				Path: key.Value, Message: fmt.Sprintf("unknown top-level field %q", key.Value),
			})
			continue
		}
		switch key.Value {
		case "epics":
			haveEpics = true
			epics, v := decodeEpics(val)
			g.Epics = epics
			violations = append(violations, v...)
		case "blocked":
			blocked, v := decodeBlocked(val)
			g.Blocked = blocked
			violations = append(violations, v...)
		}
	}
	if !haveEpics {
		violations = append(violations, planmodel.Violation{Path: "epics", Message: "missing required field \"epics\""})
	}

	violations = append(violations, planmodel.Validate(g)...)

	if len(violations) > 0 {
		return nil, &SchemaErrorList{Violations: violations}
	}
	return g, nil
}

func decodeEpics(node *yaml.Node) ([]*planmodel.Epic, []planmodel.Violation) {
	var violations []planmodel.Violation
	if node.Kind != yaml.SequenceNode {
		return nil, append(violations, planmodel.Violation{Path: "epics", Message: "must be a sequence"})
	}
	epics := make([]*planmodel.Epic, 0, len(node.Content))
	for i, item := range node.Content {
		e, v := decodeEpic(item, i)
		violations = append(violations, v...)
		if e != nil {
			epics = append(epics, e)
		}
	}
	return nilIfEmpty(epics), violations
}

func decodeEpic(node *yaml.Node, idx int) (*planmodel.Epic, []planmodel.Violation) {
	path := fmt.Sprintf("epics[%d]", idx)
	var violations []planmodel.Violation
	if node.Kind != yaml.MappingNode {
		return nil, append(violations, planmodel.Violation{Path: path, Message: "epic must be a mapping"})
	}
	e := &planmodel.Epic{}
	haveID := false
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i]
		val := node.Content[i+1]
		if !allowedEpicKeys[key.Value] {
			violations = append(violations, planmodel.Violation{
				Path: path + "." + key.Value, Message: fmt.Sprintf("unknown field %q", key.Value),
			})
			continue
		}
		switch key.Value {
		case "id":
			e.ID = val.Value
			haveID = true
		case "name":
			e.Name = val.Value
		case "spec_path":
			e.SpecPath = val.Value
		case "status":
			e.Status = planmodel.Status(val.Value)
		case "worktree":
			if val.Tag != "!!null" {
				e.Worktree = val.Value
			}
		case "depends_on":
			deps, v := decodeStringSeq(val, path+".depends_on")
			e.DependsOn = deps
			violations = append(violations, v...)
		case "features":
			features, v := decodeFeatures(val, path)
			e.Features = features
			violations = append(violations, v...)
		}
	}
	if !haveID {
		violations = append(violations, planmodel.Violation{Path: path + ".id", Message: "missing required field \"id\""})
	}
	if e.Status == "" {
		violations = append(violations, planmodel.Violation{Path: path + ".status", Message: "missing required field \"status\""})
	}
	return e, violations
}

func decodeFeatures(node *yaml.Node, epicPath string) ([]*planmodel.Feature, []planmodel.Violation) {
	var violations []planmodel.Violation
	if node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, append(violations, planmodel.Violation{Path: epicPath + ".features", Message: "must be a sequence"})
	}
	features := make([]*planmodel.Feature, 0, len(node.Content))
	for i, item := range node.Content {
		f, v := decodeFeature(item, fmt.Sprintf("%s.features[%d]", epicPath, i))
		violations = append(violations, v...)
		if f != nil {
			features = append(features, f)
		}
	}
	return nilIfEmpty(features), violations
}

func decodeFeature(node *yaml.Node, path string) (*planmodel.Feature, []planmodel.Violation) {
	var violations []planmodel.Violation
	if node.Kind != yaml.MappingNode {
		return nil, append(violations, planmodel.Violation{Path: path, Message: "feature must be a mapping"})
	}
	f := &planmodel.Feature{}
	haveID := false
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i]
		val := node.Content[i+1]
		if !allowedFeatureKeys[key.Value] {
			violations = append(violations, planmodel.Violation{
				Path: path + "." + key.Value, Message: fmt.Sprintf("unknown field %q", key.Value),
			})
			continue
		}
		switch key.Value {
		case "id":
			f.ID = val.Value
			haveID = true
		case "name":
			f.Name = val.Value
		case "status":
			f.Status = planmodel.Status(val.Value)
		case "depends_on":
			deps, v := decodeStringSeq(val, path+".depends_on")
			f.DependsOn = deps
			violations = append(violations, v...)
		case "source_requirement":
			if val.Tag != "!!null" {
				f.SourceRequirement = val.Value
			}
		}
	}
	if !haveID {
		violations = append(violations, planmodel.Violation{Path: path + ".id", Message: "missing required field \"id\""})
	}
	if f.Status == "" {
		violations = append(violations, planmodel.Violation{Path: path + ".status", Message: "missing required field \"status\""})
	}
	return f, violations
}

func decodeStringSeq(node *yaml.Node, path string) ([]string, []planmodel.Violation) {
	if node.Tag == "!!null" {
		return nil, nil
	}
	var violations []planmodel.Violation
	if node.Kind != yaml.SequenceNode {
		return nil, append(violations, planmodel.Violation{Path: path, Message: "must be a sequence"})
	}
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		out = append(out, item.Value)
	}
	return nilIfEmpty(out), nil
}

func decodeBlocked(node *yaml.Node) ([]*planmodel.BlockedEntry, []planmodel.Violation) {
	var violations []planmodel.Violation
	if node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, append(violations, planmodel.Violation{Path: "blocked", Message: "must be a sequence"})
	}
	entries := make([]*planmodel.BlockedEntry, 0, len(node.Content))
	for i, item := range node.Content {
		entry, v := decodeBlockedEntry(item, fmt.Sprintf("blocked[%d]", i))
		violations = append(violations, v...)
		if entry != nil {
			entries = append(entries, entry)
		}
	}
	return nilIfEmpty(entries), violations
}

func decodeBlockedEntry(node *yaml.Node, path string) (*planmodel.BlockedEntry, []planmodel.Violation) {
	var violations []planmodel.Violation
	if node.Kind != yaml.MappingNode {
		return nil, append(violations, planmodel.Violation{Path: path, Message: "blocked entry must be a mapping"})
	}
	entry := &planmodel.BlockedEntry{}
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i]
		val := node.Content[i+1]
		if !allowedBlockedKeys[key.Value] {
			violations = append(violations, planmodel.Violation{
				Path: path + "." + key.Value, Message: fmt.Sprintf("unknown field %q", key.Value),
			})
			continue
		}
		switch key.Value {
		case "task_id":
			entry.TaskID = val.Value
		case "reason":
			entry.Reason = val.Value
		case "blocked_at":
			t, err := parseTimestamp(val.Value)
			if err != nil {
				violations = append(violations, planmodel.Violation{Path: path + ".blocked_at", Message: err.Error()})
			}
			entry.BlockedAt = t
		case "attempts":
			entry.Attempts = decodeAttempts(val)
		}
	}
	return entry, violations
}

// decodeAttempts tolerates unknown fields inside attempt records, unlike
// the strict key allowlists enforced everywhere else in the plan file.
func decodeAttempts(node *yaml.Node) []planmodel.Attempt {
	if node.Tag == "!!null" || node.Kind != yaml.SequenceNode {
		return nil
	}
	var out []planmodel.Attempt
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		var a planmodel.Attempt
		for i := 0; i < len(item.Content)-1; i += 2 {
			key := item.Content[i]
			val := item.Content[i+1]
			switch key.Value {
			case "attempt_at":
				t, _ := parseTimestamp(val.Value)
				a.AttemptAt = t
			case "action":
				a.Action = val.Value
			case "result":
				a.Result = val.Value
			}
		}
		out = append(out, a)
	}
	return nilIfEmpty(out)
}

const timestampLayout = time.RFC3339

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO-8601 UTC timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
