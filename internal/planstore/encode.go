package planstore

import (
	"strings"
	"time"

	"github.com/MBFrosty/planctl/internal/planmodel"
	"gopkg.in/yaml.v3"
)

// EncodeGraph serializes g deterministically: epics and blocked entries in
// document order, empty sequences as "[]", and quoting applied to any
// string scalar containing ':', '#', a quote character, a newline,
// leading/trailing space, or the empty string —.
func EncodeGraph(g *planmodel.Graph) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	root.Content = append(root.Content, scalarKey("epics"), encodeEpics(g.Epics))
	if len(g.Blocked) > 0 {
		root.Content = append(root.Content, scalarKey("blocked"), encodeBlocked(g.Blocked))
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	return yaml.Marshal(doc)
}

func scalarKey(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// scalarString builds a plain or quoted string scalar per the spec's
// quoting rule.
func scalarString(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if needsQuoting(s) {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if strings.ContainsAny(s, ":#\"'\n") {
		return true
	}
	if s != strings.TrimSpace(s) {
		return true
	}
	return false
}

func emptySeq() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
}

func encodeStringSeq(ids []string) *yaml.Node {
	if len(ids) == 0 {
		return emptySeq()
	}
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, id := range ids {
		n.Content = append(n.Content, scalarString(id))
	}
	return n
}

func encodeEpics(epics []*planmodel.Epic) *yaml.Node {
	if len(epics) == 0 {
		return emptySeq()
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range epics {
		m := &yaml.Node{Kind: yaml.MappingNode}
		m.Content = append(m.Content,
			scalarKey("id"), scalarString(e.ID),
			scalarKey("name"), scalarString(e.Name),
			scalarKey("spec_path"), scalarString(e.SpecPath),
			scalarKey("status"), scalarString(string(e.Status)),
		)
		if e.Worktree == "" {
			m.Content = append(m.Content, scalarKey("worktree"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
		} else {
			m.Content = append(m.Content, scalarKey("worktree"), scalarString(e.Worktree))
		}
		m.Content = append(m.Content, scalarKey("depends_on"), encodeStringSeq(e.DependsOn))
		m.Content = append(m.Content, scalarKey("features"), encodeFeatures(e.Features))
		seq.Content = append(seq.Content, m)
	}
	return seq
}

func encodeFeatures(features []*planmodel.Feature) *yaml.Node {
	if len(features) == 0 {
		return emptySeq()
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, f := range features {
		m := &yaml.Node{Kind: yaml.MappingNode}
		m.Content = append(m.Content,
			scalarKey("id"), scalarString(f.ID),
			scalarKey("name"), scalarString(f.Name),
			scalarKey("status"), scalarString(string(f.Status)),
			scalarKey("depends_on"), encodeStringSeq(f.DependsOn),
		)
		if f.SourceRequirement != "" {
			m.Content = append(m.Content, scalarKey("source_requirement"), scalarString(f.SourceRequirement))
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}

func encodeBlocked(entries []*planmodel.BlockedEntry) *yaml.Node {
	if len(entries) == 0 {
		return emptySeq()
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range entries {
		m := &yaml.Node{Kind: yaml.MappingNode}
		m.Content = append(m.Content,
			scalarKey("task_id"), scalarString(e.TaskID),
			scalarKey("reason"), scalarString(e.Reason),
			scalarKey("blocked_at"), scalarString(formatTimestamp(e.BlockedAt)),
			scalarKey("attempts"), encodeAttempts(e.Attempts),
		)
		seq.Content = append(seq.Content, m)
	}
	return seq
}

func encodeAttempts(attempts []planmodel.Attempt) *yaml.Node {
	if len(attempts) == 0 {
		return emptySeq()
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, a := range attempts {
		m := &yaml.Node{Kind: yaml.MappingNode}
		m.Content = append(m.Content,
			scalarKey("attempt_at"), scalarString(formatTimestamp(a.AttemptAt)),
			scalarKey("action"), scalarString(a.Action),
			scalarKey("result"), scalarString(a.Result),
		)
		seq.Content = append(seq.Content, m)
	}
	return seq
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
