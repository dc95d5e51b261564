// Package marker reads and writes the per-worktree marker file
// (.epic-marker). Its presence at a project root is the "am I in a
// worktree?" sentinel used throughout the coordinator. Like planstore, it
// decodes via gopkg.in/yaml.v3's Node API rather than a typed Unmarshal so
// that an absent "synced" block is unambiguous from an empty one.
package marker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the marker's name inside a worktree.
const FileName = ".epic-marker"

// Local is the marker's worktree-local, lock-free lifecycle view.
type Local struct {
	Status    string
	StartedAt time.Time
}

// Synced is the last-seen snapshot of base-side state, refreshed by sync.
// A nil *Synced (as opposed to a zero value) means "never synced".
type Synced struct {
	LastSync     time.Time
	Dependencies map[string]string // epic id -> status
	Dependents   []string
	BlockedBy    []string
	DAGStatus    string
}

// Marker is one worktree's identity and last-seen state.
type Marker struct {
	Epic         string
	BaseWorktree string
	BaseBranch   string
	Local        Local
	Synced       *Synced
}

// Path returns the marker file path inside worktreePath.
func Path(worktreePath string) string {
	return filepath.Join(worktreePath, FileName)
}

// Exists reports whether worktreePath contains a marker file — the
// "am I in a worktree?" check used throughout the coordinator.
func Exists(worktreePath string) bool {
	_, err := os.Stat(Path(worktreePath))
	return err == nil
}

const timestampLayout = time.RFC3339

// Read parses the marker file at worktreePath. Readers must tolerate an
// absent "synced" block: Marker.Synced is nil in that case.
func Read(worktreePath string) (*Marker, error) {
	data, err := os.ReadFile(Path(worktreePath))
	if err != nil {
		return nil, fmt.Errorf("reading marker: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*Marker, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing marker: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("empty marker file")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("marker root must be a mapping")
	}

	m := &Marker{}
	for i := 0; i < len(root.Content)-1; i += 2 {
		key := root.Content[i].Value
		val := root.Content[i+1]
		switch key {
		case "epic":
			m.Epic = val.Value
		case "base_worktree":
			m.BaseWorktree = val.Value
		case "base_branch":
			m.BaseBranch = val.Value
		case "local":
			m.Local = decodeLocal(val)
		case "synced":
			m.Synced = decodeSynced(val)
		}
	}
	return m, nil
}

func decodeLocal(node *yaml.Node) Local {
	var l Local
	if node.Kind != yaml.MappingNode {
		return l
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "status":
			l.Status = val.Value
		case "started_at":
			t, _ := time.Parse(timestampLayout, val.Value)
			l.StartedAt = t.UTC()
		}
	}
	return l
}

func decodeSynced(node *yaml.Node) *Synced {
	if node.Tag == "!!null" || node.Kind != yaml.MappingNode {
		return nil
	}
	s := &Synced{Dependencies: map[string]string{}}
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "last_sync":
			t, _ := time.Parse(timestampLayout, val.Value)
			s.LastSync = t.UTC()
		case "dependencies":
			if val.Kind == yaml.MappingNode {
				for j := 0; j < len(val.Content)-1; j += 2 {
					s.Dependencies[val.Content[j].Value] = val.Content[j+1].Value
				}
			}
		case "dependents":
			s.Dependents = decodeStrSeq(val)
		case "blocked_by":
			s.BlockedBy = decodeStrSeq(val)
		case "dag_status":
			s.DAGStatus = val.Value
		}
	}
	return s
}

func decodeStrSeq(node *yaml.Node) []string {
	if node.Tag == "!!null" || node.Kind != yaml.SequenceNode || len(node.Content) == 0 {
		return nil
	}
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		out = append(out, item.Value)
	}
	return out
}

// Write serializes m deterministically to the marker file at worktreePath.
func Write(worktreePath string, m *Marker) error {
	data, err := encode(m)
	if err != nil {
		return fmt.Errorf("encoding marker: %w", err)
	}
	path := Path(worktreePath)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing marker: %w", err)
	}
	return os.Rename(tmp, path)
}

func encode(m *Marker) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	str := func(s string) *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s} }

	root.Content = append(root.Content,
		str("epic"), str(m.Epic),
		str("base_worktree"), str(m.BaseWorktree),
		str("base_branch"), str(m.BaseBranch),
		str("local"), encodeLocal(m.Local),
	)
	if m.Synced == nil {
		root.Content = append(root.Content, str("synced"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
	} else {
		root.Content = append(root.Content, str("synced"), encodeSynced(m.Synced))
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	return yaml.Marshal(doc)
}

func encodeLocal(l Local) *yaml.Node {
	str := func(s string) *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s} }
	n := &yaml.Node{Kind: yaml.MappingNode}
	n.Content = append(n.Content,
		str("status"), str(l.Status),
		str("started_at"), str(formatTime(l.StartedAt)),
	)
	return n
}

func encodeSynced(s *Synced) *yaml.Node {
	str := func(v string) *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v} }
	n := &yaml.Node{Kind: yaml.MappingNode}

	deps := &yaml.Node{Kind: yaml.MappingNode}
	for _, id := range sortedKeys(s.Dependencies) {
		deps.Content = append(deps.Content, str(id), str(s.Dependencies[id]))
	}
	if len(deps.Content) == 0 {
		deps.Style = yaml.FlowStyle
	}

	n.Content = append(n.Content,
		str("last_sync"), str(formatTime(s.LastSync)),
		str("dependencies"), deps,
		str("dependents"), encodeStrSeq(s.Dependents),
		str("blocked_by"), encodeStrSeq(s.BlockedBy),
		str("dag_status"), str(s.DAGStatus),
	)
	return n
}

func encodeStrSeq(ids []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, id := range ids {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: id})
	}
	if len(n.Content) == 0 {
		n.Style = yaml.FlowStyle
	}
	return n
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
