package planstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MBFrosty/planctl/internal/planmodel"
)

// PlanFileName is the on-disk name of the plan file at a project root.
const PlanFileName = "plan.yaml"

// NotFoundError means plan.yaml does not exist at the given project root.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("plan file not found: %s", e.Path) }

// Path returns the plan.yaml path for a project root.
func Path(projectRoot string) string {
	return filepath.Join(projectRoot, PlanFileName)
}

// Load reads and validates plan.yaml at projectRoot.
func Load(projectRoot string) (*planmodel.Graph, error) {
	path := Path(projectRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return DecodeGraph(data)
}

// Save serializes g deterministically and writes it to plan.yaml at
// projectRoot. Callers must hold the project lock before calling Save —
// the Plan Store itself does not acquire one.
func Save(projectRoot string, g *planmodel.Graph) error {
	data, err := EncodeGraph(g)
	if err != nil {
		return fmt.Errorf("encoding plan file: %w", err)
	}
	path := Path(projectRoot)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing plan file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalizing plan file: %w", err)
	}
	return nil
}
