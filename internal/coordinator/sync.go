package coordinator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MBFrosty/planctl/internal/marker"
	"github.com/MBFrosty/planctl/internal/planconfig"
	"github.com/MBFrosty/planctl/internal/planerrors"
	"github.com/MBFrosty/planctl/internal/planmodel"
)

const (
	DirectionFromBase = "from-base"
	DirectionToBase   = "to-base"
	DirectionBoth     = "both"
	DirectionScan     = "scan"
)

// ScanUpdate is one epic whose base status was corrected to match its
// worktree marker during a scan sync.
type ScanUpdate struct {
	EpicID    string
	OldStatus string
	NewStatus string
}

// SyncResult reports what a Sync call actually did.
type SyncResult struct {
	Direction string
	Scanned   int
	Updates   []ScanUpdate
}

// Sync runs the bidirectional sync protocol, auto-detecting direction
// when none is supplied.
func (c *Coordinator) Sync(ctx context.Context, direction string) (*SyncResult, error) {
	if marker.Exists(c.ProjectRoot) {
		return c.syncFromWorktree(ctx, direction)
	}
	return c.syncFromBase(ctx, direction)
}

func (c *Coordinator) syncFromWorktree(ctx context.Context, direction string) (*SyncResult, error) {
	if direction == "" {
		direction = DirectionBoth
	}
	switch direction {
	case DirectionFromBase, DirectionToBase, DirectionBoth:
	case DirectionScan:
		return nil, &planerrors.DirectionMismatchError{Direction: direction, Location: "worktree"}
	default:
		return nil, &planerrors.InvalidInputError{Detail: fmt.Sprintf("unrecognized sync direction %q", direction)}
	}

	m, err := marker.Read(c.ProjectRoot)
	if err != nil {
		return nil, &planerrors.NotAWorktreeError{ProjectRoot: c.ProjectRoot}
	}
	baseRoot, err := c.resolveBaseRoot(ctx)
	if err != nil {
		return nil, err
	}
	base := &Coordinator{ProjectRoot: baseRoot, Git: c.Git, LockOptions: c.LockOptions}

	if direction == DirectionFromBase || direction == DirectionBoth {
		g, err := base.load()
		if err != nil {
			return nil, err
		}
		epic := g.EpicByID(m.Epic)
		if epic == nil {
			return nil, &planerrors.NotFoundError{Kind: "epic", IDs: []string{m.Epic}}
		}
		m.Synced = composeSynced(g, epic)
		if err := marker.Write(c.ProjectRoot, m); err != nil {
			return nil, fmt.Errorf("writing marker: %w", err)
		}
	}

	if direction == DirectionToBase || direction == DirectionBoth {
		err := base.withLock(func() error {
			g, err := base.load()
			if err != nil {
				return err
			}
			epic := g.EpicByID(m.Epic)
			if epic == nil {
				return &planerrors.NotFoundError{Kind: "epic", IDs: []string{m.Epic}}
			}
			if string(epic.Status) != m.Local.Status {
				epic.Status = planmodel.Status(m.Local.Status)
				return base.save(g)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return &SyncResult{Direction: direction}, nil
}

func (c *Coordinator) syncFromBase(ctx context.Context, direction string) (*SyncResult, error) {
	if direction == "" {
		direction = DirectionScan
	}
	if direction != DirectionScan {
		return nil, &planerrors.DirectionMismatchError{Direction: direction, Location: "base"}
	}

	result := &SyncResult{Direction: DirectionScan}
	err := c.withLock(func() error {
		g, err := c.load()
		if err != nil {
			return err
		}

		worktreesDir := planconfig.WorktreesDir(c.ProjectRoot)
		entries, rerr := os.ReadDir(worktreesDir)
		if rerr != nil {
			if os.IsNotExist(rerr) {
				return nil
			}
			return fmt.Errorf("scanning worktrees: %w", rerr)
		}

		changed := false
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			worktreePath := worktreesDir + string(os.PathSeparator) + entry.Name()
			if !marker.Exists(worktreePath) {
				continue
			}
			m, rerr := marker.Read(worktreePath)
			if rerr != nil {
				continue
			}
			result.Scanned++

			epic := g.EpicByID(m.Epic)
			if epic == nil {
				continue
			}
			if string(epic.Status) == m.Local.Status {
				continue
			}
			result.Updates = append(result.Updates, ScanUpdate{
				EpicID:    epic.ID,
				OldStatus: string(epic.Status),
				NewStatus: m.Local.Status,
			})
			epic.Status = planmodel.Status(m.Local.Status)
			changed = true
		}

		if changed {
			return c.save(g)
		}
		return nil
	})
	return result, err
}

// composeSynced builds the marker's synced block from the base graph's
// view of the epic: its dependencies' statuses, its dependents, which of
// its dependencies are not yet completed, and its own status.
func composeSynced(g *planmodel.Graph, epic *planmodel.Epic) *marker.Synced {
	deps := make(map[string]string)
	for _, id := range epic.DependsOn {
		if dep := g.EpicByID(id); dep != nil {
			deps[id] = string(dep.Status)
		}
	}

	var dependents []string
	for _, e := range g.Epics {
		for _, dep := range e.DependsOn {
			if dep == epic.ID {
				dependents = append(dependents, e.ID)
				break
			}
		}
	}

	var blockedBy []string
	for _, id := range epic.DependsOn {
		if status, ok := deps[id]; ok && status != string(planmodel.StatusCompleted) {
			blockedBy = append(blockedBy, id)
		}
	}

	return &marker.Synced{
		LastSync:     time.Now().UTC(),
		Dependencies: deps,
		Dependents:   dependents,
		BlockedBy:    blockedBy,
		DAGStatus:    string(epic.Status),
	}
}
