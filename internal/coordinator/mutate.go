package coordinator

import (
	"time"

	"github.com/MBFrosty/planctl/internal/planerrors"
	"github.com/MBFrosty/planctl/internal/planmodel"
)

// Complete marks the task identified by id as completed. If it is a
// Feature and every sibling Feature in its Epic is now completed, the
// owning Epic is completed too.
func (c *Coordinator) Complete(id string) error {
	return c.withLock(func() error {
		g, err := c.load()
		if err != nil {
			return err
		}
		task := planmodel.TaskByID(g, id)
		if task == nil {
			return &planerrors.NotFoundError{Kind: "task", IDs: []string{id}}
		}
		task.SetStatus(planmodel.StatusCompleted)

		if f, ok := task.(*planmodel.Feature); ok {
			if epic := planmodel.OwningEpic(g, f.ID); epic != nil && allFeaturesCompleted(epic) {
				epic.SetStatus(planmodel.StatusCompleted)
			}
		}
		return c.save(g)
	})
}

func allFeaturesCompleted(e *planmodel.Epic) bool {
	for _, f := range e.Features {
		if f.Status != planmodel.StatusCompleted {
			return false
		}
	}
	return len(e.Features) > 0
}

// Block marks the task identified by id as blocked and appends a
// BlockedEntry recording reason. Blocking an already-blocked task does
// not create a duplicate entry: it appends a "re-block" attempt to the
// existing entry instead, and updates the entry's reason.
func (c *Coordinator) Block(id, reason string) error {
	return c.withLock(func() error {
		g, err := c.load()
		if err != nil {
			return err
		}
		task := planmodel.TaskByID(g, id)
		if task == nil {
			return &planerrors.NotFoundError{Kind: "task", IDs: []string{id}}
		}
		now := time.Now().UTC()

		if existing := g.BlockedEntryFor(id); existing != nil {
			existing.Attempts = append(existing.Attempts, planmodel.Attempt{
				AttemptAt: now,
				Action:    "re-block",
				Result:    "reason updated: " + reason,
			})
			existing.Reason = reason
		} else {
			g.Blocked = append(g.Blocked, &planmodel.BlockedEntry{
				TaskID:    id,
				Reason:    reason,
				BlockedAt: now,
			})
		}
		task.SetStatus(planmodel.StatusBlocked)
		return c.save(g)
	})
}
