package scheduler

import (
	"context"
	"sort"
)

// SuggestNext picks the single task to work on next, or nil when no task is
// eligible.
//
// Delivered tasks take absolute precedence: verification of finished work
// outranks new work, and a delivered task is past its blockers so the
// resolver is skipped entirely. Otherwise the highest-priority open task is
// chosen and, if blocked, substituted by its own best open blocker until an
// actionable leaf is reached.
func (e *Engine) SuggestNext(ctx context.Context) (*Task, error) {
	byID, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var delivered, open []*Task
	for _, t := range byID {
		switch t.Status {
		case StatusDelivered:
			delivered = append(delivered, t)
		case StatusOpen:
			open = append(open, t)
		}
	}

	if len(delivered) > 0 {
		return Best(delivered), nil
	}
	if len(open) == 0 {
		return nil, nil
	}
	return e.resolve(ctx, Best(open), byID)
}

// resolve walks from a candidate down its blocker tree to an actionable task.
// A task is actionable when none of its blockers is open; claimed, delivered,
// done, and deleted blockers do not block. Each step substitutes the current
// candidate by the highest-priority open blocker. The walk tracks visited ids
// and reports a cycle instead of looping.
func (e *Engine) resolve(ctx context.Context, candidate *Task, byID map[string]*Task) (*Task, error) {
	visited := map[string]bool{}
	path := []string{}

	for {
		if visited[candidate.ID] {
			return nil, &CycleError{Path: append(path, candidate.ID)}
		}
		visited[candidate.ID] = true
		path = append(path, candidate.ID)

		open, err := e.openBlockers(ctx, candidate.ID, byID)
		if err != nil {
			return nil, err
		}
		if len(open) == 0 {
			return candidate, nil
		}

		next := Best(open)
		if next == nil {
			return nil, &InvariantError{ID: candidate.ID}
		}
		candidate = next
	}
}

// openBlockers returns the blockers of id that exist and are still open,
// sorted by id. Edges pointing at deleted tasks are ignored.
func (e *Engine) openBlockers(ctx context.Context, id string, byID map[string]*Task) ([]*Task, error) {
	ids, err := e.graph.BlockersOf(ctx, id)
	if err != nil {
		return nil, err
	}
	var open []*Task
	for _, bid := range ids {
		t, ok := byID[bid]
		if !ok {
			continue
		}
		if t.Status == StatusOpen {
			open = append(open, t)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })
	return open, nil
}
