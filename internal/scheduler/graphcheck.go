package scheduler

import (
	"context"
	"fmt"

	"github.com/gammazero/toposort"
)

// GraphReport summarizes a structural check of the blocker graph.
type GraphReport struct {
	// Order is a valid work order over all tasks referenced by edges:
	// blockers come before the tasks they block.
	Order []string
	// Orphans are edges with at least one endpoint that no longer exists.
	// They are harmless to the scheduler but worth surfacing.
	Orphans []Edge
}

// CheckGraph validates that the blocker graph is acyclic and reports orphan
// edges. A cycle is returned as *CycleError; the scheduler itself survives
// cycles, but a cyclic graph means no suggestion can ever reach a leaf inside
// it.
func (e *Engine) CheckGraph(ctx context.Context) (*GraphReport, error) {
	edges, err := e.graph.Edges(ctx)
	if err != nil {
		return nil, err
	}
	byID, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	report := &GraphReport{}
	var sortable []toposort.Edge
	for _, edge := range edges {
		_, haveBlocked := byID[edge.Blocked]
		_, haveBlocker := byID[edge.Blocker]
		if !haveBlocked || !haveBlocker {
			report.Orphans = append(report.Orphans, edge)
			continue
		}
		// toposort orders source before destination; the blocker must
		// come first.
		sortable = append(sortable, toposort.Edge{edge.Blocker, edge.Blocked})
	}

	order, err := toposort.Toposort(sortable)
	if err != nil {
		return nil, &CycleError{Path: cycleIDs(edges, byID)}
	}
	report.Order = make([]string, 0, len(order))
	for _, v := range order {
		report.Order = append(report.Order, fmt.Sprint(v))
	}
	return report, nil
}

// cycleIDs recovers the ids involved in a cycle by walking each live edge
// with the same visited-set logic the resolver uses. Best effort: when the
// walk cannot pin the cycle down it returns every live id so the report still
// names candidates.
func cycleIDs(edges []Edge, byID map[string]*Task) []string {
	blockers := map[string][]string{}
	for _, e := range edges {
		if _, ok := byID[e.Blocked]; !ok {
			continue
		}
		if _, ok := byID[e.Blocker]; !ok {
			continue
		}
		blockers[e.Blocked] = append(blockers[e.Blocked], e.Blocker)
	}

	for start := range blockers {
		if path := findCycle(start, blockers, map[string]bool{}, nil); path != nil {
			return path
		}
	}

	ids := make([]string, 0, len(blockers))
	for id := range blockers {
		ids = append(ids, id)
	}
	return ids
}

func findCycle(id string, blockers map[string][]string, visiting map[string]bool, path []string) []string {
	if visiting[id] {
		return append(path, id)
	}
	visiting[id] = true
	path = append(path, id)
	for _, b := range blockers[id] {
		if cycle := findCycle(b, blockers, visiting, path); cycle != nil {
			return cycle
		}
	}
	visiting[id] = false
	return nil
}
