package scheduler

import (
	"context"
	"sync"
)

// memRepo is an in-memory Repository for engine tests.
type memRepo struct {
	mu    sync.Mutex
	tasks map[string]*Task
}

func newMemRepo(tasks ...*Task) *memRepo {
	r := &memRepo{tasks: map[string]*Task{}}
	for _, t := range tasks {
		r.tasks[t.ID] = t.Clone()
	}
	return r
}

func (r *memRepo) LoadAll(ctx context.Context) ([]*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (r *memRepo) Load(ctx context.Context, id string) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return t.Clone(), nil
}

func (r *memRepo) Save(ctx context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(r.tasks, id)
	return nil
}

// memGraph is an in-memory BlockerGraph for engine tests.
type memGraph struct {
	mu    sync.Mutex
	edges []Edge
}

func newMemGraph(edges ...Edge) *memGraph {
	return &memGraph{edges: edges}
}

func (g *memGraph) BlockersOf(ctx context.Context, id string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, e := range g.edges {
		if e.Blocked == id {
			out = append(out, e.Blocker)
		}
	}
	return out, nil
}

func (g *memGraph) BlockedBy(ctx context.Context, id string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, e := range g.edges {
		if e.Blocker == id {
			out = append(out, e.Blocked)
		}
	}
	return out, nil
}

func (g *memGraph) AddEdge(ctx context.Context, blocked, blocker string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges = append(g.edges, Edge{Blocked: blocked, Blocker: blocker})
	return nil
}

func (g *memGraph) RemoveEdge(ctx context.Context, blocked, blocker string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, e := range g.edges {
		if e.Blocked == blocked && e.Blocker == blocker {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return nil
		}
	}
	return &EdgeNotFoundError{Blocked: blocked, Blocker: blocker}
}

func (g *memGraph) Edges(ctx context.Context) ([]Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Edge(nil), g.edges...), nil
}

// memPainLog records appended entries.
type memPainLog struct {
	mu      sync.Mutex
	entries []PainEntry
}

func (l *memPainLog) Append(ctx context.Context, entry PainEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func open(id, title string, pain int) *Task {
	return &Task{ID: id, Status: StatusOpen, Title: title, Acceptance: "it works", Pain: pain}
}

func withStatus(t *Task, s Status) *Task {
	c := t.Clone()
	c.Status = s
	return c
}
