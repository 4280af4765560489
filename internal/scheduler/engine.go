package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine implements the scheduling operations over injected collaborators.
// It is single-invocation by design: every operation reads the task set it
// needs, computes, and writes back the affected records. Nothing in here
// coordinates concurrent invocations.
type Engine struct {
	repo  Repository
	graph BlockerGraph
	pain  PainLog // optional audit sink; nil disables it
	log   *slog.Logger
}

// New creates an engine. painLog may be nil.
func New(repo Repository, graph BlockerGraph, painLog PainLog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{repo: repo, graph: graph, pain: painLog, log: logger}
}

// Add creates a new open task. Title and acceptance criteria are required;
// the original workflow refuses undefined work, so tasks without criteria
// cannot be created (imported records are the exception).
func (e *Engine) Add(ctx context.Context, title, description, acceptance string) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("title is required")
	}
	if strings.TrimSpace(acceptance) == "" {
		return nil, errors.New("acceptance criteria are required (use -a)")
	}

	id, err := e.uniqueID(ctx)
	if err != nil {
		return nil, err
	}

	task := &Task{
		ID:          id,
		Status:      StatusOpen,
		Title:       title,
		Description: description,
		Acceptance:  acceptance,
	}
	if err := e.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}
	e.log.Debug("task created", "id", id, "title", title)
	return task, nil
}

// uniqueID draws random ids until one misses the repository. Random
// generation offers no absolute guarantee, so collisions are checked rather
// than assumed away.
func (e *Engine) uniqueID(ctx context.Context) (string, error) {
	for {
		id := NewID()
		_, err := e.repo.Load(ctx, id)
		if err == nil {
			continue
		}
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return id, nil
		}
		return "", fmt.Errorf("checking id collision: %w", err)
	}
}

// Get returns a single task.
func (e *Engine) Get(ctx context.Context, id string) (*Task, error) {
	return e.repo.Load(ctx, id)
}

// List returns tasks sorted by id. Delivered and done tasks are filtered out
// unless includeClosed is set.
func (e *Engine) List(ctx context.Context, includeClosed bool) ([]*Task, error) {
	tasks, err := e.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := tasks[:0]
	for _, t := range tasks {
		if !includeClosed && t.Status.Closed() {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update edits title, description, or acceptance criteria. Nil fields are
// left alone; a pointer to the empty string clears description or acceptance.
// Status and pain count are never touched.
func (e *Engine) Update(ctx context.Context, id string, title, description, acceptance *string) (*Task, error) {
	if title == nil && description == nil && acceptance == nil {
		return nil, errors.New("nothing to update: provide a title, description, or acceptance criteria")
	}
	task, err := e.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		if strings.TrimSpace(*title) == "" {
			return nil, errors.New("title cannot be empty")
		}
		task.Title = *title
	}
	if description != nil {
		task.Description = *description
	}
	if acceptance != nil {
		task.Acceptance = *acceptance
	}
	if err := e.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}
	return task, nil
}

// Delete removes the task record. Blocker edges referencing the id are left
// behind on purpose: they become orphans, which every reader tolerates.
func (e *Engine) Delete(ctx context.Context, id string) error {
	return e.repo.Delete(ctx, id)
}

// Block records that blocked must not start until blocker is done. Both
// endpoints must exist at creation time (they may be deleted later).
func (e *Engine) Block(ctx context.Context, blocked, blocker string) error {
	if _, err := e.repo.Load(ctx, blocked); err != nil {
		return err
	}
	if _, err := e.repo.Load(ctx, blocker); err != nil {
		return err
	}
	return e.graph.AddEdge(ctx, blocked, blocker)
}

// Unblock removes a blocker relationship.
func (e *Engine) Unblock(ctx context.Context, blocked, blocker string) error {
	return e.graph.RemoveEdge(ctx, blocked, blocker)
}

// Blockers returns the still-existing tasks blocking id, whatever their
// status. Orphan edges are skipped.
func (e *Engine) Blockers(ctx context.Context, id string) ([]*Task, error) {
	ids, err := e.graph.BlockersOf(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []*Task
	for _, bid := range ids {
		t, err := e.repo.Load(ctx, bid)
		if err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return nil, err
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Claim transitions a task to claimed. It fails when the task has no
// acceptance criteria or when any of its blockers is still open; deleted and
// closed blockers do not count.
func (e *Engine) Claim(ctx context.Context, id string) (*Task, error) {
	task, err := e.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(task.Acceptance) == "" {
		return nil, &MissingCriteriaError{ID: id}
	}

	byID, err := e.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	open, err := e.openBlockers(ctx, id, byID)
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		ids := make([]string, len(open))
		for i, b := range open {
			ids[i] = b.ID
		}
		sort.Strings(ids)
		return nil, &BlockedError{ID: id, Blockers: ids}
	}

	task.MarkClaimed()
	if err := e.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}
	e.log.Debug("task claimed", "id", id)
	return task, nil
}

// Deliver transitions a task to delivered (awaiting verification).
func (e *Engine) Deliver(ctx context.Context, id string) (*Task, error) {
	task, err := e.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := task.MarkDelivered(); err != nil {
		return nil, err
	}
	if err := e.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}
	return task, nil
}

// Complete transitions a task to done and applies the skip penalty.
//
// The head of queue is computed from the repository state before the
// completing task's own status changes, so a task that is itself the head
// never penalizes anyone. The penalty and the completion are two independent
// writes derived from that one immutable snapshot.
func (e *Engine) Complete(ctx context.Context, id string) (*Task, error) {
	tasks, err := e.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var task *Task
	for _, t := range tasks {
		if t.ID == id {
			task = t
			break
		}
	}
	if task == nil {
		return nil, &NotFoundError{ID: id}
	}

	head := headOfQueue(tasks)

	if err := task.MarkDone(); err != nil {
		return nil, err
	}

	if head != nil && head.ID != task.ID {
		head.Pain++
		// The display prefix is part of the note's message text, so it is
		// baked in here rather than added at presentation time.
		head.AppendNote(fmt.Sprintf("Skip: task-%s completed instead", task.ID))
		if err := e.repo.Save(ctx, head); err != nil {
			return nil, fmt.Errorf("recording skip penalty: %w", err)
		}
		e.recordPain(ctx, head.ID, PainSourceSkip, fmt.Sprintf("%s completed instead", task.ID))
		e.log.Debug("skip penalty applied", "head", head.ID, "completed", task.ID)
	}

	if err := e.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}
	return task, nil
}

// AddPain increments a task's pain count and appends the report to its
// description.
func (e *Engine) AddPain(ctx context.Context, id, note string) (*Task, error) {
	task, err := e.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Pain++
	if note != "" {
		task.AppendNote(note)
	}
	if err := e.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("saving task: %w", err)
	}
	e.recordPain(ctx, id, PainSourceReport, note)
	return task, nil
}

// recordPain appends to the audit trail. The trail is advisory: a failed
// append is logged and otherwise ignored so the primary write still counts.
func (e *Engine) recordPain(ctx context.Context, taskID string, source PainSource, description string) {
	if e.pain == nil {
		return
	}
	entry := PainEntry{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		At:          time.Now().UTC(),
		Source:      source,
		Description: description,
	}
	if err := e.pain.Append(ctx, entry); err != nil {
		e.log.Warn("failed to append pain entry", "task", taskID, "error", err)
	}
}

// snapshot loads every task indexed by id.
func (e *Engine) snapshot(ctx context.Context) (map[string]*Task, error) {
	tasks, err := e.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	return byID, nil
}
