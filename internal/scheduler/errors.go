package scheduler

import (
	"fmt"
	"strings"
)

// NotFoundError indicates an operation referenced a task id that is absent
// from the repository.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.ID)
}

// AlreadyDoneError indicates an invalid transition on a done (terminal) task.
type AlreadyDoneError struct {
	ID string
}

func (e *AlreadyDoneError) Error() string {
	return fmt.Sprintf("task %s is already done", e.ID)
}

// AlreadyDeliveredError indicates a repeated deliver transition.
type AlreadyDeliveredError struct {
	ID string
}

func (e *AlreadyDeliveredError) Error() string {
	return fmt.Sprintf("task %s is already delivered", e.ID)
}

// BlockedError indicates a claim was attempted while open blockers remain.
// Blockers carries every currently-open blocking id so the caller can present
// them.
type BlockedError struct {
	ID       string
	Blockers []string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("cannot start task %s: blocked by %s", e.ID, strings.Join(e.Blockers, ", "))
}

// MissingCriteriaError indicates a claim was attempted on a task with no
// acceptance criteria.
type MissingCriteriaError struct {
	ID string
}

func (e *MissingCriteriaError) Error() string {
	return fmt.Sprintf("cannot start task %s: no acceptance criteria defined", e.ID)
}

// EdgeNotFoundError indicates a remove-edge referenced a blocker
// relationship that does not exist.
type EdgeNotFoundError struct {
	Blocked string
	Blocker string
}

func (e *EdgeNotFoundError) Error() string {
	return fmt.Sprintf("task %s is not blocked by %s", e.Blocked, e.Blocker)
}

// CycleError indicates the blocker walk revisited a task. The graph is never
// validated on write, so a cyclic graph is representable; the walk detects it
// instead of recursing forever.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("blocker cycle detected: %s", strings.Join(e.Path, " -> "))
}

// InvariantError is the defensive error for a candidate that was judged
// non-actionable yet yielded no open blockers. It must not occur with a
// well-formed graph, but is reported rather than crashing.
type InvariantError struct {
	ID string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("task %s is not actionable but has no open blockers", e.ID)
}
