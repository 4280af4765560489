package scheduler

import "fmt"

// Status is the lifecycle state of a task. It is a closed enumeration: the
// store rejects records with any other value.
type Status string

const (
	StatusOpen      Status = "open"      // initial
	StatusClaimed   Status = "claimed"   // an agent is working on it
	StatusDelivered Status = "delivered" // finished, awaiting verification
	StatusDone      Status = "done"      // terminal
)

// ParseStatus converts a raw status string into a Status.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusOpen, StatusClaimed, StatusDelivered, StatusDone:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// Closed reports whether the task no longer needs work.
func (s Status) Closed() bool {
	return s == StatusDelivered || s == StatusDone
}

// String returns the display string.
func (s Status) String() string {
	return string(s)
}

// Task is a unit of work.
type Task struct {
	ID          string // short alphanumeric, unique, immutable
	Status      Status
	Title       string
	Description string // append-only in practice: skip notes and pain notes are concatenated on
	Acceptance  string // acceptance criteria defining "done"
	Pain        int    // friction score, never decremented
}

// MarkClaimed transitions the task to claimed. The transition itself is
// unconditional; the blocker and acceptance-criteria guards live in the
// engine, not the state machine.
func (t *Task) MarkClaimed() {
	t.Status = StatusClaimed
}

// MarkDelivered transitions the task to delivered. Fails if the task is
// already delivered or done.
func (t *Task) MarkDelivered() error {
	switch t.Status {
	case StatusDelivered:
		return &AlreadyDeliveredError{ID: t.ID}
	case StatusDone:
		return &AlreadyDoneError{ID: t.ID}
	}
	t.Status = StatusDelivered
	return nil
}

// MarkDone transitions the task to done. Done is terminal: completing a done
// task fails, and nothing transitions out of done. Completion is allowed
// directly from open or claimed without passing through delivered.
func (t *Task) MarkDone() error {
	if t.Status == StatusDone {
		return &AlreadyDoneError{ID: t.ID}
	}
	t.Status = StatusDone
	return nil
}

// AppendNote concatenates a note onto the description, preserving prior
// content.
func (t *Task) AppendNote(note string) {
	if t.Description == "" {
		t.Description = note
		return
	}
	t.Description += "\n" + note
}

// Clone returns a copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
