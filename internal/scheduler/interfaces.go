package scheduler

import (
	"context"
	"time"
)

// Repository is the persistence interface for task records. Implementations
// return *NotFoundError for missing ids and surface storage failures
// unchanged; the engine never retries.
type Repository interface {
	LoadAll(ctx context.Context) ([]*Task, error)
	Load(ctx context.Context, id string) (*Task, error)
	Save(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id string) error
}

// Edge is a directed blocker relationship: Blocked must not be started while
// Blocker is not yet done.
type Edge struct {
	Blocked string
	Blocker string
}

// BlockerGraph is the edge-set interface. Edges referencing deleted tasks are
// valid graph content; readers tolerate and ignore them.
type BlockerGraph interface {
	// BlockersOf returns ids of tasks that must complete before id.
	BlockersOf(ctx context.Context, id string) ([]string, error)
	// BlockedBy returns ids of tasks waiting on id.
	BlockedBy(ctx context.Context, id string) ([]string, error)
	AddEdge(ctx context.Context, blocked, blocker string) error
	// RemoveEdge returns *EdgeNotFoundError when the relationship does not exist.
	RemoveEdge(ctx context.Context, blocked, blocker string) error
	Edges(ctx context.Context) ([]Edge, error)
}

// PainSource identifies what produced a pain entry.
type PainSource string

const (
	PainSourceReport PainSource = "report" // explicit `knecht pain`
	PainSourceSkip   PainSource = "skip"   // skip penalty on completion
	PainSourceImport PainSource = "import" // external importer (e.g. Sentry)
)

// PainEntry is one record in the append-only friction audit trail. The
// scheduling algorithms never read these; only the aggregate Task.Pain
// counts.
type PainEntry struct {
	ID          string
	TaskID      string
	At          time.Time
	Source      PainSource
	Description string
}

// PainLog is the write-only audit sink for pain entries.
type PainLog interface {
	Append(ctx context.Context, entry PainEntry) error
}
