// Package store persists tasks, blocker edges, and the pain audit trail as
// plain files under a .knecht directory. The formats are line-oriented and
// diff-friendly so the data can live in the repository it describes.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/njbennett/knecht/internal/scheduler"
)

const (
	// DirName is the data directory created by Init, relative to the
	// project root.
	DirName = ".knecht"

	tasksDirName    = "tasks"
	blockersName    = "blockers"
	painLogName     = "pain"
	legacyBackup    = "tasks.bak"
	loadConcurrency = 8
)

// ErrNotInitialized is returned by Open when no data directory exists.
var ErrNotInitialized = errors.New("no .knecht directory found (run `knecht init` first)")

// FileStore is the file-backed task repository. One file per task under
// .knecht/tasks/, named by task id.
type FileStore struct {
	dir   string // the .knecht directory
	tasks string // the tasks subdirectory
	log   *slog.Logger
}

// Open attaches to an existing data directory. It migrates the legacy
// single-file layout in place when it finds one.
func Open(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("checking data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s exists but is not a directory", dir)
	}

	s := &FileStore{dir: dir, tasks: filepath.Join(dir, tasksDirName), log: logger}
	if err := s.migrateLegacy(); err != nil {
		return nil, fmt.Errorf("migrating legacy task file: %w", err)
	}
	if err := os.MkdirAll(s.tasks, 0o755); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}
	return s, nil
}

// Init creates a fresh data directory. It is idempotent.
func Init(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, tasksDirName), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return Open(dir, logger)
}

// Dir returns the data directory path.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) taskPath(id string) string {
	return filepath.Join(s.tasks, id)
}

// LoadAll reads every task file. Files are decoded concurrently; a malformed
// file is logged and skipped, while an OS-level read failure aborts the load.
func (s *FileStore) LoadAll(ctx context.Context) ([]*scheduler.Task, error) {
	entries, err := os.ReadDir(s.tasks)
	if err != nil {
		return nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var (
		mu    sync.Mutex
		tasks []*scheduler.Task
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(s.tasks, name))
			if err != nil {
				return fmt.Errorf("reading task %s: %w", name, err)
			}
			task, err := decodeTask(name, data)
			if err != nil {
				s.log.Warn("skipping malformed task file", "file", name, "error", err)
				return nil
			}
			mu.Lock()
			tasks = append(tasks, task)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// Load reads one task by id.
func (s *FileStore) Load(ctx context.Context, id string) (*scheduler.Task, error) {
	data, err := os.ReadFile(s.taskPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, &scheduler.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", id, err)
	}
	task, err := decodeTask(id, data)
	if err != nil {
		return nil, fmt.Errorf("decoding task %s: %w", id, err)
	}
	return task, nil
}

// Save writes a task record. The write goes through a temp file and a rename
// so a crash never leaves a half-written record behind.
func (s *FileStore) Save(ctx context.Context, task *scheduler.Task) error {
	data, err := encodeTask(task)
	if err != nil {
		return fmt.Errorf("encoding task %s: %w", task.ID, err)
	}
	tmp, err := os.CreateTemp(s.tasks, task.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing task %s: %w", task.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing task %s: %w", task.ID, err)
	}
	if err := os.Rename(tmpName, s.taskPath(task.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing task %s: %w", task.ID, err)
	}
	return nil
}

// Delete removes a task record. Blocker edges are not touched.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	err := os.Remove(s.taskPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return &scheduler.NotFoundError{ID: id}
	}
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// Graph returns the blocker graph stored alongside the tasks.
func (s *FileStore) Graph() *FileGraph {
	return &FileGraph{path: filepath.Join(s.dir, blockersName)}
}

// PainLog returns the append-only pain audit log stored alongside the tasks.
func (s *FileStore) PainLog() *FilePainLog {
	return &FilePainLog{path: filepath.Join(s.dir, painLogName)}
}
