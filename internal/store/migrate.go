package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/njbennett/knecht/internal/scheduler"
)

// migrateLegacy converts the original single-file layout, where .knecht/tasks
// was a regular file of "id|status|title" lines, into the per-task directory
// layout. The old file is kept as tasks.bak. A no-op when .knecht/tasks is
// already a directory or absent.
func (s *FileStore) migrateLegacy() error {
	info, err := os.Stat(s.tasks)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}

	s.log.Info("migrating legacy task file to directory layout", "path", s.tasks)

	f, err := os.Open(s.tasks)
	if err != nil {
		return err
	}
	var tasks []*scheduler.Task
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			f.Close()
			return fmt.Errorf("malformed legacy task line %q", line)
		}
		status, err := scheduler.ParseStatus(parts[1])
		if err != nil {
			f.Close()
			return fmt.Errorf("legacy task %s: %w", parts[0], err)
		}
		tasks = append(tasks, &scheduler.Task{ID: parts[0], Status: status, Title: parts[2]})
	}
	if err := sc.Err(); err != nil {
		f.Close()
		return err
	}
	f.Close()

	backup := filepath.Join(s.dir, legacyBackup)
	if err := os.Rename(s.tasks, backup); err != nil {
		return fmt.Errorf("backing up legacy file: %w", err)
	}
	if err := os.MkdirAll(s.tasks, 0o755); err != nil {
		return err
	}
	for _, t := range tasks {
		data, err := encodeTask(t)
		if err != nil {
			return err
		}
		if err := os.WriteFile(s.taskPath(t.ID), data, 0o644); err != nil {
			return err
		}
	}
	s.log.Info("migration complete", "tasks", len(tasks), "backup", backup)
	return nil
}
