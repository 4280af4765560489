// Package importer brings tasks in from external trackers: beads JSON
// exports and Sentry issues.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/njbennett/knecht/internal/scheduler"
)

// BeadsTask is one record of a beads JSON export.
type BeadsTask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    int    `json:"priority"`
	IssueType   string `json:"issue_type"`
}

// BeadsSummary reports what a beads import produced and what it dropped.
// Priorities and issue types have no equivalent here, so they are counted
// rather than carried over.
type BeadsSummary struct {
	Imported   int
	Priorities map[int]int
	IssueTypes map[string]int
	// IDs maps beads ids to the new task ids, in case the caller wants to
	// rebuild dependencies by hand.
	IDs map[string]string
}

// ImportBeads reads a beads JSON export and creates one task per record.
// Statuses map onto the smaller lifecycle: done stays done, everything else
// (including in_progress) lands as open. Descriptions are preserved;
// acceptance criteria do not exist in beads, so imported tasks must be given
// criteria before they can be started.
func ImportBeads(ctx context.Context, r io.Reader, repo scheduler.Repository) (*BeadsSummary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading beads export: %w", err)
	}
	var records []BeadsTask
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing beads export: %w", err)
	}

	summary := &BeadsSummary{
		Priorities: map[int]int{},
		IssueTypes: map[string]int{},
		IDs:        map[string]string{},
	}
	for _, rec := range records {
		status := scheduler.StatusOpen
		if rec.Status == "done" {
			status = scheduler.StatusDone
		}
		task := &scheduler.Task{
			ID:          scheduler.NewID(),
			Status:      status,
			Title:       rec.Title,
			Description: rec.Description,
		}
		if err := repo.Save(ctx, task); err != nil {
			return nil, fmt.Errorf("importing beads task %s: %w", rec.ID, err)
		}
		summary.Imported++
		summary.Priorities[rec.Priority]++
		summary.IssueTypes[rec.IssueType]++
		summary.IDs[rec.ID] = task.ID
	}
	return summary, nil
}

// LostInfo renders the dropped-field counts for display.
func (s *BeadsSummary) LostInfo() []string {
	var out []string
	priorities := make([]int, 0, len(s.Priorities))
	for p := range s.Priorities {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)
	for _, p := range priorities {
		out = append(out, fmt.Sprintf("priority %d: %d tasks", p, s.Priorities[p]))
	}
	types := make([]string, 0, len(s.IssueTypes))
	for t := range s.IssueTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		out = append(out, fmt.Sprintf("issue type %s: %d tasks", t, s.IssueTypes[t]))
	}
	return out
}
