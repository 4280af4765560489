package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/njbennett/knecht/internal/scheduler"
)

// FilePainLog appends pain entries to a CSV file, one record per entry:
//
//	entry_id,task_id,timestamp,source,description
//
// The log is write-only from the scheduler's point of view; it exists so the
// raw friction reports survive even though only the aggregate counts drive
// prioritization.
type FilePainLog struct {
	path string
}

// Append writes one entry to the end of the log.
func (l *FilePainLog) Append(ctx context.Context, entry scheduler.PainEntry) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening pain log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := []string{
		entry.ID,
		entry.TaskID,
		entry.At.Format(time.RFC3339),
		string(entry.Source),
		entry.Description,
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("appending pain entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("appending pain entry: %w", err)
	}
	return f.Close()
}

// Entries reads the whole log back, oldest first. Used by reporting, never by
// scheduling.
func (l *FilePainLog) Entries(ctx context.Context) ([]scheduler.PainEntry, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening pain log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading pain log: %w", err)
	}

	entries := make([]scheduler.PainEntry, 0, len(records))
	for _, rec := range records {
		at, err := time.Parse(time.RFC3339, rec[2])
		if err != nil {
			return nil, fmt.Errorf("parsing pain entry timestamp: %w", err)
		}
		entries = append(entries, scheduler.PainEntry{
			ID:          rec[0],
			TaskID:      rec[1],
			At:          at,
			Source:      scheduler.PainSource(rec[3]),
			Description: rec[4],
		})
	}
	return entries, nil
}
