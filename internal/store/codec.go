package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/njbennett/knecht/internal/scheduler"
)

// Task files hold a single CSV record:
//
//	id,status,title,description,pain,acceptance
//
// Quoting follows standard CSV rules, so titles and descriptions may contain
// commas, quotes, and newlines. A zero pain count is written as the empty
// field. Records written by older versions may stop after the title; missing
// trailing fields decode as empty.

func encodeTask(t *scheduler.Task) ([]byte, error) {
	pain := ""
	if t.Pain > 0 {
		pain = strconv.Itoa(t.Pain)
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{t.ID, string(t.Status), t.Title, t.Description, pain, t.Acceptance}); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeTask parses a task file. The filename is the authoritative id; a
// record whose id field disagrees with it is malformed.
func decodeTask(id string, data []byte) (*scheduler.Task, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	if len(record) < 3 {
		return nil, fmt.Errorf("expected at least 3 fields, got %d", len(record))
	}
	if record[0] != id {
		return nil, fmt.Errorf("record id %q does not match filename %q", record[0], id)
	}
	status, err := scheduler.ParseStatus(record[1])
	if err != nil {
		return nil, err
	}

	task := &scheduler.Task{
		ID:     id,
		Status: status,
		Title:  record[2],
	}
	if len(record) > 3 {
		task.Description = record[3]
	}
	if len(record) > 4 && record[4] != "" {
		pain, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("parsing pain count: %w", err)
		}
		task.Pain = pain
	}
	if len(record) > 5 {
		task.Acceptance = record[5]
	}
	return task, nil
}
