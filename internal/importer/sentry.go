package importer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/njbennett/knecht/internal/scheduler"
)

// SentryImporter syncs Sentry issues into tasks. Each issue becomes one task
// whose pain count tracks the issue's event count; re-running the sync adds
// the delta since the last run. The issue-to-task correspondence lives in an
// append-only mapping file next to the task data.
type SentryImporter struct {
	Client       *http.Client
	BaseURL      string // e.g. https://sentry.io/api/0
	Organization string
	Project      string
	Token        string

	Repo        scheduler.Repository
	PainLog     scheduler.PainLog
	MappingPath string
	Log         *slog.Logger
}

// SentryIssue is the subset of the Sentry issues API response the importer
// reads.
type SentryIssue struct {
	ID        string `json:"id"`
	ShortID   string `json:"shortId"`
	Title     string `json:"title"`
	Count     string `json:"count"` // Sentry returns the event count as a string
	Status    string `json:"status"`
	Permalink string `json:"permalink"`
	FirstSeen string `json:"firstSeen"`
	LastSeen  string `json:"lastSeen"`
}

type sentryEvent struct {
	Tags []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"tags"`
	Entries []struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	} `json:"entries"`
}

type sentryException struct {
	Values []struct {
		Type       string `json:"type"`
		Value      string `json:"value"`
		Stacktrace struct {
			Frames []struct {
				Filename string `json:"filename"`
				Function string `json:"function"`
				LineNo   int    `json:"lineNo"`
			} `json:"frames"`
		} `json:"stacktrace"`
	} `json:"values"`
}

type sentryMapping struct {
	issueID   string
	taskID    string
	syncedAt  int64
	lastCount int
}

// SyncAction describes what happened (or would happen) to one issue.
type SyncAction struct {
	Kind    string // "created", "updated", "skipped"
	TaskID  string
	ShortID string
	Title   string
	Pain    int
}

// SyncSummary aggregates one sync run.
type SyncSummary struct {
	Actions   []SyncAction
	Created   int
	Updated   int
	Skipped   int
	TotalPain int
}

// Sync fetches issues with the given status (unresolved, resolved, ignored)
// and reconciles them against the task set. With dryRun set, it reports the
// would-be actions without writing anything.
func (s *SentryImporter) Sync(ctx context.Context, status string, dryRun bool) (*SyncSummary, error) {
	issues, err := s.fetchIssues(ctx, status)
	if err != nil {
		return nil, err
	}
	s.logger().Info("fetched sentry issues", "count", len(issues))

	mappings, err := s.readMappings()
	if err != nil {
		return nil, err
	}

	summary := &SyncSummary{}
	for _, issue := range issues {
		action, err := s.syncIssue(ctx, issue, mappings[issue.ID], dryRun)
		if err != nil {
			s.logger().Error("failed to sync issue", "issue", issue.ShortID, "error", err)
			continue
		}
		summary.Actions = append(summary.Actions, action)
		switch action.Kind {
		case "created":
			summary.Created++
			summary.TotalPain += action.Pain
		case "updated":
			summary.Updated++
			summary.TotalPain += action.Pain
		case "skipped":
			summary.Skipped++
		}
	}
	return summary, nil
}

func (s *SentryImporter) syncIssue(ctx context.Context, issue SentryIssue, existing *sentryMapping, dryRun bool) (SyncAction, error) {
	count, _ := strconv.Atoi(issue.Count)

	if existing != nil {
		delta := count - existing.lastCount
		if delta <= 0 {
			return SyncAction{Kind: "skipped", TaskID: existing.taskID, ShortID: issue.ShortID, Title: issue.Title}, nil
		}
		action := SyncAction{Kind: "updated", TaskID: existing.taskID, ShortID: issue.ShortID, Title: issue.Title, Pain: delta}
		if dryRun {
			return action, nil
		}

		task, err := s.Repo.Load(ctx, existing.taskID)
		if err != nil {
			return SyncAction{}, err
		}
		task.Pain += delta
		if err := s.Repo.Save(ctx, task); err != nil {
			return SyncAction{}, err
		}
		s.recordPain(ctx, task.ID, issue, delta)
		if err := s.appendMapping(sentryMapping{
			issueID: issue.ID, taskID: task.ID,
			syncedAt: time.Now().Unix(), lastCount: count,
		}); err != nil {
			return SyncAction{}, err
		}
		return action, nil
	}

	action := SyncAction{Kind: "created", ShortID: issue.ShortID, Title: issue.Title, Pain: count}
	if dryRun {
		return action, nil
	}

	event, err := s.fetchLatestEvent(ctx, issue.ID)
	if err != nil {
		s.logger().Warn("could not fetch latest event", "issue", issue.ShortID, "error", err)
	}
	task := &scheduler.Task{
		ID:          scheduler.NewID(),
		Status:      scheduler.StatusOpen,
		Title:       fmt.Sprintf("[SENTRY-%s] %s", issue.ShortID, issue.Title),
		Description: formatIssueDescription(issue, event),
		Pain:        count,
	}
	if err := s.Repo.Save(ctx, task); err != nil {
		return SyncAction{}, err
	}
	s.recordPain(ctx, task.ID, issue, count)
	if err := s.appendMapping(sentryMapping{
		issueID: issue.ID, taskID: task.ID,
		syncedAt: time.Now().Unix(), lastCount: count,
	}); err != nil {
		return SyncAction{}, err
	}
	action.TaskID = task.ID
	return action, nil
}

// recordPain writes one aggregated audit entry per sync rather than one per
// Sentry event; the task's pain count already carries the magnitude.
func (s *SentryImporter) recordPain(ctx context.Context, taskID string, issue SentryIssue, delta int) {
	if s.PainLog == nil {
		return
	}
	entry := scheduler.PainEntry{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		At:          time.Now().UTC(),
		Source:      scheduler.PainSourceImport,
		Description: fmt.Sprintf("%d Sentry events: %s", delta, issue.Title),
	}
	if err := s.PainLog.Append(ctx, entry); err != nil {
		s.logger().Warn("failed to append pain entry", "task", taskID, "error", err)
	}
}

func (s *SentryImporter) fetchIssues(ctx context.Context, status string) ([]SentryIssue, error) {
	u := fmt.Sprintf("%s/projects/%s/%s/issues/?query=%s",
		s.BaseURL, s.Organization, s.Project, url.QueryEscape("is:"+status))
	var issues []SentryIssue
	if err := s.getJSON(ctx, u, &issues); err != nil {
		return nil, fmt.Errorf("fetching issues: %w", err)
	}
	return issues, nil
}

func (s *SentryImporter) fetchLatestEvent(ctx context.Context, issueID string) (*sentryEvent, error) {
	u := fmt.Sprintf("%s/organizations/%s/issues/%s/events/latest/",
		s.BaseURL, s.Organization, issueID)
	var event sentryEvent
	err := s.getJSON(ctx, u, &event)
	if err != nil {
		if strings.Contains(err.Error(), "status 404") {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (s *SentryImporter) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sentry API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// readMappings loads the issue-to-task mapping file. The file is append-only
// with the newest line for an issue winning, so a plain sequential read
// yields the current state.
func (s *SentryImporter) readMappings() (map[string]*sentryMapping, error) {
	mappings := map[string]*sentryMapping{}
	f, err := os.Open(s.MappingPath)
	if os.IsNotExist(err) {
		return mappings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening mapping file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}
		syncedAt, _ := strconv.ParseInt(parts[2], 10, 64)
		lastCount, _ := strconv.Atoi(parts[3])
		mappings[parts[0]] = &sentryMapping{
			issueID:   parts[0],
			taskID:    parts[1],
			syncedAt:  syncedAt,
			lastCount: lastCount,
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}
	return mappings, nil
}

func (s *SentryImporter) appendMapping(m sentryMapping) error {
	f, err := os.OpenFile(s.MappingPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening mapping file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s|%s|%d|%d\n", m.issueID, m.taskID, m.syncedAt, m.lastCount); err != nil {
		return fmt.Errorf("appending mapping: %w", err)
	}
	return f.Close()
}

func (s *SentryImporter) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// formatIssueDescription renders a markdown summary of the issue, including
// tags and the top of the most recent stacktrace when an event is available.
func formatIssueDescription(issue SentryIssue, event *sentryEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", issue.Title)
	fmt.Fprintf(&b, "**Issue ID:** %s\n", issue.ID)
	fmt.Fprintf(&b, "**Link:** %s\n", issue.Permalink)
	fmt.Fprintf(&b, "**First seen:** %s\n", issue.FirstSeen)
	fmt.Fprintf(&b, "**Last seen:** %s\n", issue.LastSeen)
	fmt.Fprintf(&b, "**Events:** %s\n", issue.Count)

	if event == nil {
		return b.String()
	}

	if len(event.Tags) > 0 {
		b.WriteString("\n## Tags\n\n")
		for _, tag := range event.Tags {
			fmt.Fprintf(&b, "- **%s:** %s\n", tag.Key, tag.Value)
		}
	}

	for _, entry := range event.Entries {
		if entry.Type != "exception" {
			continue
		}
		var exc sentryException
		if err := json.Unmarshal(entry.Data, &exc); err != nil {
			continue
		}
		if len(exc.Values) == 0 {
			continue
		}
		b.WriteString("\n## Exception\n\n")
		for _, v := range exc.Values {
			if v.Type != "" {
				fmt.Fprintf(&b, "**Type:** %s\n", v.Type)
			}
			if v.Value != "" {
				fmt.Fprintf(&b, "**Value:** %s\n", v.Value)
			}
			frames := v.Stacktrace.Frames
			if len(frames) == 0 {
				continue
			}
			b.WriteString("\n### Stacktrace\n\n```\n")
			// Sentry lists frames oldest first; show the most recent ten.
			shown := 0
			for i := len(frames) - 1; i >= 0 && shown < 10; i-- {
				fr := frames[i]
				fmt.Fprintf(&b, "  %s in %s [Line %d]\n", orUnknown(fr.Function), orUnknown(fr.Filename), fr.LineNo)
				shown++
			}
			b.WriteString("```\n")
		}
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
