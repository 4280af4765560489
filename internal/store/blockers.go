package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/njbennett/knecht/internal/scheduler"
)

// FileGraph stores blocker edges in a flat file, one edge per line in the
// form "blocked|blocker". A missing file means an empty graph. Edges are
// never validated against the task set; dangling references are the readers'
// problem.
type FileGraph struct {
	path string
}

func (g *FileGraph) readEdges() ([]scheduler.Edge, error) {
	f, err := os.Open(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading blockers file: %w", err)
	}
	defer f.Close()

	var edges []scheduler.Edge
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		blocked, blocker, ok := strings.Cut(line, "|")
		if !ok {
			return nil, fmt.Errorf("malformed blocker line %q", line)
		}
		edges = append(edges, scheduler.Edge{Blocked: blocked, Blocker: blocker})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading blockers file: %w", err)
	}
	return edges, nil
}

func (g *FileGraph) writeEdges(edges []scheduler.Edge) error {
	var sb strings.Builder
	for _, e := range edges {
		sb.WriteString(e.Blocked)
		sb.WriteByte('|')
		sb.WriteString(e.Blocker)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(g.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing blockers file: %w", err)
	}
	return nil
}

// BlockersOf returns the ids blocking id.
func (g *FileGraph) BlockersOf(ctx context.Context, id string) ([]string, error) {
	edges, err := g.readEdges()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range edges {
		if e.Blocked == id {
			out = append(out, e.Blocker)
		}
	}
	return out, nil
}

// BlockedBy returns the ids waiting on id.
func (g *FileGraph) BlockedBy(ctx context.Context, id string) ([]string, error) {
	edges, err := g.readEdges()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range edges {
		if e.Blocker == id {
			out = append(out, e.Blocked)
		}
	}
	return out, nil
}

// AddEdge appends a blocker relationship. Duplicate edges are stored as
// written; they change nothing semantically.
func (g *FileGraph) AddEdge(ctx context.Context, blocked, blocker string) error {
	f, err := os.OpenFile(g.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening blockers file: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s|%s\n", blocked, blocker); err != nil {
		return fmt.Errorf("appending blocker edge: %w", err)
	}
	return f.Close()
}

// RemoveEdge removes one blocker relationship, including any duplicates.
func (g *FileGraph) RemoveEdge(ctx context.Context, blocked, blocker string) error {
	edges, err := g.readEdges()
	if err != nil {
		return err
	}
	kept := edges[:0]
	for _, e := range edges {
		if e.Blocked == blocked && e.Blocker == blocker {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == len(edges) {
		return &scheduler.EdgeNotFoundError{Blocked: blocked, Blocker: blocker}
	}
	return g.writeEdges(kept)
}

// Edges returns every stored edge.
func (g *FileGraph) Edges(ctx context.Context) ([]scheduler.Edge, error) {
	return g.readEdges()
}
