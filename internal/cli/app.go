// Package cli wires the knecht commands. Task ids are shown to users with a
// "task-" prefix; the prefix is presentation only and is stripped from every
// argument before it reaches the engine.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njbennett/knecht/internal/config"
	"github.com/njbennett/knecht/internal/scheduler"
	"github.com/njbennett/knecht/internal/store"
)

type app struct {
	cfg *config.Config
	log *slog.Logger
}

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "knecht",
		Short:         "A task tracker that tells you what to work on next",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDefault()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = newLogger(cfg.Log)
			slog.SetDefault(a.log)
			return nil
		},
	}

	root.AddCommand(
		a.initCmd(),
		a.addCmd(),
		a.listCmd(),
		a.showCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.nextCmd(),
		a.startCmd(),
		a.deliverCmd(),
		a.doneCmd(),
		a.painCmd(),
		a.blockCmd(),
		a.unblockCmd(),
		a.checkCmd(),
		a.uiCmd(),
		a.importCmd(),
	)
	return root
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// open attaches to the data directory and builds the engine.
func (a *app) open() (*scheduler.Engine, *store.FileStore, error) {
	s, err := store.Open(a.cfg.DataDir, a.log)
	if err != nil {
		return nil, nil, err
	}
	return scheduler.New(s, s.Graph(), s.PainLog(), a.log), s, nil
}

// taskRef strips the display prefix from a user-supplied task reference.
func taskRef(arg string) string {
	return strings.TrimPrefix(arg, "task-")
}

// displayID renders an id the way users see it everywhere.
func displayID(id string) string {
	return "task-" + id
}
