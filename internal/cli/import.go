package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/njbennett/knecht/internal/importer"
)

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from external trackers",
	}
	cmd.AddCommand(a.importBeadsCmd(), a.importSentryCmd())
	return cmd
}

func (a *app) importBeadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "beads [export.json]",
		Short: "Import tasks from a beads JSON export (stdin by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := a.open()
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			summary, err := importer.ImportBeads(cmd.Context(), in, s)
			if err != nil {
				return err
			}
			cmd.Printf("Imported %d tasks\n", summary.Imported)
			if lost := summary.LostInfo(); len(lost) > 0 {
				cmd.Println("Not carried over:")
				for _, line := range lost {
					cmd.Printf("  %s\n", line)
				}
			}
			return nil
		},
	}
}

func (a *app) importSentryCmd() *cobra.Command {
	var org, project, status string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sentry",
		Short: "Import Sentry issues as tasks, tracking event counts as pain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := a.open()
			if err != nil {
				return err
			}

			if org == "" {
				org = a.cfg.Sentry.Organization
			}
			if project == "" {
				project = a.cfg.Sentry.Project
			}
			if org == "" || project == "" {
				return fmt.Errorf("sentry organization and project are required (flags or config)")
			}
			token := os.Getenv("SENTRY_AUTH_TOKEN")
			if token == "" {
				return fmt.Errorf("SENTRY_AUTH_TOKEN is not set")
			}

			imp := &importer.SentryImporter{
				BaseURL:      a.cfg.Sentry.BaseURL,
				Organization: org,
				Project:      project,
				Token:        token,
				Repo:         s,
				PainLog:      s.PainLog(),
				MappingPath:  filepath.Join(s.Dir(), "sentry-mapping"),
				Log:          a.log,
			}
			summary, err := imp.Sync(cmd.Context(), status, dryRun)
			if err != nil {
				return err
			}

			for _, action := range summary.Actions {
				prefix := ""
				if dryRun {
					prefix = "[DRY RUN] "
				}
				switch action.Kind {
				case "created":
					cmd.Printf("%sCreated: [SENTRY-%s] %s (%d pain)\n", prefix, action.ShortID, action.Title, action.Pain)
				case "updated":
					cmd.Printf("%sUpdated %s: +%d pain (%s)\n", prefix, displayID(action.TaskID), action.Pain, action.Title)
				case "skipped":
					cmd.Printf("%sSkipped %s: no new events\n", prefix, displayID(action.TaskID))
				}
			}
			cmd.Println()
			cmd.Println("=== Sync Summary ===")
			cmd.Printf("Created: %d new tasks\n", summary.Created)
			cmd.Printf("Updated: %d existing tasks\n", summary.Updated)
			cmd.Printf("Skipped: %d tasks (no new events)\n", summary.Skipped)
			cmd.Printf("Total pain: %d\n", summary.TotalPain)
			return nil
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "Sentry organization slug")
	cmd.Flags().StringVar(&project, "project", "", "Sentry project slug")
	cmd.Flags().StringVar(&status, "status", "unresolved", "only sync issues with this status")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without writing")
	return cmd
}
