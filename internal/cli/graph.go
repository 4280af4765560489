package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) blockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block <task-id> by <task-id>",
		Short: "Record that a task is blocked by another",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[1] != "by" {
				return fmt.Errorf("usage: knecht block task-N by task-M")
			}
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			blocked, blocker := taskRef(args[0]), taskRef(args[2])
			if err := eng.Block(cmd.Context(), blocked, blocker); err != nil {
				return err
			}
			cmd.Printf("Blocker added: %s is blocked by %s\n", displayID(blocked), displayID(blocker))
			return nil
		},
	}
}

func (a *app) unblockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <task-id> from <task-id>",
		Short: "Remove a blocker relationship",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[1] != "from" {
				return fmt.Errorf("usage: knecht unblock task-N from task-M")
			}
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			blocked, blocker := taskRef(args[0]), taskRef(args[2])
			if err := eng.Unblock(cmd.Context(), blocked, blocker); err != nil {
				return err
			}
			cmd.Printf("Blocker removed: %s is no longer blocked by %s\n", displayID(blocked), displayID(blocker))
			return nil
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the blocker graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			report, err := eng.CheckGraph(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Println("Blocker graph is acyclic")
			for _, orphan := range report.Orphans {
				cmd.Printf("Warning: edge %s -> %s references a deleted task\n",
					displayID(orphan.Blocked), displayID(orphan.Blocker))
			}
			return nil
		},
	}
}
