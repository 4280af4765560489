package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njbennett/knecht/internal/scheduler"
	"github.com/njbennett/knecht/internal/store"
)

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a knecht data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := store.Init(a.cfg.DataDir, a.log); err != nil {
				return err
			}
			cmd.Println("Initialized knecht")
			return nil
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var description, acceptance string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			task, err := eng.Add(cmd.Context(), args[0], description, acceptance)
			if err != nil {
				return err
			}
			cmd.Printf("Created %s\n", displayID(task.ID))
			cmd.Printf("Does this block another task? Use: knecht block task-N by %s\n", displayID(task.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&acceptance, "acceptance", "a", "", "acceptance criteria (required)")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			tasks, err := eng.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			for _, task := range tasks {
				checkbox := "[ ]"
				if task.Status == scheduler.StatusDone {
					checkbox = "[x]"
				}
				suffix := ""
				if task.Pain > 0 {
					suffix = fmt.Sprintf(" (pain count: %d)", task.Pain)
				}
				cmd.Printf("%s %s  %s%s\n", checkbox, displayID(task.ID), task.Title, suffix)
			}
			cmd.Println()
			cmd.Println("Usage instructions:")
			cmd.Println("  knecht show task-N    show details for a task")
			cmd.Println("  knecht start task-N   claim a task and begin work")
			cmd.Println("  knecht done task-N    mark a task complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include delivered and done tasks")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, s, err := a.open()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			id := taskRef(args[0])
			task, err := eng.Get(ctx, id)
			if err != nil {
				return err
			}

			cmd.Printf("%s\n", displayID(task.ID))
			cmd.Println("────────")
			cmd.Printf("Status: %s\n", task.Status)
			cmd.Printf("Title: %s\n", task.Title)
			if task.Description != "" {
				cmd.Printf("Description: %s\n", task.Description)
			}
			if task.Acceptance != "" {
				cmd.Printf("Acceptance Criteria: %s\n", task.Acceptance)
			}
			if task.Pain > 0 {
				cmd.Printf("Pain count: %d\n", task.Pain)
			}

			blockers, err := eng.Blockers(ctx, id)
			if err != nil {
				return err
			}
			if len(blockers) > 0 {
				cmd.Println("Blocked by:")
				for _, b := range blockers {
					cmd.Printf("  %s  %s (%s)\n", displayID(b.ID), b.Title, b.Status)
				}
			}

			blockedIDs, err := s.Graph().BlockedBy(ctx, id)
			if err != nil {
				return err
			}
			var blocks []string
			for _, bid := range blockedIDs {
				if _, err := eng.Get(ctx, bid); err != nil {
					continue
				}
				blocks = append(blocks, bid)
			}
			if len(blocks) > 0 {
				cmd.Println("Blocks:")
				for _, bid := range blocks {
					cmd.Printf("  %s\n", displayID(bid))
				}
			}
			return nil
		},
	}
}

func (a *app) updateCmd() *cobra.Command {
	var title, description, acceptance string
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Edit a task's title, description, or acceptance criteria",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			var titleP, descP, accP *string
			if cmd.Flags().Changed("title") {
				titleP = &title
			}
			if cmd.Flags().Changed("description") {
				descP = &description
			}
			if cmd.Flags().Changed("acceptance") {
				accP = &acceptance
			}
			task, err := eng.Update(cmd.Context(), taskRef(args[0]), titleP, descP, accP)
			if err != nil {
				return err
			}
			cmd.Printf("Updated %s\n", displayID(task.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description (empty string removes it)")
	cmd.Flags().StringVarP(&acceptance, "acceptance", "a", "", "new acceptance criteria (empty string removes them)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			id := taskRef(args[0])
			if err := eng.Delete(cmd.Context(), id); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", displayID(id))
			return nil
		},
	}
}
