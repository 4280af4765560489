package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Suggest the task to work on next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			task, err := eng.SuggestNext(cmd.Context())
			if err != nil {
				return err
			}
			if task == nil {
				cmd.Println("No open tasks")
				return nil
			}
			suffix := ""
			if task.Pain > 0 {
				suffix = fmt.Sprintf(" (pain count: %d)", task.Pain)
			}
			cmd.Printf("%s  %s%s\n", displayID(task.ID), task.Title, suffix)
			if task.Description != "" {
				cmd.Printf("%s\n", task.Description)
			}
			cmd.Printf("Start it with: knecht start %s\n", displayID(task.ID))
			return nil
		},
	}
}

func (a *app) startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <task-id>",
		Short: "Claim a task and begin work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			task, err := eng.Claim(cmd.Context(), taskRef(args[0]))
			if err != nil {
				return err
			}
			cmd.Printf("Started %s: %s\n", displayID(task.ID), task.Title)
			if task.Acceptance != "" {
				cmd.Printf("Acceptance Criteria: %s\n", task.Acceptance)
			}
			return nil
		},
	}
}

func (a *app) deliverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deliver <task-id>",
		Short: "Mark a task delivered, awaiting verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			task, err := eng.Deliver(cmd.Context(), taskRef(args[0]))
			if err != nil {
				return err
			}
			cmd.Printf("✓ %s: %s\n", displayID(task.ID), task.Title)
			return nil
		},
	}
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			task, err := eng.Complete(cmd.Context(), taskRef(args[0]))
			if err != nil {
				return err
			}
			cmd.Printf("✓ %s: %s\n", displayID(task.ID), task.Title)
			return nil
		},
	}
}

func (a *app) painCmd() *cobra.Command {
	var taskID, description string
	cmd := &cobra.Command{
		Use:   "pain",
		Short: "Report friction against a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := a.open()
			if err != nil {
				return err
			}
			task, err := eng.AddPain(cmd.Context(), taskRef(taskID), description)
			if err != nil {
				return err
			}
			cmd.Printf("Recorded pain for %s (pain count: %d)\n", displayID(task.ID), task.Pain)
			return nil
		},
	}
	cmd.Flags().StringVarP(&taskID, "task", "t", "", "task the pain relates to")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what hurt")
	cmd.MarkFlagRequired("task")
	cmd.MarkFlagRequired("description")
	return cmd
}
