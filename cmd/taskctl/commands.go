package main

import (
	"errors"
	"fmt"
	"strconv"

	"task-management-app/client"
	"task-management-app/domain"

	"github.com/spf13/cobra"
)

func registerCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.api.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			return a.welcome(cmd, s)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Your name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (6 or more characters)")
	return cmd
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.api.LogIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.welcome(cmd, s)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	return cmd
}

func (a *app) welcome(cmd *cobra.Command, s client.Session) error {
	if err := a.sessions.Save(s); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", s.User.FirstName())
	return nil
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.sessions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show your tasks in order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.controller(cmd)
			if err != nil {
				return err
			}
			printTaskList(cmd.OutOrStdout(), c.Tasks())
			printStats(cmd.OutOrStdout(), c.Stats())
			return nil
		},
	}
}

func addCmd(a *app) *cobra.Command {
	var description, priority string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task at the end of the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.controller(cmd)
			if err != nil {
				return err
			}
			task, err := c.Create(cmd.Context(), domain.TaskDraft{
				Title:       args[0],
				Description: description,
				Priority:    domain.Priority(priority),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q.\n", task.Title)
			printStats(cmd.OutOrStdout(), c.Stats())
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (low, medium, high)")
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var title, description, priority string
	cmd := &cobra.Command{
		Use:   "edit <task>",
		Short: "Change the title, description or priority of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("priority") {
				p := domain.Priority(priority)
				patch.Priority = &p
			}
			if patch == (domain.TaskPatch{}) {
				return errors.New("nothing to change, pass --title, --description or --priority")
			}

			c, err := a.controller(cmd)
			if err != nil {
				return err
			}
			task, err := resolveTask(c.Tasks(), args[0])
			if err != nil {
				return err
			}
			updated, err := c.Update(cmd.Context(), task.Id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q.\n", updated.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority (low, medium, high)")
	return cmd
}

func completeCmd(a *app, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.controller(cmd)
			if err != nil {
				return err
			}
			task, err := resolveTask(c.Tasks(), args[0])
			if err != nil {
				return err
			}
			if task.Completed != completed {
				if _, err := c.Toggle(cmd.Context(), task.Id); err != nil {
					return err
				}
			}
			printStats(cmd.OutOrStdout(), c.Stats())
			return nil
		},
	}
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.controller(cmd)
			if err != nil {
				return err
			}
			task, err := resolveTask(c.Tasks(), args[0])
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), task.Id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", task.Title)
			printStats(cmd.OutOrStdout(), c.Stats())
			return nil
		},
	}
}

func moveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move the task at one position to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			to, err := parsePosition(args[1])
			if err != nil {
				return err
			}

			c, err := a.controller(cmd)
			if err != nil {
				return err
			}
			if err := c.Move(cmd.Context(), from-1, to-1); err != nil {
				return err
			}
			printTaskList(cmd.OutOrStdout(), c.Tasks())
			printStats(cmd.OutOrStdout(), c.Stats())
			return nil
		},
	}
}

func activityCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show what happened to your tasks recently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.sessions.Load(); err != nil {
				return err
			}
			entries, err := a.api.Activity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printActivity(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Number of entries")
	return cmd
}

func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position: %s", arg)
	}
	return n, nil
}
