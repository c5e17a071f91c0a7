package main

import (
	"fmt"
	"io"

	"task-management-app/domain"
)

const timeLayout = "2006-01-02 15:04"

func printTaskList(w io.Writer, tasks domain.Tasks) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks yet. Add one with 'taskctl add <title>'.")
		return
	}
	for i, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "%2d. [%s] %s (%s)  %s\n", i+1, mark, t.Title, t.Priority, t.Id)
		if t.Description != "" {
			fmt.Fprintf(w, "       %s\n", t.Description)
		}
	}
}

func printStats(w io.Writer, s domain.Stats) {
	fmt.Fprintf(w, "%d total, %d completed, %d pending (%d%% done)\n", s.Total, s.Completed, s.Pending, s.Percent())
}

func printActivity(w io.Writer, entries domain.Activities) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No activity yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-9s %s\n", e.CreatedAt.Local().Format(timeLayout), e.Action, e.Title)
	}
}
