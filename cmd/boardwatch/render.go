package main

import (
	"fmt"
	"io"
	"strings"

	"taskflow-board-api/internal/reconciler"
)

const recentActivity = 5

func render(w io.Writer, v *reconciler.View) {
	if v == nil {
		fmt.Fprintln(w, "(loading)")
		return
	}

	fmt.Fprintf(w, "%s\n%s\n", v.Board.Title, strings.Repeat("=", len(v.Board.Title)))
	for _, l := range v.Lists {
		fmt.Fprintf(w, "\n[%d] %s (%d)\n", l.Position, l.Title, len(l.Tasks))
		for i, t := range l.Tasks {
			line := fmt.Sprintf("  %d. %s", i+1, t.Title)
			if n := len(t.AssigneeIDs); n > 0 {
				line += fmt.Sprintf("  @%d", n)
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(v.Activity) == 0 {
		return
	}
	fmt.Fprintln(w, "\nRecent activity")
	for i, a := range v.Activity {
		if i == recentActivity {
			break
		}
		fmt.Fprintf(w, "  %s %s %s\n", a.CreatedAt.Format("15:04:05"), a.ActionType, a.EntityType)
	}
}
