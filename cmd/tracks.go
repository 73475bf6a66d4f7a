package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omergehad405/EduMaster/internal/courses"
	"github.com/omergehad405/EduMaster/internal/progression"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List published learning tracks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.restore(ctx); err != nil {
				return err
			}
			entries, err := e.courses.Catalog(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No tracks published yet.")
				return nil
			}
			fmt.Fprintf(out, "%-26s %-32s %-13s %7s  %s\n", "ID", "Title", "Level", "Lessons", "Status")
			fmt.Fprintln(out, strings.Repeat("-", 90))
			for _, en := range entries {
				fmt.Fprintf(out, "%-26s %-32s %-13s %7d  %s\n",
					en.Track.ID, truncate(en.Track.Title, 32), en.Track.Level, en.Track.LessonCount, entryStatus(en))
			}
			return nil
		})
	},
}

var trackCmd = &cobra.Command{
	Use:   "track <id>",
	Short: "Show a track with its lessons and your progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.restore(ctx); err != nil {
				return err
			}
			d, err := e.courses.Track(ctx, args[0])
			if err != nil {
				return err
			}
			printDetail(cmd, d)
			return nil
		})
	},
}

var enrollCmd = &cobra.Command{
	Use:   "enroll <id>",
	Short: "Enroll in a track",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.requireLogin(ctx); err != nil {
				return err
			}
			if err := e.courses.Enroll(ctx, args[0]); err != nil {
				return err
			}
			d, err := e.courses.Track(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enrolled in %s.\n\n", d.Summary.Track.Title)
			printDetail(cmd, d)
			return nil
		})
	},
}

func printDetail(cmd *cobra.Command, d courses.Detail) {
	out := cmd.OutOrStdout()
	s := d.Summary
	fmt.Fprintf(out, "%s (%s)\n", s.Track.Title, s.Track.Level)
	if s.Track.Description != "" {
		fmt.Fprintln(out, s.Track.Description)
	}
	fmt.Fprintf(out, "\n%-10s %s\n", "Status:", s.State.Label())
	fmt.Fprintf(out, "%-10s %d/%d lessons (%d%%)\n", "Progress:", s.CompletedLessons, s.TotalLessons, s.Percent)
	if a := s.Action(); a != progression.ActionNone {
		fmt.Fprintf(out, "%-10s %s\n", "Next:", a.Label())
	}
	fmt.Fprintln(out)
	for i, l := range d.Lessons {
		mark := " "
		if ls, ok := s.Lesson(l.ID); ok {
			switch {
			case ls.Completed:
				mark = "✓"
			case ls.Locked:
				mark = "🔒"
			case l.ID == s.CurrentLessonID:
				mark = "▶"
			}
		}
		fmt.Fprintf(out, " %s %2d. %-40s %s\n", mark, i+1, truncate(l.Title, 40), l.ID)
	}
}

func entryStatus(en courses.Entry) string {
	switch {
	case en.Completed:
		return "completed"
	case en.Enrolled:
		return "enrolled"
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
