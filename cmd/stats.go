package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/omergehad405/EduMaster/internal/failure"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.requireLogin(ctx); err != nil {
				return err
			}
			b, err := e.courses.Board(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			st := b.Stats
			fmt.Fprintf(out, "%s\n\n", b.User.Username)
			fmt.Fprintf(out, "%-20s %d\n", "XP:", b.User.XP)
			fmt.Fprintf(out, "%-20s %d day(s)\n", "Streak:", b.User.Streak)
			fmt.Fprintf(out, "%-20s %d\n", "Enrolled tracks:", st.EnrolledTracks)
			fmt.Fprintf(out, "%-20s %d\n", "Completed tracks:", st.CompletedTracks)
			fmt.Fprintf(out, "%-20s %d/%d\n", "Lessons completed:", st.CompletedLessons, st.TotalLessons)
			fmt.Fprintf(out, "%-20s %d%%\n", "Average progress:", st.AveragePercent)

			if len(b.Summaries) > 0 {
				fmt.Fprintf(out, "\n%-32s %-20s %8s\n", "Track", "Status", "Progress")
				fmt.Fprintln(out, strings.Repeat("-", 62))
				for _, s := range b.Summaries {
					fmt.Fprintf(out, "%-32s %-20s %7d%%\n", truncate(s.Track.Title, 32), s.State.Label(), s.Percent)
				}
			}
			for _, f := range b.Failed {
				fmt.Fprintf(out, "! could not load %s: %s\n", f.TrackID, failure.Notice(f.Err))
			}

			if recent := b.User.RecentActivity(5); len(recent) > 0 {
				fmt.Fprintln(out, "\nRecent activity:")
				for _, a := range recent {
					fmt.Fprintf(out, "  %-14s %s\n", humanize.Time(a.At), a.Message)
				}
			}
			return nil
		})
	},
}
