package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/omergehad405/EduMaster/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show quiz attempts recorded on this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		trackID, _ := cmd.Flags().GetString("track")
		since, _ := cmd.Flags().GetDuration("since")

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			opts := store.QueryOpts{Limit: limit, Kind: kind, TrackID: trackID}
			if since > 0 {
				opts.From = time.Now().Add(-since)
			}
			recs, err := e.store.AttemptRepo().Recent(ctx, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No attempts recorded yet.")
				return nil
			}
			fmt.Fprintf(out, "%-18s %-9s %-26s %8s  %s\n", "When", "Kind", "Track / Quiz", "Score", "Result")
			fmt.Fprintln(out, strings.Repeat("-", 76))
			for _, r := range recs {
				subject := r.TrackID
				if r.QuizID != "" {
					subject = r.QuizID
				}
				result := "retry"
				if r.Passed {
					result = "passed"
				}
				fmt.Fprintf(out, "%-18s %-9s %-26s %4d/%-3d  %s\n",
					humanize.Time(r.SubmittedAt), r.Kind, truncate(subject, 26), r.Correct, r.Total, result)
			}
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().String("kind", "", "Only show attempts of this kind (lesson, final, practice)")
	historyCmd.Flags().String("track", "", "Only show attempts for this track")
	historyCmd.Flags().Int("limit", 20, "Maximum number of attempts to show")
	historyCmd.Flags().Duration("since", 0, "Only show attempts newer than this (e.g. 72h)")
}
