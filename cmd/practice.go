package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/omergehad405/EduMaster/internal/practice"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Generate and take practice quizzes from your own documents",
}

var practiceUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document and generate a practice quiz from it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.requireLogin(ctx); err != nil {
				return err
			}
			up, err := practice.Inspect(args[0], e.cfg.Practice.MaxUploadBytes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploading %s (%s)...\n", up.Name, up.HumanSize())
			q, err := e.practice.Generate(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated quiz %s with %d question(s).\n", q.ID, len(q.Questions))
			return nil
		})
	},
}

var practiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your practice quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.requireLogin(ctx); err != nil {
				return err
			}
			qs, err := e.practice.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(qs) == 0 {
				fmt.Fprintln(out, "No practice quizzes yet. Upload a document with `edumaster practice upload <file>`.")
				return nil
			}
			fmt.Fprintf(out, "%-26s %-32s %9s  %s\n", "ID", "File", "Questions", "Created")
			fmt.Fprintln(out, strings.Repeat("-", 84))
			for _, q := range qs {
				fmt.Fprintf(out, "%-26s %-32s %9d  %s\n", q.ID, truncate(q.FileName, 32), len(q.Questions), humanize.Time(q.CreatedAt))
			}
			return nil
		})
	},
}

var practiceTakeCmd = &cobra.Command{
	Use:   "take <quiz-id>",
	Short: "Answer a practice quiz and have it graded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.requireLogin(ctx); err != nil {
				return err
			}
			q, err := e.practice.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return takePractice(ctx, cmd, e.practice.Start(q))
		})
	},
}

var practiceAttemptsCmd = &cobra.Command{
	Use:   "attempts <quiz-id>",
	Short: "List graded attempts of a practice quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.requireLogin(ctx); err != nil {
				return err
			}
			attempts, err := e.practice.Attempts(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No attempts yet.")
				return nil
			}
			fmt.Fprintf(out, "%-20s %8s %6s\n", "When", "Score", "%")
			fmt.Fprintln(out, strings.Repeat("-", 36))
			for _, a := range attempts {
				fmt.Fprintf(out, "%-20s %4d/%-3d %5d%%\n", humanize.Time(a.CreatedAt), a.Score, a.Total, a.Percent())
			}
			return nil
		})
	},
}

func takePractice(ctx context.Context, cmd *cobra.Command, run *practice.Run) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)
	qs := run.Quiz().Questions
	for i, q := range qs {
		fmt.Fprintf(out, "\nQuestion %d/%d: %s\n", i+1, len(qs), q.Prompt)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", j+1, opt)
		}
		for {
			reply, err := p.ask("Answer")
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("quiz abandoned: %w", err)
			}
			if err != nil {
				return err
			}
			if choice, convErr := strconv.Atoi(reply); convErr == nil && run.Select(i, choice-1) == nil {
				break
			}
			fmt.Fprintf(out, "Enter a number between 1 and %d.\n", len(q.Options))
		}
	}

	graded, err := run.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nScore: %d/%d (%d%%)\n", graded.Score, graded.Total, graded.Percent())
	if res, ok := run.Review(); ok {
		printMistakes(out, qs, res)
	}
	return nil
}

func init() {
	practiceCmd.AddCommand(practiceUploadCmd)
	practiceCmd.AddCommand(practiceListCmd)
	practiceCmd.AddCommand(practiceTakeCmd)
	practiceCmd.AddCommand(practiceAttemptsCmd)
}
