package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omergehad405/EduMaster/internal/courses"
	"github.com/omergehad405/EduMaster/internal/failure"
	"github.com/omergehad405/EduMaster/internal/progression"
	"github.com/omergehad405/EduMaster/internal/quiz"
	"github.com/omergehad405/EduMaster/internal/track"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <track-id> [lesson-id]",
	Short: "Take a lesson quiz, or the track's final quiz when no lesson is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.requireLogin(ctx); err != nil {
				return err
			}
			d, err := e.courses.Track(ctx, args[0])
			if err != nil {
				return err
			}
			ctrl, err := quizFor(e, d, args[1:])
			if err != nil {
				return err
			}
			defer ctrl.Close()
			return takeQuiz(ctx, cmd, ctrl)
		})
	},
}

// quizFor builds the controller for the requested lesson, or for the final
// quiz once the track has reached it.
func quizFor(e *env, d courses.Detail, lessonArg []string) (*quiz.Controller, error) {
	if len(lessonArg) == 1 {
		id := lessonArg[0]
		l, ok := d.Lesson(id)
		if !ok {
			return nil, fmt.Errorf("lesson %s is not part of %s: %w", id, d.Summary.Track.ID, failure.ErrValidation)
		}
		if ls, ok := d.Summary.Lesson(id); ok && ls.Locked {
			return nil, fmt.Errorf("lesson %q is locked; finish the previous lessons first: %w", l.Title, failure.ErrValidation)
		}
		return quiz.NewLessonQuiz(d.Summary.Track.ID, l, e.quizDeps()), nil
	}
	if d.Summary.State != progression.StateAwaitingFinalQuiz {
		return nil, fmt.Errorf("the final quiz is not available (%s): %w", d.Summary.State.Label(), failure.ErrValidation)
	}
	return quiz.NewFinalQuiz(d.Summary.Track, d.Lessons, e.quizDeps()), nil
}

// takeQuiz asks every question on the terminal until the learner passes
// or gives up.
func takeQuiz(ctx context.Context, cmd *cobra.Command, ctrl *quiz.Controller) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)
	qs := ctrl.Questions()
	if len(qs) == 0 {
		fmt.Fprintln(out, "This quiz has no questions.")
	}

	for {
		for i, q := range qs {
			if err := askQuestion(p, ctrl, i, len(qs), q); err != nil {
				return err
			}
		}

		res, err := ctrl.Submit(ctx)
		if err != nil {
			return err
		}
		printResult(out, qs, res)

		if res.AllCorrect() {
			comp, err := ctrl.Complete(ctx)
			if err != nil {
				return err
			}
			switch {
			case ctrl.Kind() == quiz.KindFinal:
				fmt.Fprintln(out, "Track completed. Well done!")
			case comp.NextLessonID != "":
				fmt.Fprintf(out, "Lesson completed. Next lesson unlocked: %s\n", comp.NextLessonID)
			default:
				fmt.Fprintln(out, "Lesson completed.")
			}
			return nil
		}

		again, err := p.ask("Not all answers are correct. Try again? [Y/n]")
		if err != nil || strings.EqualFold(again, "n") {
			return err
		}
		if err := ctrl.Retry(); err != nil {
			return err
		}
	}
}

func askQuestion(p *prompter, ctrl *quiz.Controller, i, n int, q track.Question) error {
	fmt.Fprintf(p.out, "\nQuestion %d/%d: %s\n", i+1, n, q.Prompt)
	for j, opt := range q.Options {
		fmt.Fprintf(p.out, "  %d) %s\n", j+1, opt)
	}
	if len(q.Options) == 0 {
		fmt.Fprintln(p.out, "  (no options, skipped)")
		return nil
	}
	for {
		reply, err := p.ask("Answer")
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("quiz abandoned: %w", err)
		}
		if err != nil {
			return err
		}
		choice, convErr := strconv.Atoi(reply)
		if convErr == nil {
			if err := ctrl.Select(i, choice-1); err == nil {
				return nil
			}
		}
		fmt.Fprintf(p.out, "Enter a number between 1 and %d.\n", len(q.Options))
	}
}

func printResult(out io.Writer, qs []track.Question, res quiz.Result) {
	fmt.Fprintf(out, "\nScore: %d/%d (%d%%)\n", res.Correct, res.Total, res.ScorePercent())
	printMistakes(out, qs, res)
}

func printMistakes(out io.Writer, qs []track.Question, res quiz.Result) {
	for _, i := range res.Wrong() {
		q := qs[i]
		fmt.Fprintf(out, "  ✗ %s\n", q.Prompt)
		if ci := res.Outcomes[i].CorrectIndex; ci >= 0 {
			fmt.Fprintf(out, "    correct answer: %s\n", q.Options[ci])
		}
		if q.Explanation != "" {
			fmt.Fprintf(out, "    %s\n", q.Explanation)
		}
	}
}
