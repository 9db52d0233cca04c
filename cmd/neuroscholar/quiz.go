package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neuroscholar/internal/assistant"
	"github.com/pdiddy/neuroscholar/internal/quiz"
	"github.com/pdiddy/neuroscholar/internal/session"
)

var quizCmd = &cobra.Command{
	Use:   "quiz FILE",
	Short: "Test your understanding of a document",
	Long: `Quiz generates up to three comprehension questions, reads one answer per
question from standard input, and grades each non-empty answer against the
document. Leave an answer blank to skip its question.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []quiz.Option
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetInt64("seed")
			opts = append(opts, quiz.WithSeed(seed))
		}

		ctx := cmd.Context()
		a, sess, done, err := openDocument(ctx, args[0], opts...)
		if err != nil {
			return err
		}
		defer done()
		return runQuiz(ctx, a, sess, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runQuiz asks the generated questions in order and prints a grade for
// every answered one. A degraded question set ends the quiz early.
func runQuiz(ctx context.Context, a *assistant.Assistant, sess *session.Session, in io.Reader, out io.Writer) error {
	set, err := a.GenerateQuestions(ctx, sess, nil)
	if err != nil {
		return userError(err)
	}
	if set.Degraded() {
		fmt.Fprintln(out, set.Questions[0])
		fmt.Fprintln(out, assistant.Message(set.Err))
		return nil
	}

	sc := bufio.NewScanner(in)
	responses := make([]assistant.Response, 0, len(set.Questions))
	for i, q := range set.Questions {
		fmt.Fprintf(out, "Question %d: %s\n> ", i+1, q)
		answer := ""
		if sc.Scan() {
			answer = strings.TrimSpace(sc.Text())
		}
		responses = append(responses, assistant.Response{Question: q, Answer: answer})
	}
	fmt.Fprintln(out)
	if err := sc.Err(); err != nil {
		return err
	}

	grades, err := a.Evaluate(ctx, sess, responses)
	if err != nil {
		return userError(err)
	}
	if len(grades) == 0 {
		fmt.Fprintln(out, "No answers to evaluate.")
		return nil
	}
	for _, g := range grades {
		fmt.Fprintf(out, "Q: %s\nYour answer: %s\n", g.Question, g.Answer)
		if err := writeGrade(out, g); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	return nil
}

func init() {
	quizCmd.Flags().Int64("seed", 0, "sampling seed for reproducible questions")

	rootCmd.AddCommand(quizCmd)
}
