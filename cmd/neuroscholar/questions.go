package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neuroscholar/internal/assistant"
	"github.com/pdiddy/neuroscholar/internal/quiz"
)

var questionsCmd = &cobra.Command{
	Use:   "questions FILE",
	Short: "Generate comprehension questions about a document",
	Long: `Questions prompts the generation model with the first 1000 characters
of the document and prints up to three comprehension questions. Sampling is
random unless --seed pins it.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuestions,
}

type questionsOutput struct {
	Questions []string `json:"questions" yaml:"questions"`
	Degraded  bool     `json:"degraded" yaml:"degraded"`
}

func runQuestions(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

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

	set, err := a.GenerateQuestions(ctx, sess, nil)
	if err != nil {
		return userError(err)
	}
	if set.Degraded() {
		slog.Warn(assistant.Message(set.Err), "error", set.Err)
	}

	out := questionsOutput{Questions: set.Questions, Degraded: set.Degraded()}
	return writeOutput(cmd.OutOrStdout(), format, out, func(w io.Writer) error {
		if set.Degraded() {
			_, err := fmt.Fprintln(w, set.Questions[0])
			return err
		}
		for i, q := range set.Questions {
			if _, err := fmt.Fprintf(w, "Question %d: %s\n", i+1, q); err != nil {
				return err
			}
		}
		return nil
	})
}

func init() {
	questionsCmd.Flags().Int64("seed", 0, "sampling seed for reproducible questions")
	addFormatFlag(questionsCmd)

	rootCmd.AddCommand(questionsCmd)
}
