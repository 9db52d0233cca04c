package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/neuroscholar/internal/assistant"
	"github.com/pdiddy/neuroscholar/internal/qa"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate FILE --question Q --answer A",
	Short: "Grade an answer to a question about a document",
	Long: `Evaluate finds the answer the document gives to --question and compares
it with --answer by embedding similarity. Similarity above 0.7 is graded
correct; otherwise the expected answer is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

type evaluationOutput struct {
	Question   string        `json:"question" yaml:"question"`
	Answer     string        `json:"answer" yaml:"answer"`
	Evaluation qa.Evaluation `json:"evaluation" yaml:"evaluation"`
	Feedback   string        `json:"feedback" yaml:"feedback"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	question, _ := cmd.Flags().GetString("question")
	answer, _ := cmd.Flags().GetString("answer")
	format, _ := cmd.Flags().GetString("format")

	ctx := cmd.Context()
	a, sess, done, err := openDocument(ctx, args[0])
	if err != nil {
		return err
	}
	defer done()

	grades, err := a.Evaluate(ctx, sess, []assistant.Response{{Question: question, Answer: answer}})
	if err != nil {
		return userError(err)
	}
	if len(grades) == 0 {
		return fmt.Errorf("--answer is empty: nothing to evaluate")
	}
	g := grades[0]
	if g.Err != nil {
		return userError(g.Err)
	}

	out := evaluationOutput{Question: g.Question, Answer: g.Answer, Evaluation: g.Evaluation, Feedback: g.Evaluation.Feedback()}
	return writeOutput(cmd.OutOrStdout(), format, out, func(w io.Writer) error {
		return writeGrade(w, g)
	})
}

// writeGrade prints the verdict header and feedback for one grade.
func writeGrade(w io.Writer, g assistant.Grade) error {
	if g.Err != nil {
		_, err := fmt.Fprintf(w, "Evaluation failed: %s\n", assistant.Message(g.Err))
		return err
	}
	header := "⚠️ Needs Improvement"
	if g.Evaluation.Verdict == qa.Correct {
		header = "✅ Correct"
	}
	_, err := fmt.Fprintf(w, "%s (similarity %s%%)\n%s\n", header, qa.Percent(g.Evaluation.Similarity), g.Evaluation.Feedback())
	return err
}

func init() {
	evaluateCmd.Flags().String("question", "", "question to answer")
	evaluateCmd.Flags().String("answer", "", "your answer")
	_ = evaluateCmd.MarkFlagRequired("question")
	_ = evaluateCmd.MarkFlagRequired("answer")
	addFormatFlag(evaluateCmd)

	rootCmd.AddCommand(evaluateCmd)
}
