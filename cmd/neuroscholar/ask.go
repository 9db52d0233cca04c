package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask FILE QUESTION...",
	Short: "Answer a question about a document",
	Long: `Ask extracts an answer span from the document, then picks the
document sentence that best supports it by embedding similarity. The
output shows the answer, the model's confidence, the supporting sentence
with the answer highlighted, and the sentence's similarity score.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	question := strings.Join(args[1:], " ")

	ctx := cmd.Context()
	a, sess, done, err := openDocument(ctx, args[0])
	if err != nil {
		return err
	}
	defer done()

	res, err := a.Ask(ctx, sess, question)
	if err != nil {
		return userError(err)
	}
	return writeOutput(cmd.OutOrStdout(), format, res, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, res.Format())
		return err
	})
}

func init() {
	addFormatFlag(askCmd)

	rootCmd.AddCommand(askCmd)
}
