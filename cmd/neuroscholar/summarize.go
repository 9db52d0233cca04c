package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize FILE",
	Short: "Summarize a document",
	Long: `Summarize condenses the first 600 words of the document with the
configured summarization model and cuts the summary to --max-words words.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

type summaryOutput struct {
	Document string `json:"document" yaml:"document"`
	Words    int    `json:"words" yaml:"words"`
	Summary  string `json:"summary" yaml:"summary"`
}

func runSummarize(cmd *cobra.Command, args []string) error {
	maxWords, _ := cmd.Flags().GetInt("max-words")
	format, _ := cmd.Flags().GetString("format")

	ctx := cmd.Context()
	a, sess, done, err := openDocument(ctx, args[0])
	if err != nil {
		return err
	}
	defer done()

	summary, err := a.Summary(ctx, sess, maxWords)
	if err != nil {
		return userError(err)
	}
	doc, _ := sess.Document()
	out := summaryOutput{Document: doc.Name, Words: len(strings.Fields(summary)), Summary: summary}

	return writeOutput(cmd.OutOrStdout(), format, out, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s | %d words\n\n%s\n", out.Document, out.Words, out.Summary)
		return err
	})
}

func init() {
	summarizeCmd.Flags().Int("max-words", 0, "maximum summary length in words (0 = summarization.max_words)")
	addFormatFlag(summarizeCmd)

	rootCmd.AddCommand(summarizeCmd)
}
