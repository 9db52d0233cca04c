package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/neuroscholar/internal/assistant"
	"github.com/pdiddy/neuroscholar/internal/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat FILE",
	Short: "Ask questions about a document interactively",
	Long: `Chat loads the document once and answers each line typed as a question.

Commands:
  /summary      print the document summary
  /history      print previous answers, newest first
  /save PATH    write the conversation history to PATH as YAML
  /quit         leave the chat`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, sess, done, err := openDocument(ctx, args[0])
		if err != nil {
			return err
		}
		defer done()
		return runChat(ctx, a, sess, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runChat reads questions from in until EOF or /quit. Failed questions are
// reported and the loop continues.
func runChat(ctx context.Context, a *assistant.Assistant, sess *session.Session, in io.Reader, out io.Writer) error {
	doc, _ := sess.Document()
	fmt.Fprintf(out, "Loaded %s (%d characters). Type a question, or /quit to leave.\n", doc.Name, len(doc.Text))

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/history":
			writeHistory(out, sess.RecentHistory())
		case line == "/summary":
			summary, err := a.Summary(ctx, sess, 0)
			if err != nil {
				fmt.Fprintln(out, assistant.Message(err))
				continue
			}
			fmt.Fprintf(out, "%s\n\n", summary)
		case strings.HasPrefix(line, "/save"):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/save"))
			if path == "" {
				fmt.Fprintln(out, "usage: /save PATH")
				continue
			}
			if err := saveHistory(path, sess.History()); err != nil {
				fmt.Fprintf(out, "Could not save history: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "Saved %d exchanges to %s\n", len(sess.History()), path)
		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(out, "Unknown command %s\n", line)
		default:
			res, err := a.Ask(ctx, sess, line)
			if err != nil {
				fmt.Fprintln(out, assistant.Message(err))
				continue
			}
			fmt.Fprintf(out, "%s\n\n", res.Format())
		}
	}
}

func writeHistory(w io.Writer, history []session.Exchange) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No questions asked yet.")
		return
	}
	for _, ex := range history {
		fmt.Fprintf(w, "Q: %s\n%s\n\n", ex.Question, ex.Answer)
	}
}

func saveHistory(path string, history []session.Exchange) error {
	data, err := yaml.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
