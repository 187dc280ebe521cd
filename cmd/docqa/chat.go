package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"doc-qa-agent/internal/models"
)

func chatCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "chat <pdf>",
		Short: "Hold a conversation about a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, cleanup, err := buildSession(cmd.Context(), args[0], verbose)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Talking about document: %s\n", filepath.Base(args[0]))
			fmt.Fprintln(out, "Ask questions below. Type 'quit' or 'exit' to end the conversation.")

			var history []models.ChatTurn
			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Fprint(out, "\nYour question: ")
				if !scanner.Scan() {
					break
				}
				question := strings.TrimSpace(scanner.Text())
				if question == "" {
					continue
				}
				if lower := strings.ToLower(question); lower == "quit" || lower == "exit" {
					break
				}

				result, err := session.Ask(cmd.Context(), question, history)
				if err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
					continue
				}

				fmt.Fprintf(out, "\nAssistant:\n%s\n", result.FinalAnswer)
				history = result.ChatHistory
			}
			return scanner.Err()
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log agent activity")
	return cmd
}
