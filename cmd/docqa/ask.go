package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	var verbose bool
	var question string

	cmd := &cobra.Command{
		Use:   "ask <pdf>",
		Short: "Ask a single question about a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if question == "" {
				return fmt.Errorf("a question is required, use -q 'your question'")
			}

			session, cleanup, err := buildSession(cmd.Context(), args[0], verbose)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := session.Ask(cmd.Context(), question, nil)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.FinalAnswer)
			return nil
		},
	}

	cmd.Flags().StringVarP(&question, "question", "q", "", "question to answer")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log agent activity")
	return cmd
}
