package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "analyze <pdf>",
		Short: "Classify a document and summarize its structure",
		Long: "Runs the ingestion-time analysis: classifies the document as a thesis or a paper " +
			"and, for a thesis, reports whether it looks like a compilation of papers.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, cleanup, err := buildSession(cmd.Context(), args[0], verbose)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := session.ClassifyAndSummarize(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log agent activity")
	return cmd
}
