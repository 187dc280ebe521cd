package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "docqa",
		Short: "Ask questions about a PDF paper or thesis through a tool-using agent",
	}

	root.AddCommand(chatCmd())
	root.AddCommand(askCmd())
	root.AddCommand(analyzeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
