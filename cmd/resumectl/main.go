// Command resumectl renders resume documents and runs the enhance pipeline
// from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "resumectl",
	Short:         "ATS resume enhancer tools",
	Long:          "resumectl renders ResumeDocument JSON to HTML and PDF, and runs the full enhance pipeline against a resume file and a job description.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
