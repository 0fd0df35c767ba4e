// Package main provides the entry point for the maturity assessment agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "assessment_agent",
	Short: "Data governance maturity assessment agent",
	Long:  "assessment_agent turns survey results for a governance dimension into a framework-scored, quality-gated maturity assessment report.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
