// Package main provides the entry point for the MatchForge API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matchforge",
	Short: "MatchForge talent matching server",
	Long:  "MatchForge crawls engineer and company profiles, beautifies job descriptions and scores role/engineer matches across five dimensions via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
