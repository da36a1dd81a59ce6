package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fleetops-sim",
	Short: "FleetOps GPS fleet simulation toolkit",
	Long:  "FleetOps-Sim generates realistic GPS fleet telemetry and validates ingestion endpoints against acceptance criteria.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(validateCmd)
}
