package main

import "github.com/spf13/cobra"

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Server status and resource load state",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fetch(newClient().R(), "/health")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
