package main

import "github.com/spf13/cobra"

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend <seed_id> [k]",
	Short: "Recommendations for a seed track",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		req := newClient().R().SetQueryParam("seed_id", args[0])
		if len(args) > 1 {
			req.SetQueryParam("k", args[1])
		}
		fetch(req, "/recommend")
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}
