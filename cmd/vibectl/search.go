package main

import "github.com/spf13/cobra"

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query> [limit]",
	Short: "Substring search over the catalogue",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		req := newClient().R().SetQueryParam("q", args[0])
		if len(args) > 1 {
			req.SetQueryParam("limit", args[1])
		}
		fetch(req, "/search")
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
