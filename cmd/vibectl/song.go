package main

import "github.com/spf13/cobra"

// songCmd represents the song command
var songCmd = &cobra.Command{
	Use:   "song <id>",
	Short: "Look up one catalogue track",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fetch(newClient().R(), "/songs/"+args[0])
	},
}

func init() {
	rootCmd.AddCommand(songCmd)
}
