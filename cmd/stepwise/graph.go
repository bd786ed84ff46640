package main

import (
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <machine>",
	Short: "Export the machine as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) of the machine. With --record, the record's path is highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		recordID, _ := cmd.Flags().GetString("record")
		return env.Graph(cmd.Context(), printer(cmd), args[0], recordID)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("record", "r", "", "Highlight the history and current step of this record")
}
