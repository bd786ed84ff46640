package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var describeCmd = &cobra.Command{
	Use:   "describe <machine>",
	Short: "Summarize the steps and transitions of a machine",
	Long:  `Prints a Markdown summary of the machine. It is rendered when stdout is a terminal, unless --raw is set.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		raw, _ := cmd.Flags().GetBool("raw")
		if !cmd.Flags().Changed("raw") {
			raw = !isTerminal(os.Stdout)
		}
		return env.Describe(printer(cmd), args[0], raw)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print plain Markdown")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
