package main

import (
	"github.com/aretw0/stepwise/internal/cli"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:     "record",
	Aliases: []string{"records"},
	Short:   "Manage stored records",
}

var recordCreateCmd = &cobra.Command{
	Use:   "create <record-id> [key=value...]",
	Short: "Create a record with initial attributes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attrs, err := cli.ParseAttributes(args[1:])
		if err != nil {
			return err
		}
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Create(cmd.Context(), printer(cmd), args[0], attrs)
	},
}

var recordLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Records(cmd.Context(), printer(cmd))
	},
}

var recordShowCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Print a record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Show(cmd.Context(), printer(cmd), args[0])
	},
}

var recordRmCmd = &cobra.Command{
	Use:   "rm <record-id>...",
	Short: "Remove one or more records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		p := printer(cmd)
		for _, id := range args {
			if err := env.Manager.Delete(cmd.Context(), id); err != nil {
				return err
			}
			p.Success("removed %s", id)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <record-id>",
	Short: "Print the transition history of a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.History(cmd.Context(), printer(cmd), args[0])
	},
}

var transitionsCmd = &cobra.Command{
	Use:   "transitions <machine> <record-id>",
	Short: "List the transitions available to a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Transitions(cmd.Context(), printer(cmd), args[0], args[1])
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <machine> <record-id> <transition>",
	Short: "Apply a transition to a record",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Apply(cmd.Context(), printer(cmd), args[0], args[1], args[2])
	},
}

func init() {
	rootCmd.AddCommand(recordCmd, historyCmd, transitionsCmd, applyCmd)
	recordCmd.AddCommand(recordCreateCmd, recordLsCmd, recordShowCmd, recordRmCmd)
}
