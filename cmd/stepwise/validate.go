package main

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [machine...]",
	Short: "Check machine configurations for consistency",
	Long:  `Reports undeclared steps, unregistered validators or callbacks and unused steps. Exits non-zero on errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Validate(printer(cmd), args...)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
