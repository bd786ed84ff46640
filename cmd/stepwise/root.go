package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aretw0/stepwise/internal/cli"
	"github.com/aretw0/stepwise/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// encryptionKeyEnv holds the hex-encoded AES-256 key for encryption at rest.
const encryptionKeyEnv = "STEPWISE_ENCRYPTION_KEY"

var rootCmd = &cobra.Command{
	Use:           "stepwise",
	Short:         "Stepwise drives records through configured state machines",
	Long:          `Stepwise validates machine configurations, applies transitions to stored records and serves them over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		tui.NewPrinter(os.Stderr).Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "stepwise.yaml", "Settings file (YAML or JSON)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (overrides the settings file)")
	flags.String("store", cli.StoreFile, "Record store: memory, file, redis or sqlite")
	flags.String("dir", ".stepwise/records", "Directory of the file store")
	flags.String("redis-addr", "localhost:6379", "Address of the redis store")
	flags.String("db", "stepwise.db", "Database file of the sqlite store")
}

// options reads the persistent flags.
func options(cmd *cobra.Command) (cli.Options, error) {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.ConfigPath, _ = flags.GetString("config")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.Store, _ = flags.GetString("store")
	opts.Dir, _ = flags.GetString("dir")
	opts.RedisAddr, _ = flags.GetString("redis-addr")
	opts.DB, _ = flags.GetString("db")

	if raw := os.Getenv(encryptionKeyEnv); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", encryptionKeyEnv, err)
		}
		opts.EncryptionKey = key
	}
	return opts, nil
}

// openEnv builds the environment for a command. The caller closes it.
func openEnv(cmd *cobra.Command, tweak ...func(*cli.Options)) (*cli.Env, error) {
	opts, err := options(cmd)
	if err != nil {
		return nil, err
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	return cli.Open(cmd.Context(), opts)
}

func printer(cmd *cobra.Command) *tui.Printer {
	return tui.NewPrinter(cmd.OutOrStdout())
}
