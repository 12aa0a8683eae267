// Command segpub publishes immutable data segments into blob storage.
//
// Logging:
//   - The base logger is created here with output format and level
//   - It is passed to all components via dependency injection
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"segpub/cmd/segpub/cli"
)

var version = "dev"

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	rootCmd := &cobra.Command{
		Use:     "segpub",
		Short:   "Publish immutable data segments to blob storage",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("log-level")
			var lvl slog.Level
			if err := lvl.UnmarshalText([]byte(name)); err != nil {
				return fmt.Errorf("bad --log-level %q: %w", name, err)
			}
			level.Set(lvl)
			return nil
		},
	}
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		cli.NewPublishCommand(logger),
		cli.NewHadoopPathCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
