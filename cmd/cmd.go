package cmd

import (
	"context"
	"os"

	"github.com/gaze-network/consensus-verifier/internal/config"
	"github.com/gaze-network/consensus-verifier/pkg/logger"
	"github.com/gaze-network/consensus-verifier/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:          "verifier",
	Long:         `Verify Bitcoin transaction inputs against the consensus rules`,
	SilenceUsage: true,
}

func init() {
	var configFile string

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("network", "mainnet", "network of the verified transactions, E.g. `mainnet`, `testnet`, `signet` or `regtest`")

	// Bind flags to configuration
	config.BindPFlag("network", flags.Lookup("network"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		// Initialize configuration
		config := config.Parse(configFile)

		// Initialize logger
		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slogx.Any("config", config.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	cmd.AddCommand(
		NewVersionCommand(),
		NewFlagsCommand(),
		NewVerifyCommand(),
		NewVerifyTxCommand(),
		NewServeCommand(),
		NewMigrateCommand(),
	)

	// Execute command
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !isVerificationFailure(err) {
			logger.ErrorContext(ctx, "Failed to execute command", err)
		}
		os.Exit(1)
	}
}
