package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jawat-my/saferoute/api"
	"github.com/jawat-my/saferoute/config"
	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/core"
	"github.com/jawat-my/saferoute/utils"
)

var (
	configPath string
	logLevel   string
)

// NewRootCmd creates the root 'saferoute' command with persistent flags and
// every subcommand.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{Use: "saferoute"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", constants.ConfigFileName, "Path to saferoute config JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug or production)")

	// Dependencies are wired in PersistentPreRun, after flags are parsed.
	// The service built below holds the pointer, so commands constructed
	// here see the wired bundle at call time.
	deps := &core.Dependencies{}
	var cleanup func()

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Load environment variables from .env file, if present
		_ = godotenv.Load()

		if logLevel != "" {
			utils.SetMode(logLevel)
		}

		cfg, err := loadRelayConfig()
		if err != nil {
			return err
		}
		wired, cleanupFn, err := core.InitializeDependencies(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		*deps = *wired
		cleanup = cleanupFn
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if cleanup != nil {
			cleanup()
		}
	}

	// Create the service
	svc := api.NewRelayService(deps)

	// Attach the commands generated from the operation registry.
	for _, c := range api.GenerateCLICommands(svc) {
		rootCmd.AddCommand(c)
	}

	// Hand-written commands: no registry operation, or flag handling the
	// generator cannot express.
	rootCmd.AddCommand(
		newServeCmd(deps),
		newMCPCmd(svc),
		newTablesCmd(svc),
		newSOPCmd(deps),
		newPPSCmd(deps, svc),
	)

	return rootCmd
}

// loadRelayConfig loads the config file, overlays the environment, and
// fills defaults.
func loadRelayConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, utils.Errorf("failed to load config %s: %v", configPath, err)
	}
	if err := config.FromEnv(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
