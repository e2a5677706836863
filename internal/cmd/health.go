package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medfront/medfront/internal/config"
	"github.com/medfront/medfront/internal/core/store"
	errwrap "github.com/medfront/medfront/internal/errors"
	"github.com/medfront/medfront/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Run a self-health check to verify the configuration and store are usable.",
	Run: func(cmd *cobra.Command, args []string) {
		observability.CLILogger.Info("Running health check...")

		// Check 1: Version info available
		if versionInfo.Version == "" {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewValidationError("version information missing"))
			return
		}
		observability.CLILogger.Debug("Version check passed", zap.String("version", versionInfo.Version))
		observability.CLILogger.Info("✅ Version information available")

		// Check 2: Configuration decodes and validates
		cfg, err := config.FromViper()
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Configuration invalid", err)
			return
		}
		observability.CLILogger.Info("✅ Configuration valid")

		// Check 3: Store opens and responds to a ping
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Store unreachable", err)
			return
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup
		if err := st.CheckHealth(cmd.Context()); err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Store ping failed", err)
			return
		}
		observability.CLILogger.Info("✅ Store reachable")

		observability.CLILogger.Info("")
		observability.CLILogger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
