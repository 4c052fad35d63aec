package cli

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rosterhq/roster/engine/infra/server"
	"github.com/rosterhq/roster/pkg/config"
	"github.com/rosterhq/roster/pkg/config/definition"
	"github.com/rosterhq/roster/pkg/logger"
)

const defaultEnvFile = ".env"

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the roster HTTP server",
		RunE:  handleServeCmd,
	}

	// Get defaults from registry
	registry := definition.CreateRegistry()

	// Server configuration flags
	cmd.Flags().Int("port", getIntDefault(registry, "server.port"), "Port to run the server on")
	cmd.Flags().String("host", getStringDefault(registry, "server.host"), "Host to bind the server to")
	cmd.Flags().Bool("cors", getBoolDefault(registry, "server.cors_enabled"), "Enable CORS")
	cmd.Flags().String("config", "", "Path to a YAML configuration file")
	cmd.Flags().String("env-file", defaultEnvFile, "Path to the environment variables file")

	// Database configuration flags
	cmd.Flags().String("db-host", "", "Database host (env: DB_HOST)")
	cmd.Flags().String("db-port", "", "Database port (env: DB_PORT)")
	cmd.Flags().String("db-user", "", "Database user (env: DB_USER)")
	cmd.Flags().String("db-password", "", "Database password (env: DB_PASSWORD)")
	cmd.Flags().String("db-name", "", "Database name (env: DB_NAME)")
	cmd.Flags().String("db-ssl-mode", "", "Database SSL mode (env: DB_SSL_MODE)")
	cmd.Flags().String("db-conn-string", "", "Database connection string (env: DB_CONN_STRING)")
	cmd.Flags().Bool("db-auto-migrate", getBoolDefault(registry, "database.auto_migrate"),
		"Apply pending migrations on startup (env: DB_AUTO_MIGRATE)")

	// Monitoring configuration flags
	cmd.Flags().Bool("monitoring-enabled", getBoolDefault(registry, "monitoring.enabled"),
		"Expose Prometheus metrics (env: MONITORING_ENABLED)")
	cmd.Flags().String("monitoring-path", getStringDefault(registry, "monitoring.path"),
		"Metrics endpoint path (env: MONITORING_PATH)")

	// Logging configuration flags
	cmd.Flags().
		String("log-level", getStringDefault(registry, "runtime.log_level"), "Log level (debug, info, warn, error)")
	cmd.Flags().Bool("log-json", false, "Output logs in JSON format")
	cmd.Flags().Bool("log-source", false, "Include source file and line in logs")
	cmd.Flags().Bool("debug", false, "Enable debug mode (sets log level to debug)")

	// Set debug flag to override log level
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		debug, err := cmd.Flags().GetBool("debug")
		if err != nil {
			return fmt.Errorf("failed to get debug flag: %w", err)
		}
		if debug {
			return cmd.Flags().Set("log-level", "debug")
		}
		return nil
	}

	return cmd
}

// loadUnifiedConfig loads configuration using pkg/config with CLI flag overrides
func loadUnifiedConfig(ctx context.Context, cmd *cobra.Command, configFile string) (*config.Manager, error) {
	manager := config.NewManager(config.NewService())

	// Precedence (low to high): defaults, env, YAML file, CLI flags.
	sources := []config.Source{
		config.NewDefaultProvider(),
		config.NewEnvProvider(),
	}
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	cliFlags := make(map[string]any)
	extractCLIFlags(cmd, cliFlags)
	if len(cliFlags) > 0 {
		sources = append(sources, config.NewCLIProvider(cliFlags))
	}

	if _, err := manager.Load(ctx, sources...); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return manager, nil
}

// setupServeEnvironment loads the env file and attaches a configured logger
// to the context.
func setupServeEnvironment(cmd *cobra.Command) (context.Context, error) {
	gin.SetMode(gin.ReleaseMode)
	if _, err := loadEnvFile(cmd); err != nil {
		return nil, err
	}
	logLevel, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger.SetupLogger(logLevel, logJSON, logSource)
	ctx := logger.ContextWithLogger(context.Background(), logger.GetDefault())
	return ctx, nil
}

func handleServeCmd(cmd *cobra.Command, _ []string) error {
	ctx, err := setupServeEnvironment(cmd)
	if err != nil {
		return err
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	manager, err := loadUnifiedConfig(ctx, cmd, configFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := manager.Close(ctx); err != nil {
			logger.FromContext(ctx).Error("Failed to close configuration manager", "error", err)
		}
	}()
	ctx = config.ContextWithManager(ctx, manager)

	srv, err := server.NewServer(ctx)
	if err != nil {
		return err
	}
	return srv.Run()
}
