package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rosterhq/roster/engine/infra/postgres"
	"github.com/rosterhq/roster/pkg/config"
	"github.com/rosterhq/roster/pkg/logger"
)

// MigrateCmd returns the migrate command with up, down, and status
// subcommands. Migrations also run at serve startup when
// database.auto_migrate is enabled; this command exists for operators who
// manage schema changes explicitly.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.PersistentFlags().String("env-file", defaultEnvFile, "Path to the environment variables file")
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().String("db-host", "", "Database host (env: DB_HOST)")
	cmd.PersistentFlags().String("db-port", "", "Database port (env: DB_PORT)")
	cmd.PersistentFlags().String("db-user", "", "Database user (env: DB_USER)")
	cmd.PersistentFlags().String("db-password", "", "Database password (env: DB_PASSWORD)")
	cmd.PersistentFlags().String("db-name", "", "Database name (env: DB_NAME)")
	cmd.PersistentFlags().String("db-ssl-mode", "", "Database SSL mode (env: DB_SSL_MODE)")
	cmd.PersistentFlags().String("db-conn-string", "", "Database connection string (env: DB_CONN_STRING)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigration(cmd, postgres.ApplyMigrations)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigration(cmd, postgres.RollbackLastMigration)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the status of all migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigration(cmd, postgres.MigrationStatus)
			},
		},
	)

	return cmd
}

func runMigration(cmd *cobra.Command, op func(context.Context, string) error) error {
	ctx := logger.ContextWithLogger(context.Background(), logger.GetDefault())
	if _, err := loadEnvFile(cmd); err != nil {
		return err
	}
	dsn, err := resolveDatabaseDSN(ctx, cmd)
	if err != nil {
		return err
	}
	return op(ctx, dsn)
}

// resolveDatabaseDSN loads the database configuration through the standard
// source chain and synthesizes the connection string.
func resolveDatabaseDSN(ctx context.Context, cmd *cobra.Command) (string, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", fmt.Errorf("failed to get config flag: %w", err)
	}
	manager, err := loadUnifiedConfig(ctx, cmd, configFile)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := manager.Close(ctx); err != nil {
			logger.FromContext(ctx).Error("Failed to close configuration manager", "error", err)
		}
	}()
	cfg := manager.Get()
	if err := cfg.Database.Validate(); err != nil {
		return "", fmt.Errorf("invalid database configuration: %w", err)
	}
	return databaseDSN(&cfg.Database), nil
}

func databaseDSN(dbCfg *config.DatabaseConfig) string {
	storeCfg := &postgres.Config{
		ConnString: dbCfg.ConnString,
		Host:       dbCfg.Host,
		Port:       dbCfg.Port,
		User:       dbCfg.User,
		Password:   dbCfg.Password.Value(),
		DBName:     dbCfg.DBName,
		SSLMode:    dbCfg.SSLMode,
	}
	return storeCfg.DSN()
}
