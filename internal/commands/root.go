// Package commands implements the saldoctl operator CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"saldo/internal/config"
	"saldo/internal/database"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "saldoctl",
		Short: "Operate a saldo deployment",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newReconcileCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newTokenCommand())

	return rootCmd
}

// openDatabase loads configuration and connects to the configured database.
// The caller must Close the returned manager.
func openDatabase() (*config.Config, *database.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return cfg, manager, nil
}
