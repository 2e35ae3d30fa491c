package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axellelanca/edgelink/cmd"
	"github.com/axellelanca/edgelink/internal/config"
	"github.com/axellelanca/edgelink/internal/kv"
)

// MigrateCmd represents the 'migrate' command
// This command creates or updates the key-value table of the SQLite backend
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `This command connects to the configured SQLite database and executes
GORM automatic migrations to create the 'kv_entries' table. Other storage
drivers need no migration.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		if cmd.Cfg.Storage.Driver != config.DriverSQLite && cmd.Cfg.Storage.Driver != "" {
			fmt.Printf("Storage driver %q needs no migration.\n", cmd.Cfg.Storage.Driver)
			return nil
		}

		store, err := kv.OpenSQLite(cmd.Cfg.Storage.SQLite.Path)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer store.Close()

		if err := store.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		fmt.Println("Database migrations executed successfully.")
		return nil
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
