package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/clickgate-io/clickgate/db/migrator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func prompt(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

func newMigrationsResetCmd() *cobra.Command {
	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Reset the database",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !prompt("Are you sure? This operation is irreversible.") {
					return errors.New("canceled")
				}
			}
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			m := migrator.New(cfg.Database)
			fmt.Println("resetting database...")
			if err := m.Reset(); err != nil {
				return err
			}
			fmt.Println("database successfully reset")
			return nil
		},
	}
	reset.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "yes")
	return reset
}

func newMigrationsCmd() *cobra.Command {
	migration := &cobra.Command{
		Use:   "migrations",
		Short: "Manage database migrations",
		Long:  ``,
	}

	migration.PersistentFlags().StringVarP(&configurationFile, "config", "", "", "The configuration filename")

	migration.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the migration status",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			m := migrator.New(cfg.Database)
			version, dirty, err := m.Status()
			if err != nil {
				return err
			}

			if dirty {
				fmt.Printf("%d (dirty)\n", version)
			} else {
				fmt.Printf("%d\n", version)
			}
			return nil
		},
	})

	migration.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run any new migrations",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			m := migrator.New(cfg.Database)
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			fmt.Println("database is up-to-date")
			return nil
		},
	})

	migration.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			m := migrator.New(cfg.Database)
			if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			return nil
		},
	})

	migration.AddCommand(newMigrationsResetCmd())

	return migration
}
