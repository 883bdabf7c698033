package cmd

import (
	"os"

	"github.com/clickgate-io/clickgate/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configurationFile string
)

func initConfig(filename string) (*config.Config, error) {
	cfg := config.New()
	if err := config.Load(filename, cfg); err != nil {
		return nil, errors.Wrap(err, "could not load configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "clickgate",
		Short:        "Click-event intake pipeline",
		Long:         ``,
		SilenceUsage: true,
	}

	cmd.SetOut(os.Stdout)

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newMigrationsCmd())

	return cmd
}

func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
