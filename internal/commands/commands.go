package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/uma-tools/umadump/internal/config"
	"github.com/uma-tools/umadump/internal/logging"
)

// Execute runs the root command.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

// bindFlags wires the command's own and inherited flags into viper so
// environment variables and flags land in the same keyspace.
func bindFlags(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if err := viper.BindPFlags(cmd.InheritedFlags()); err != nil {
		return fmt.Errorf("binding inherited flags: %w", err)
	}

	return nil
}

// setup unmarshals all config (from env vars and flags) into the
// struct, validates it, and builds the logger.
func setup(cfg *config.Config) (*zap.SugaredLogger, error) {
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return logging.New(cfg.LogFile, cfg.Quiet)
}

// showConfig prints the resolved configuration.
func showConfig(cfg *config.Config) error {
	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	fmt.Println(string(out))

	return nil
}
