// Package config holds the runtime configuration shared by all
// subcommands, populated from flags and UMADUMP_* environment
// variables through viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	// Common flags
	AppData string `mapstructure:"appdata" validate:"required"`
	Storage string `mapstructure:"storage" validate:"required"`
	Meta    string `mapstructure:"meta"`
	Master  string `mapstructure:"master"`
	LogFile string `mapstructure:"log-file"`
	Quiet   bool
	Stats   bool
	Show    bool

	// assets command flags
	Kinds        []string `mapstructure:"kind"`
	Include      []string
	Exclude      []string
	SkipExisting bool `mapstructure:"skip-existing"`
	SkipRows     int  `mapstructure:"skip-rows" validate:"min=0"`
}

// Validate validates the configuration against the struct tags.
func (c Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}

// DatDir is the directory holding the encrypted blobs, laid out as
// dat/<hash[:2]>/<hash>.
func (c Config) DatDir() string {
	return filepath.Join(c.AppData, "dat")
}

// AssetsDir is where decrypted bundle contents are written.
func (c Config) AssetsDir() string {
	return filepath.Join(c.Storage, "assets")
}

// DataDir is where extracted JSON tables are written.
func (c Config) DataDir() string {
	return filepath.Join(c.Storage, "data")
}

// DefaultAppData returns the game client's data folder for the
// current user, or "" when the home directory cannot be resolved.
func DefaultAppData() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, "AppData", "LocalLow", "Cygames", "umamusume")
}
