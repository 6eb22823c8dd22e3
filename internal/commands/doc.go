// Package commands provides the command-line interface for the
// umadump tool.
//
// It implements commands for:
//   - dumping decrypted asset bundles (assets)
//   - extracting master-data JSON tables (data)
//   - listing the asset kinds present in the metadata DB (kinds)
//   - printing the derived database key (dbkey)
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands
