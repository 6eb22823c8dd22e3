package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/uma-tools/umadump/internal/config"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "umadump [flags] command [flags]",
		Short: "Game asset and master-data extractor",
		Long: `Extracts assets and master-data records from the game client's local
storage: decrypts the metadata database and the per-asset encrypted
bundles, unpacks textures and sprites, and dumps normalized JSON tables.`,
		Version:      version,
		SilenceUsage: true,
	}

	viper.SetEnvPrefix("umadump")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	root.PersistentFlags().String("appdata", config.DefaultAppData(), "Game client data folder")
	root.PersistentFlags().StringP("storage", "o", "storage", "Output folder for dumped assets and data")
	root.PersistentFlags().String("meta", "", "Meta database path (defaults to <appdata>/meta)")
	root.PersistentFlags().String("master", "", "Master database path (defaults to <appdata>/master/master.mdb)")
	root.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().Bool("stats", false, "Print processing statistics")
	root.PersistentFlags().BoolP("show", "s", false, "Show the configuration and exit")

	root.AddCommand(NewAssetsCommand(), NewDataCommand(), NewKindsCommand(), NewDBKeyCommand())

	return root
}
