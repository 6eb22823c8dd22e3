package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/uma-tools/umadump/internal/assets"
	"github.com/uma-tools/umadump/internal/config"
	"github.com/uma-tools/umadump/internal/db"
)

// NewAssetsCommand creates the command for dumping asset bundles.
func NewAssetsCommand() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "assets [flags]",
		Short: "Decrypt and unpack asset bundles",
		Long: `Iterates the metadata database, decrypts each referenced bundle from
the game's dat folder, and writes the unpacked images under the
storage folder, mirroring the bundle paths.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: bindFlags,
		RunE: func(_ *cobra.Command, _ []string) (err error) {
			log, err := setup(cfg)
			if err != nil {
				return err
			}

			if cfg.Show {
				return showConfig(cfg)
			}

			session := db.NewSession(cfg)
			defer func() {
				err = multierr.Append(err, session.Close())
			}()

			dumper, err := assets.NewDumper(cfg, log, session)
			if err != nil {
				return err
			}

			return dumper.Run()
		},
	}

	cmd.Flags().StringSliceP("kind", "k", nil, "Only dump assets of these kinds (repeatable)")
	cmd.Flags().StringSlice("include", nil, "Only dump bundle paths matching these glob patterns")
	cmd.Flags().StringSlice("exclude", nil, "Skip bundle paths matching these glob patterns")
	cmd.Flags().Bool("skip-existing", false, "Skip bundles whose output folder already exists")
	cmd.Flags().Int("skip-rows", 0, "Skip this many DB rows before processing")

	return cmd
}
