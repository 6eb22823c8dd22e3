package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/uma-tools/umadump/internal/config"
	"github.com/uma-tools/umadump/internal/data"
	"github.com/uma-tools/umadump/internal/db"
)

// NewDataCommand creates the command for extracting master-data tables.
func NewDataCommand() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "data [kinds...]",
		Short: "Extract master-data tables as JSON",
		Long: fmt.Sprintf(`Reads the master database and writes normalized JSON files under the
storage folder. With no arguments every table is extracted.

Available kinds: %s.`, strings.Join(data.Kinds(), ", ")),
		PersistentPreRunE: bindFlags,
		RunE: func(_ *cobra.Command, args []string) (err error) {
			log, err := setup(cfg)
			if err != nil {
				return err
			}

			cfg.Kinds = args

			if cfg.Show {
				return showConfig(cfg)
			}

			session := db.NewSession(cfg)
			defer func() {
				err = multierr.Append(err, session.Close())
			}()

			return data.Run(cfg, log, session)
		},
	}

	return cmd
}
