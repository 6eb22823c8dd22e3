package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/uma-tools/umadump/internal/config"
	"github.com/uma-tools/umadump/internal/db"
)

// NewKindsCommand creates the command for listing asset kinds.
func NewKindsCommand() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:               "kinds",
		Short:             "List the asset kinds present in the metadata DB",
		Args:              cobra.NoArgs,
		PersistentPreRunE: bindFlags,
		RunE: func(_ *cobra.Command, _ []string) (err error) {
			if _, err := setup(cfg); err != nil {
				return err
			}

			if cfg.Show {
				return showConfig(cfg)
			}

			session := db.NewSession(cfg)
			defer func() {
				err = multierr.Append(err, session.Close())
			}()

			kinds, err := session.Kinds()
			if err != nil {
				return err
			}

			for _, kind := range kinds {
				fmt.Println(kind)
			}

			return nil
		},
	}

	return cmd
}
