package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uma-tools/umadump/internal/abcrypt"
)

// NewDBKeyCommand creates the command for printing the derived meta DB key.
func NewDBKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dbkey",
		Short: "Print the derived metadata database key",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			key, err := abcrypt.MetaDBKey()
			if err != nil {
				return err
			}

			fmt.Println(key)

			return nil
		},
	}
}
