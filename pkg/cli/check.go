package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the source store is reachable with the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer reader.Close()

			types := make([]string, 0)
			for _, info := range a.factory.ListTypes() {
				types = append(types, info.Type)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connection to %s OK (adapters: %s)\n", a.sourceLabel(), strings.Join(types, ", "))
			return nil
		},
	}
}
