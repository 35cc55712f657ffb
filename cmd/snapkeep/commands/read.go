package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/snapkeep/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <symbol>",
		Short: "Print the current snapshot of a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, _ := cmd.Flags().GetBool("history")

			snap, err := c.app.Read(cmd.Context(), args[0], history)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return zerr.Wrap(err, domain.ErrStoreEncodeFailed.Error())
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolP("history", "H", false, "Append the compressed history log to the snapshot histories")
	return cmd
}
