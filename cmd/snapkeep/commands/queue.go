package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <queue> [file]",
		Short: "Publish a JSON message to a queue",
		Long:  "Publish a JSON message to a queue. The message is read from file, or from stdin when no file is given.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				body []byte
				err  error
			)
			if len(args) == 2 {
				body, err = os.ReadFile(args[1])
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return zerr.Wrap(err, "failed to read message")
			}
			return c.app.Send(cmd.Context(), args[0], body)
		},
	}
}

func (c *CLI) newBacklogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backlog [queue]",
		Short: "Fail while a queue still holds pending messages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queue := ""
			if len(args) == 1 {
				queue = args[0]
			}
			if err := c.app.CheckBacklog(cmd.Context(), queue); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no pending messages")
			return nil
		},
	}
}
