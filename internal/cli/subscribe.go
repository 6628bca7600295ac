package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe USERID CHANNEL",
	Short: "Add a user to a private channel",
	Long: `Add a user to a private channel.

Example:
  thunderpush subscribe userid private-news`,
	Args: cobra.ExactArgs(2),
	RunE: runSubscribe,
}

func init() {
	rootCmd.AddCommand(subscribeCmd)
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := client.PrivateSubscribe(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	printResult(cmd, args[1], res)
	return nil
}
