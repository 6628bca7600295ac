package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get PATH [KEY=VALUE...]",
	Short: "Send a signed GET under the account root",
	Long: `Send a signed GET to a path under /api/1.0.0/{publickey} and print the
response.

Example:
  thunderpush get /channels/news/
  thunderpush get /users/ status=online`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := client.Get(ctx, args[0], params)
	if err != nil {
		return err
	}
	printResult(cmd, args[0], res)
	return nil
}

func parseParams(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q: expected KEY=VALUE", arg)
		}
		params[k] = v
	}
	return params, nil
}
