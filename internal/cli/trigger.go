package cli

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/thunderpush"
	"github.com/spf13/cobra"
)

var (
	triggerData  string
	triggerAsync bool
)

var triggerCmd = &cobra.Command{
	Use:   "trigger EVENT CHANNEL [CHANNEL...]",
	Short: "Send an event to one or more channels",
	Long: `Send an event to one or more channels.

--data is sent as JSON if it parses as JSON, as a string otherwise.

Examples:
  thunderpush trigger headline news
  thunderpush trigger headline news sports --data '{"title":"hi"}'
  thunderpush trigger ping news --async`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTrigger,
}

func init() {
	triggerCmd.Flags().StringVarP(&triggerData, "data", "d", "", "Event data")
	triggerCmd.Flags().BoolVar(&triggerAsync, "async", false, "Send to all channels concurrently")
	rootCmd.AddCommand(triggerCmd)
}

func runTrigger(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	event, channels := args[0], args[1:]
	data := eventData(triggerData)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !triggerAsync {
		results, err := client.Trigger(ctx, channels, event, data)
		for i, res := range results {
			printResult(cmd, channels[i], res)
		}
		return err
	}

	pending, err := client.TriggerAsync(ctx, channels, event, data)
	if err != nil {
		return err
	}

	var failed int
	for i, p := range pending {
		res, err := p.Wait(ctx)
		if err != nil {
			failed++
			fmt.Fprintln(cmd.OutOrStdout(), ErrorStyle.Render("✗ "+channels[i]+": "+err.Error()))
			continue
		}
		printResult(cmd, channels[i], res)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d channels failed", failed, len(channels))
	}
	return nil
}

// eventData returns s decoded if it is JSON, s itself otherwise.
func eventData(s string) any {
	if s == "" {
		return nil
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return s
}

func printResult(cmd *cobra.Command, label string, res *thunderpush.Result) {
	w := cmd.OutOrStdout()
	if res.Accepted() {
		fmt.Fprintln(w, SuccessStyle.Render("✓ "+label+": accepted"))
		return
	}

	out, err := json.MarshalIndent(res.Payload, "", "  ")
	if err != nil {
		out = []byte(fmt.Sprintf("%v", res.Payload))
	}
	fmt.Fprintln(w, SuccessStyle.Render("✓ "+label))
	fmt.Fprintln(w, string(out))
}
