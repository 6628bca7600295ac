package cli

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/lestrrat-go/thunderpush"
	"github.com/lestrrat-go/thunderpush/config"
	"github.com/spf13/cobra"
)

var urlSigned bool

var urlCmd = &cobra.Command{
	Use:   "url PATH [KEY=VALUE...]",
	Short: "Print the URL of a path under the account root",
	Long: `Print the absolute URL of a path under /api/1.0.0/{publickey}.

With --signed the URL carries a GET signature valid for the current time,
so it can be pasted into curl (the secret key header is still required).

Examples:
  thunderpush url /channels/news/
  thunderpush url /channels/news/ --signed`,
	Args: cobra.MinimumNArgs(1),
	RunE: runURL,
}

func init() {
	urlCmd.Flags().BoolVar(&urlSigned, "signed", false, "Append a GET signature")
	rootCmd.AddCommand(urlCmd)
}

func runURL(cmd *cobra.Command, args []string) error {
	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	u := cfg.BaseURL(config.JoinPath(cfg.PublicKey, args[0]))
	if !urlSigned {
		if len(params) > 0 {
			u.RawQuery = encodeParams(params)
		}
		fmt.Fprintln(cmd.OutOrStdout(), u.String())
		return nil
	}

	req, err := thunderpush.NewRequest(cfg, http.MethodGet, u, params, nil)
	if err != nil {
		return err
	}
	signed := req.URL()
	signed.RawQuery = encodeParams(req.Params())
	fmt.Fprintln(cmd.OutOrStdout(), signed.String())
	return nil
}

func encodeParams(params map[string]string) string {
	query := make(url.Values, len(params))
	for k, v := range params {
		query.Set(k, v)
	}
	return query.Encode()
}
