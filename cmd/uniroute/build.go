package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/uniroute/internal/errors"
	"github.com/vango-dev/uniroute/pkg/navigator"
	"github.com/vango-dev/uniroute/pkg/query"
)

func buildCmd() *cobra.Command {
	var (
		url   string
		pairs []string
		raw   string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Print the URL a navigation would open",
		Long: `Build the URL handed to the runtime for a page and a query.

Query pairs are percent-encoded in the order given. --raw passes a
query string through untouched.

Examples:
  uniroute build --url /pages/detail/index --query id=7 --query name="a b"
  uniroute build --url /pages/list/index --raw "page=2&sort=desc"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := buildTarget(url, pairs, raw, cmd.Flags().Changed("raw"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), navigator.URL(target))
			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "Page path, e.g. /pages/detail/index")
	cmd.Flags().StringArrayVarP(&pairs, "query", "q", nil, "Query pair key=value (repeatable)")
	cmd.Flags().StringVar(&raw, "raw", "", "Raw query string, sent verbatim")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

// buildTarget turns command-line flags into a navigation target.
func buildTarget(url string, pairs []string, raw string, rawSet bool) (navigator.Target, error) {
	target := navigator.Target{URL: url}

	if rawSet {
		if len(pairs) > 0 {
			return target, errors.New("E180").
				WithDetail("--raw and --query cannot be combined")
		}
		target.Query = query.Raw(raw)
		return target, nil
	}

	values, err := parsePairs(pairs)
	if err != nil {
		return target, err
	}
	if values.Len() > 0 {
		target.Query = values
	}
	return target, nil
}

// parsePairs reads key=value flags into ordered values. A repeated key
// keeps its first position and its last value.
func parsePairs(pairs []string) (query.Values, error) {
	var values query.Values
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, errors.New("E180").
				WithDetailf("%q is not key=value", p).
				WithSuggestion("pass each pair as --query key=value")
		}
		values.Set(key, value)
	}
	return values, nil
}
