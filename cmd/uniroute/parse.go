package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/vango-dev/uniroute/internal/config"
	"github.com/vango-dev/uniroute/pkg/host"
	"github.com/vango-dev/uniroute/pkg/query"
	"github.com/vango-dev/uniroute/pkg/route"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <fullPath>",
		Short: "Decode a full path into a route snapshot",
		Long: `Load a full page path the way a page would see it and print the
resulting route snapshot as JSON.

Example:
  uniroute parse "/pages/detail/index?id=7&name=a%20b"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := parseFullPath(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
	return cmd
}

// singlePage is a runtime with one open page.
type singlePage struct {
	page host.StaticPage
	hook host.LoadFunc
}

func (s *singlePage) OnLoad(fn host.LoadFunc)    { s.hook = fn }
func (s *singlePage) CurrentPages() []host.Page { return []host.Page{s.page} }

// parseFullPath opens fullPath on a one-page runtime and returns the route
// snapshot the page would observe.
func parseFullPath(fullPath string) (route.Snapshot, error) {
	path, raw := query.SplitPath(fullPath)
	rt := &singlePage{page: host.StaticPage{
		RoutePath: config.NormalizeRoute(path),
		Full:      fullPath,
	}}

	r := route.Use(rt)
	if err := rt.hook(query.RawMap(raw)); err != nil {
		return route.Snapshot{}, err
	}
	return r.Snapshot(), nil
}
