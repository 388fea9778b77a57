package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/uniroute/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "uniroute",
		Short: "Page routing helpers for mini-program runtimes",
		Long: `uniroute builds and parses page URLs the way the navigation
helpers do, and serves a page runtime bridge.

  • build   print the URL a navigation would open
  • parse   decode a full path into a route snapshot
  • serve   run the runtime bridge and control API`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		buildCmd(),
		parseCmd(),
		serveCmd(),
		versionCmd(),
	)
	return root
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
