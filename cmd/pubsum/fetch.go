// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubsum/internal/export"
	"github.com/pdiddy/pubsum/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Look up an author's publications in OpenAlex",
	Long: `Fetch searches OpenAlex for the author, takes the first matching profile and
lists its works. Failed attempts are retried with a fixed backoff
(fetch.max_attempts, fetch.backoff); throttled requests are retried inside
each attempt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		author, _ := cmd.Flags().GetString("author")
		asJSON, _ := cmd.Flags().GetBool("json")
		if author == "" {
			author = appConfig.Session.DefaultAuthor
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		f := newFetcher(appConfig, loadedSecrets, appLog, progressHook(os.Stderr, appConfig.Fetch.MaxAttempts))
		fmt.Fprintf(os.Stderr, "Fetching publications for %s...\n", author)
		records, err := f.Fetch(ctx, author)
		switch {
		case fetch.IsExhausted(err):
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		case err != nil:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return errReported
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return export.JSON(records, out)
		}
		export.Table(records, out)
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("author", "", "author name (default: session.default_author)")
	fetchCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(fetchCmd)
}
