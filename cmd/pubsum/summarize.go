// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubsum/internal/export"
	"github.com/pdiddy/pubsum/internal/session"
	"github.com/pdiddy/pubsum/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Upload, search, filter and export publications in one pass",
	Long: `Summarize reads a .bib or .xlsx file, optionally narrows it to one author
(searching the file with --source dataset or OpenAlex with --source external),
keeps publications between --from and --to inclusive, prints them and writes
any requested exports.

Without --author every record in the file is kept.`,
	Example: `  pubsum summarize --input refs.bib --author "Jane Doe" --from 2015 --to 2020 --docx summary.docx
  pubsum summarize --input pubs.xlsx --source external --author "Jane Doe" --xlsx out.xlsx`,
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("input", "", "bibliography file (.bib or .xlsx)")
	summarizeCmd.Flags().String("author", "", "author name to search for")
	summarizeCmd.Flags().String("source", "dataset", "where to search: dataset or external")
	summarizeCmd.Flags().Int("from", 0, "first year to keep (default: filter.start_year)")
	summarizeCmd.Flags().Int("to", 0, "last year to keep (default: filter.end_year)")
	summarizeCmd.Flags().String("xlsx", "", "write the filtered records to this .xlsx file")
	summarizeCmd.Flags().String("docx", "", "write a .docx summary to this file")
	summarizeCmd.Flags().String("csl", "", "write CSL-YAML to this file")
	summarizeCmd.Flags().Bool("json", false, "print records as JSON instead of a table")
	summarizeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	author, _ := cmd.Flags().GetString("author")
	sourceFlag, _ := cmd.Flags().GetString("source")
	asJSON, _ := cmd.Flags().GetBool("json")

	source, err := session.ParseSource(sourceFlag)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	stderr := os.Stderr
	var f session.Fetcher
	if source == session.SourceExternal {
		f = newFetcher(appConfig, loadedSecrets, appLog, progressHook(stderr, appConfig.Fetch.MaxAttempts))
	}
	h := newHandlers(appConfig, f, appLog)

	st, notices := h.Upload(ctx, h.NewState(), input, data)
	if printNotices(stderr, notices) {
		return errReported
	}

	if author != "" || source == session.SourceExternal {
		if author == "" {
			author = st.AuthorName
		}
		st, notices = h.GetPublications(ctx, st, author, source)
		if printNotices(stderr, notices) {
			return errReported
		}
		if !st.HasPublications {
			return nil
		}
	} else {
		st.Publications = st.Dataset
		st.HasPublications = true
	}

	start, end := st.StartYear, st.EndYear
	if cmd.Flags().Changed("from") {
		start, _ = cmd.Flags().GetInt("from")
	}
	if cmd.Flags().Changed("to") {
		end, _ = cmd.Flags().GetInt("to")
	}
	st, filtered, notices := h.FilterYears(st, start, end)
	printNotices(stderr, notices)

	out := cmd.OutOrStdout()
	if asJSON {
		if err := export.JSON(filtered, out); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Publications %d-%d\n\n", st.StartYear, st.EndYear)
		export.Table(filtered, out)
	}

	failed := false
	for _, e := range []struct {
		flag   string
		render func(types.RecordSet) (session.Download, []session.Notice)
	}{
		{"xlsx", h.ExportSpreadsheet},
		{"docx", h.ExportDocument},
		{"csl", h.ExportCSL},
	} {
		path, _ := cmd.Flags().GetString(e.flag)
		if path == "" {
			continue
		}
		if !writeExport(stderr, path, e.render, filtered) {
			failed = true
		}
	}
	if failed {
		return errReported
	}
	return nil
}

// writeExport renders records and writes them to path. It reports success.
func writeExport(w io.Writer, path string, render func(types.RecordSet) (session.Download, []session.Notice), records types.RecordSet) bool {
	dl, notices := render(records)
	if session.HasError(notices) {
		printNotices(w, notices)
		return false
	}
	if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
		fmt.Fprintf(w, "error: writing %s: %v\n", path, err)
		return false
	}
	fmt.Fprintf(w, "success: saved %d publications to %s\n", len(records), path)
	return true
}
