// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2html/internal/report"
	"github.com/pdiddy/pdf2html/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show or export the results of past render runs",
	Long: `Report reads the report database written by render. With no flags it
prints a summary; --list prints every document and its pages, and
--export writes the report to the report directory as yaml or json.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("report-dir", "", "directory holding the report database")
	reportCmd.Flags().Bool("list", false, "list documents with per-page link results")
	reportCmd.Flags().String("export", "", "export format: yaml or json")
	reportCmd.Flags().String("document", "", "restrict to one document")
	reportCmd.Flags().String("status", "", "restrict to documents with this status")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("report-dir") {
		cfg.Report.Dir, _ = cmd.Flags().GetString("report-dir")
	}

	store, err := report.NewStore(cfg.Report)
	if err != nil {
		return err
	}
	defer store.Close()

	doc, _ := cmd.Flags().GetString("document")
	status, _ := cmd.Flags().GetString("status")
	opts := report.QueryOptions{Document: doc, Status: types.ConversionStatus(status)}
	ctx := context.Background()

	if format, _ := cmd.Flags().GetString("export"); format != "" {
		var path string
		switch format {
		case "yaml":
			path, err = store.ExportYAML(ctx, opts)
		case "json":
			path, err = store.ExportJSON(ctx, opts)
		default:
			return fmt.Errorf("unknown export format %q (want yaml or json)", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported report: %s\n", path)
		return nil
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		docs, err := store.Documents(ctx, opts)
		if err != nil {
			return err
		}
		printDocuments(os.Stdout, docs)
		return nil
	}

	sum, err := store.Summary(ctx)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, sum)
	return nil
}

func printSummary(w io.Writer, sum report.Summary) {
	fmt.Fprintf(w, "Documents: %d\n", sum.Documents)
	statuses := make([]string, 0, len(sum.ByStatus))
	for s := range sum.ByStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(w, "  %-10s %d\n", s, sum.ByStatus[types.ConversionStatus(s)])
	}
	fmt.Fprintf(w, "Pages:     %d\n", sum.Pages)
	fmt.Fprintf(w, "Links:     %d (%d matched, %d fallback)\n", sum.Links, sum.Matched, sum.Fallback)
}

func printDocuments(w io.Writer, docs []report.DocumentReport) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents recorded.")
		return
	}
	for _, d := range docs {
		fmt.Fprintf(w, "%s [%s] %s\n", d.Name, d.Status, d.HTMLPath)
		for _, p := range d.Pages {
			fmt.Fprintf(w, "  page %d: %d links\n", p.Page, len(p.Links))
			for _, l := range p.Links {
				if l.Fallback {
					fmt.Fprintf(w, "    %s (fallback)\n", l.URI)
				} else {
					fmt.Fprintf(w, "    %s (%d paths)\n", l.URI, l.MatchedPaths)
				}
			}
		}
	}
}
