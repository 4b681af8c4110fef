// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2html/internal/extract"
	"github.com/pdiddy/pdf2html/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdfs...]",
	Short: "Render PDF pages to SVG and save their link tables",
	Long: `Extract writes one SVG per page into the SVG directory, named
<document>_page_<n>.svg, plus a <document>_page_<n>_links.json sidecar
for every page that carries URI links. With no arguments every PDF in
the PDF directory is processed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if err := applyExtractFlags(cmd, &cfg); err != nil {
			return err
		}
		return runExtract(cfg.Extraction, args, os.Stdout)
	},
}

func init() {
	addExtractFlags(extractCmd)
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cfg types.ExtractionConfig, pdfs []string, w io.Writer) error {
	open, err := extract.NewOpener(cfg)
	if err != nil {
		return err
	}

	if len(pdfs) == 0 {
		result := extract.ExtractAll(open, cfg, w)
		if result.HasFailures() {
			return fmt.Errorf("%d PDF(s) failed extraction", result.Failed)
		}
		return nil
	}

	failed := 0
	for _, p := range pdfs {
		if _, err := extract.ExtractPDF(open, p, cfg, w); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", p, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d PDF(s) failed extraction", failed)
	}
	return nil
}
