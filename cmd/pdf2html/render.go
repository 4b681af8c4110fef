// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2html/internal/assemble"
	"github.com/pdiddy/pdf2html/internal/report"
	"github.com/pdiddy/pdf2html/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Assemble extracted page SVGs into HTML documents",
	Long: `Render groups the page SVGs in the SVG directory by document, attaches
each page's links to the vector paths under them, and writes one HTML file
per document using templates/base.html. Images in the PDF directory named
<document>-*.{jpg,png,...} are copied next to the HTML and listed after
the pages. Results are recorded in the report database unless --no-report
is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		if err := applyRenderFlags(cmd, &cfg); err != nil {
			return err
		}
		return runRender(cmd.Context(), cfg, os.Stdout)
	},
}

func init() {
	renderCmd.Flags().String("svg-dir", "", "directory of extracted page SVGs")
	renderCmd.Flags().String("pdf-dir", "", "directory searched for document images")
	addRenderFlags(renderCmd)
	rootCmd.AddCommand(renderCmd)
}

func runRender(ctx context.Context, cfg types.PipelineConfig, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var rec assemble.Recorder
	if !cfg.Report.Disabled {
		store, err := report.NewStore(cfg.Report)
		if err != nil {
			return err
		}
		defer store.Close()
		rec = store
	}

	result := assemble.NewRenderer(cfg.Render, nil, rec).RenderAll(ctx, w)
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed rendering", result.Failed)
	}
	return nil
}
