// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2html/pkg/types"
)

// envKeys are the config keys that can be set from PDF2HTML_* variables,
// e.g. PDF2HTML_EXTRACTION_BACKEND.
var envKeys = []string{
	"extraction.backend",
	"extraction.mutool_path",
	"extraction.pdf_dir",
	"extraction.svg_dir",
	"extraction.precision",
	"render.svg_dir",
	"render.html_dir",
	"render.template_dir",
	"render.pdf_dir",
	"render.page_height",
	"render.page_height_from_viewbox",
	"render.flip_links",
	"render.overlay_space",
	"report.dir",
	"report.disabled",
}

func bindEnv(v *viper.Viper) {
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
}

// loadConfig returns the pipeline configuration: defaults, overlaid by the
// config file and environment.
func loadConfig(v *viper.Viper) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.WeaklyTypedInput = true
	})
	if err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg, nil
}

// parsePages parses a page selection such as "1,3,5-7".
func parsePages(s string) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		last := first
		if isRange {
			if last, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		if first < 1 || last < first {
			return nil, fmt.Errorf("invalid page range %q", part)
		}
		for n := first; n <= last; n++ {
			pages = append(pages, n)
		}
	}
	return pages, nil
}

// addExtractFlags registers the extraction flags on cmd.
func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "SVG backend: fitz or mutool")
	cmd.Flags().String("pdf-dir", "", "directory of input PDFs")
	cmd.Flags().String("svg-dir", "", "output directory for page SVGs")
	cmd.Flags().String("pages", "", "pages to extract, e.g. 1,3,5-7 (default all)")
	cmd.Flags().Int("precision", 0, "decimal places kept in SVG numbers; negative disables optimization")
}

// addRenderFlags registers the render flags on cmd.
func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().String("html-dir", "", "output directory for HTML documents")
	cmd.Flags().String("template-dir", "", "directory holding base.html")
	cmd.Flags().Float64("page-height", 0, "page height in points used to flip link rectangles (default: each page's viewBox)")
	cmd.Flags().Bool("no-flip", false, "match links without flipping them into SVG space")
	cmd.Flags().String("overlay", "", "overlay coordinate space: pdf or svg")
	cmd.Flags().Bool("no-report", false, "do not record results in the report database")
}

// applyExtractFlags overrides cfg with the extraction flags set on cmd.
// --pdf-dir and --svg-dir also apply to the render stage so convert reads
// what it wrote.
func applyExtractFlags(cmd *cobra.Command, cfg *types.PipelineConfig) error {
	f := cmd.Flags()
	if f.Changed("backend") {
		b, _ := f.GetString("backend")
		cfg.Extraction.Backend = types.ExtractionBackend(b)
	}
	if f.Changed("pdf-dir") {
		d, _ := f.GetString("pdf-dir")
		cfg.Extraction.PDFDir = d
		cfg.Render.PDFDir = d
	}
	if f.Changed("svg-dir") {
		d, _ := f.GetString("svg-dir")
		cfg.Extraction.SVGDir = d
		cfg.Render.SVGDir = d
	}
	if f.Changed("precision") {
		p, _ := f.GetInt("precision")
		cfg.Extraction.Precision = p
	}
	if f.Changed("pages") {
		s, _ := f.GetString("pages")
		pages, err := parsePages(s)
		if err != nil {
			return err
		}
		cfg.Extraction.Pages = pages
	}
	return nil
}

// applyRenderFlags overrides cfg with the render flags set on cmd.
func applyRenderFlags(cmd *cobra.Command, cfg *types.PipelineConfig) error {
	f := cmd.Flags()
	if f.Changed("svg-dir") {
		cfg.Render.SVGDir, _ = f.GetString("svg-dir")
	}
	if f.Changed("pdf-dir") {
		cfg.Render.PDFDir, _ = f.GetString("pdf-dir")
	}
	if f.Changed("html-dir") {
		cfg.Render.HTMLDir, _ = f.GetString("html-dir")
	}
	if f.Changed("template-dir") {
		cfg.Render.TemplateDir, _ = f.GetString("template-dir")
	}
	if f.Changed("page-height") {
		cfg.Render.PageHeight, _ = f.GetFloat64("page-height")
		cfg.Render.PageHeightFromViewBox = false
	}
	if f.Changed("no-flip") {
		noFlip, _ := f.GetBool("no-flip")
		cfg.Render.FlipLinks = !noFlip
	}
	if f.Changed("overlay") {
		s, _ := f.GetString("overlay")
		space := types.OverlaySpace(s)
		if space != types.OverlayPDF && space != types.OverlaySVG {
			return fmt.Errorf("unknown overlay space %q (want %s or %s)", s, types.OverlayPDF, types.OverlaySVG)
		}
		cfg.Render.OverlaySpace = space
	}
	if f.Changed("no-report") {
		cfg.Report.Disabled, _ = f.GetBool("no-report")
	}
	return nil
}
