// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns PDF files into one SVG file per page plus a JSON
// sidecar listing the page's URI link annotations. Page SVGs come from
// MuPDF, either in-process (go-fitz) or through the mutool binary; links
// are read from the PDF object tree with tabula.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	"github.com/pdiddy/pdf2html/internal/pagefile"
	"github.com/pdiddy/pdf2html/internal/precision"
	"github.com/pdiddy/pdf2html/pkg/types"
)

// Document is an open PDF. Pages are numbered from 0.
type Document interface {
	NumPage() int
	SVG(page int) (string, error)
	Links(page int) ([]types.LinkAnnotation, error)
	Close() error
}

// Opener opens the PDF at path.
type Opener func(path string) (Document, error)

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Extracted int
	Skipped   int
	Failed    int

	// Files lists every SVG written, in extraction order.
	Files []string
}

// Total returns the total number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Skipped + r.Failed
}

// HasFailures reports whether any PDF failed extraction.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ExtractPDF writes the SVG and link sidecar of every selected page of the
// PDF at pdfPath into cfg.SVGDir and returns the SVG paths written. Pages
// that render to an empty SVG are skipped. A page whose links cannot be
// read is written without links.
func ExtractPDF(open Opener, pdfPath string, cfg types.ExtractionConfig, w io.Writer) ([]string, error) {
	doc, err := open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", pdfPath, err)
	}
	defer doc.Close()

	if err := os.MkdirAll(cfg.SVGDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", cfg.SVGDir, err)
	}

	name := pagefile.Stem(pdfPath)
	var files []string
	for _, n := range selectPages(doc.NumPage(), cfg.Pages, name, w) {
		svg, err := doc.SVG(n - 1)
		if err != nil {
			return files, fmt.Errorf("rendering page %d of %s: %w", n, pdfPath, err)
		}
		if strings.TrimSpace(svg) == "" {
			fmt.Fprintf(w, "skipped: %s page %d (empty)\n", name, n)
			continue
		}
		if cfg.Precision >= 0 {
			svg = precision.Optimize(svg, cfg.Precision)
		}

		out := filepath.Join(cfg.SVGDir, pagefile.PageFileName(name, n))
		if err := os.WriteFile(out, []byte(svg), 0o644); err != nil {
			return files, fmt.Errorf("writing %s: %w", out, err)
		}

		links, err := doc.Links(n - 1)
		if err != nil {
			fmt.Fprintf(w, "warning: %s page %d: links unavailable (%v)\n", name, n, err)
			links = nil
		}
		if err := pagefile.SaveLinks(out, links); err != nil {
			return files, err
		}

		files = append(files, out)
		fmt.Fprintf(w, "extracted: %s (%d links)\n", filepath.Base(out), len(links))
	}
	return files, nil
}

// selectPages returns the 1-based pages to extract. An empty selection
// means every page; out-of-range selections are reported and dropped.
func selectPages(numPages int, selected []int, name string, w io.Writer) []int {
	if len(selected) == 0 {
		pages := make([]int, numPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	seen := make(map[int]bool, len(selected))
	var pages []int
	for _, n := range selected {
		if n < 1 || n > numPages {
			fmt.Fprintf(w, "warning: %s has no page %d (pages: %d)\n", name, n, numPages)
			continue
		}
		if !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}
	sort.Ints(pages)
	return pages
}

// FindPDFs returns the PDF files directly under dir, sorted by name. The
// extension is matched without regard to case.
func FindPDFs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("PDF directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("PDF directory %s is not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := doublestar.Match("*.pdf", strings.ToLower(e.Name())); ok {
			matches = append(matches, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// ExtractAll extracts every PDF in cfg.PDFDir, printing per-file status to
// w and returning a summary. A failing PDF is counted and the batch
// continues.
func ExtractAll(open Opener, cfg types.ExtractionConfig, w io.Writer) BatchResult {
	var result BatchResult

	pdfs, err := FindPDFs(cfg.PDFDir)
	if err != nil {
		fmt.Fprintf(w, "%v\n", err)
		return result
	}
	if len(pdfs) == 0 {
		fmt.Fprintf(w, "no PDF files found in %s\n", cfg.PDFDir)
		return result
	}

	for _, p := range pdfs {
		files, err := ExtractPDF(open, p, cfg, w)
		result.Files = append(result.Files, files...)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(p), err)
			result.Failed++
		case len(files) == 0:
			fmt.Fprintf(w, "skipped: %s (no pages)\n", filepath.Base(p))
			result.Skipped++
		default:
			result.Extracted++
		}
	}
	fmt.Fprintf(w, "\nExtraction summary: %d extracted, %d skipped, %d failed (total: %d), %d pages\n",
		result.Extracted, result.Skipped, result.Failed, result.Total(), len(result.Files))
	return result
}
