// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/pdf2html/internal/linkmatch"
	"github.com/pdiddy/pdf2html/internal/pagefile"
	"github.com/pdiddy/pdf2html/internal/svgrewrite"
	"github.com/pdiddy/pdf2html/pkg/types"
)

// Recorder receives the outcome of each rendered page and document.
type Recorder interface {
	RecordPage(ctx context.Context, rec types.PageRecord) error
	RecordDocument(ctx context.Context, doc, htmlPath string, status types.ConversionStatus) error
}

// BatchResult holds the outcome of a render run.
type BatchResult struct {
	Rendered int
	Failed   int

	// Files lists the HTML documents written.
	Files []string
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Rendered + r.Failed
}

// HasFailures reports whether any document failed to render.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Renderer assembles page SVGs into HTML documents.
type Renderer struct {
	cfg types.RenderConfig
	rw  *svgrewrite.Rewriter
	rec Recorder
}

// NewRenderer returns a Renderer. A nil rw is built from cfg; a nil rec
// disables recording.
func NewRenderer(cfg types.RenderConfig, rw *svgrewrite.Rewriter, rec Recorder) *Renderer {
	if rw == nil {
		rw = svgrewrite.New(RewriteOptions(cfg), linkmatch.NewMatcher(cfg.Match))
	}
	return &Renderer{cfg: cfg, rw: rw, rec: rec}
}

// RewriteOptions derives the page rewrite options from cfg.
func RewriteOptions(cfg types.RenderConfig) svgrewrite.Options {
	return svgrewrite.Options{
		PageHeight:            cfg.PageHeight,
		PageHeightFromViewBox: cfg.PageHeightFromViewBox,
		Precision:             cfg.Precision,
		FlipLinks:             cfg.FlipLinks,
		OverlaySpace:          cfg.OverlaySpace,
	}
}

func (r *Renderer) loadTemplate(w io.Writer) (*template.Template, error) {
	path, created, err := EnsureTemplate(r.cfg.TemplateDir)
	if err != nil {
		return nil, err
	}
	if created {
		fmt.Fprintf(w, "Created default template: %s\n", path)
	}
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}
	return tmpl, nil
}

// RenderDocument rewrites svgFiles, in the order given, into
// <HTMLDir>/<doc>.html and returns the path written.
func (r *Renderer) RenderDocument(ctx context.Context, doc string, svgFiles []string, w io.Writer) (string, error) {
	tmpl, err := r.loadTemplate(w)
	if err != nil {
		return "", err
	}
	rw := r.rw
	if _, ok := r.cfg.PageHeights[doc]; ok {
		rw = rw.WithPageHeight(r.cfg.HeightFor(doc))
	}

	status := types.ConversionNone
	contents := make([]template.HTML, 0, len(svgFiles))
	for _, f := range svgFiles {
		raw, err := os.ReadFile(f)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", f, err)
		}
		name := filepath.Base(f)
		links, err := pagefile.LoadLinks(f)
		if err != nil {
			fmt.Fprintf(w, "warning: %s: %v\n", name, err)
			links = nil
		}
		res := rw.Rewrite(string(raw), name, links)
		contents = append(contents, template.HTML(res.SVG))

		rec := pageRecord(doc, name, res.Links)
		status = mergeStatus(status, rec.Status())
		if len(res.Links) > 0 {
			fmt.Fprintf(w, "  %s: %d links, %d fallback\n", name, len(res.Links), countFallback(res.Links))
		}
		if r.rec != nil {
			if err := r.rec.RecordPage(ctx, rec); err != nil {
				fmt.Fprintf(w, "warning: recording %s: %v\n", name, err)
			}
		}
	}

	images, err := CopyImages(doc, r.cfg.PDFDir, r.cfg.HTMLDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.cfg.HTMLDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", r.cfg.HTMLDir, err)
	}
	out := filepath.Join(r.cfg.HTMLDir, doc+".html")
	if err := writeHTML(tmpl, out, map[string]any{
		"title":           Title(doc),
		"svg_contents":    contents,
		"photo_filenames": images,
	}); err != nil {
		return "", err
	}

	fmt.Fprintf(w, "Generated HTML: %s\n", out)
	if r.rec != nil {
		if err := r.rec.RecordDocument(ctx, doc, out, status); err != nil {
			fmt.Fprintf(w, "warning: recording %s: %v\n", doc, err)
		}
	}
	return out, nil
}

func writeHTML(tmpl *template.Template, path string, data map[string]any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// RenderAll renders every document found in the SVG directory, printing
// per-document status to w and returning a summary.
func (r *Renderer) RenderAll(ctx context.Context, w io.Writer) BatchResult {
	var result BatchResult

	groups, err := GroupPages(r.cfg.SVGDir)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(w, "SVG directory %s does not exist\n", r.cfg.SVGDir)
		return result
	}
	if err != nil {
		fmt.Fprintf(w, "%v\n", err)
		return result
	}

	for _, doc := range SortedDocuments(groups) {
		out, err := r.RenderDocument(ctx, doc, groups[doc], w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", doc, err)
			result.Failed++
			if r.rec != nil {
				_ = r.rec.RecordDocument(ctx, doc, "", types.ConversionFailed)
			}
			continue
		}
		result.Rendered++
		result.Files = append(result.Files, out)
	}
	fmt.Fprintf(w, "\nRender summary: %d rendered, %d failed (total: %d)\n",
		result.Rendered, result.Failed, result.Total())
	return result
}

func pageRecord(doc, name string, outcomes []svgrewrite.LinkOutcome) types.PageRecord {
	page := pagefile.PageIndex(pagefile.Stem(name))
	if page == 0 {
		page = 1
	}
	rec := types.PageRecord{Document: doc, Page: page, SVGFile: name}
	for _, o := range outcomes {
		rec.Links = append(rec.Links, types.LinkResult{
			URI:          o.URI,
			MatchedPaths: o.Matched,
			Fallback:     o.Fallback,
		})
	}
	return rec
}

// mergeStatus folds a page status into the document status: partial wins
// over converted, which wins over none.
func mergeStatus(doc, page types.ConversionStatus) types.ConversionStatus {
	switch {
	case doc == types.ConversionPartial || page == types.ConversionPartial:
		return types.ConversionPartial
	case doc == types.ConversionDone || page == types.ConversionDone:
		return types.ConversionDone
	default:
		return types.ConversionNone
	}
}

func countFallback(outcomes []svgrewrite.LinkOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Fallback {
			n++
		}
	}
	return n
}
