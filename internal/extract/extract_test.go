// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2html/internal/pagefile"
	"github.com/pdiddy/pdf2html/pkg/types"
)

// fakeDocument serves canned page SVGs and links.
type fakeDocument struct {
	svgs    []string
	links   map[int][]types.LinkAnnotation
	linkErr map[int]error
	svgErr  map[int]error
	closed  bool
}

func (f *fakeDocument) NumPage() int { return len(f.svgs) }

func (f *fakeDocument) SVG(page int) (string, error) {
	if err := f.svgErr[page]; err != nil {
		return "", err
	}
	return f.svgs[page], nil
}

func (f *fakeDocument) Links(page int) ([]types.LinkAnnotation, error) {
	if err := f.linkErr[page]; err != nil {
		return nil, err
	}
	return f.links[page], nil
}

func (f *fakeDocument) Close() error {
	f.closed = true
	return nil
}

func openerFor(docs map[string]*fakeDocument) Opener {
	return func(path string) (Document, error) {
		d, ok := docs[filepath.Base(path)]
		if !ok {
			return nil, errors.New("cannot open " + path)
		}
		return d, nil
	}
}

const pageSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="595.2756" height="841.8898"><path d="M10.123456 20.987654L30 40"/></svg>`

func TestExtractPDF(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ExtractionConfig{SVGDir: filepath.Join(dir, "svg"), Precision: 2}

	link := types.LinkAnnotation{URI: "https://example.com", BBox: types.Rect{X: 10, Y: 20, Width: 100, Height: 30}}
	doc := &fakeDocument{
		svgs:    []string{pageSVG, "  ", pageSVG},
		links:   map[int][]types.LinkAnnotation{0: {link}},
		linkErr: map[int]error{2: errors.New("broken annots")},
	}

	var buf bytes.Buffer
	files, err := ExtractPDF(openerFor(map[string]*fakeDocument{"report.pdf": doc}), filepath.Join(dir, "report.pdf"), cfg, &buf)
	require.NoError(t, err)
	assert.True(t, doc.closed)

	assert.Equal(t, []string{
		filepath.Join(cfg.SVGDir, "report_page_1.svg"),
		filepath.Join(cfg.SVGDir, "report_page_3.svg"),
	}, files)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `d="M10.12 20.99L30 40"`)
	assert.Contains(t, string(data), `width="595.28"`)

	links, err := pagefile.LoadLinks(files[0])
	require.NoError(t, err)
	assert.Equal(t, []types.LinkAnnotation{link}, links)

	_, err = os.Stat(pagefile.LinksFileName(files[1]))
	assert.True(t, os.IsNotExist(err), "no sidecar for a page without links")

	out := buf.String()
	assert.Contains(t, out, "extracted: report_page_1.svg (1 links)")
	assert.Contains(t, out, "skipped: report page 2 (empty)")
	assert.Contains(t, out, "warning: report page 3: links unavailable (broken annots)")
	assert.Contains(t, out, "extracted: report_page_3.svg (0 links)")
}

func TestExtractPDFRemovesStaleLinks(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ExtractionConfig{SVGDir: filepath.Join(dir, "svg"), Precision: 2}
	pdfPath := filepath.Join(dir, "report.pdf")

	doc := &fakeDocument{
		svgs:  []string{pageSVG},
		links: map[int][]types.LinkAnnotation{0: {{URI: "https://old.example.com", BBox: types.Rect{Width: 1, Height: 1}}}},
	}
	files, err := ExtractPDF(openerFor(map[string]*fakeDocument{"report.pdf": doc}), pdfPath, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	require.FileExists(t, pagefile.LinksFileName(files[0]))

	doc = &fakeDocument{svgs: []string{pageSVG}}
	files, err = ExtractPDF(openerFor(map[string]*fakeDocument{"report.pdf": doc}), pdfPath, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NoFileExists(t, pagefile.LinksFileName(files[0]))
}

func TestExtractPDFPrecisionDisabled(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ExtractionConfig{SVGDir: dir, Precision: -1}
	doc := &fakeDocument{svgs: []string{pageSVG}}

	files, err := ExtractPDF(openerFor(map[string]*fakeDocument{"a.pdf": doc}), "a.pdf", cfg, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, pageSVG, string(data))
}

func TestExtractPDFPageSelection(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ExtractionConfig{SVGDir: dir, Pages: []int{3, 1, 3, 9}}
	doc := &fakeDocument{svgs: []string{pageSVG, pageSVG, pageSVG}}

	var buf bytes.Buffer
	files, err := ExtractPDF(openerFor(map[string]*fakeDocument{"a.pdf": doc}), "a.pdf", cfg, &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a_page_1.svg"),
		filepath.Join(dir, "a_page_3.svg"),
	}, files)
	assert.Contains(t, buf.String(), "warning: a has no page 9 (pages: 3)")
}

func TestExtractPDFErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ExtractionConfig{SVGDir: dir}

	_, err := ExtractPDF(openerFor(nil), "missing.pdf", cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "opening missing.pdf")

	doc := &fakeDocument{
		svgs:   []string{pageSVG, pageSVG},
		svgErr: map[int]error{1: errors.New("render failed")},
	}
	files, err := ExtractPDF(openerFor(map[string]*fakeDocument{"b.pdf": doc}), "b.pdf", cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "rendering page 2 of b.pdf")
	assert.Len(t, files, 1, "pages written before the failure are reported")
	assert.True(t, doc.closed)
}

func TestExtractAll(t *testing.T) {
	dir := t.TempDir()
	pdfDir := filepath.Join(dir, "pdfs")
	require.NoError(t, os.MkdirAll(pdfDir, 0o755))
	for _, name := range []string{"good.pdf", "blank.PDF", "bad.pdf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(pdfDir, name), []byte("%PDF-1.4"), 0o644))
	}

	docs := map[string]*fakeDocument{
		"good.pdf":  {svgs: []string{pageSVG, pageSVG}},
		"blank.PDF": {svgs: []string{""}},
	}
	cfg := types.ExtractionConfig{PDFDir: pdfDir, SVGDir: filepath.Join(dir, "svg")}

	var buf bytes.Buffer
	result := ExtractAll(openerFor(docs), cfg, &buf)

	assert.Equal(t, 1, result.Extracted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Total())
	assert.True(t, result.HasFailures())
	assert.Len(t, result.Files, 2)

	out := buf.String()
	assert.Contains(t, out, "failed:  bad.pdf")
	assert.Contains(t, out, "skipped: blank.PDF (no pages)")
	assert.Contains(t, out, "Extraction summary: 1 extracted, 1 skipped, 1 failed (total: 3), 2 pages")
}

func TestExtractAllMissingDir(t *testing.T) {
	var buf bytes.Buffer
	result := ExtractAll(openerFor(nil), types.ExtractionConfig{PDFDir: filepath.Join(t.TempDir(), "nope")}, &buf)
	assert.Zero(t, result.Total())
	assert.Contains(t, buf.String(), "PDF directory")
}

func TestExtractAllEmptyDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	result := ExtractAll(openerFor(nil), types.ExtractionConfig{PDFDir: dir}, &buf)
	assert.Zero(t, result.Total())
	assert.False(t, result.HasFailures())
	assert.Contains(t, buf.String(), "no PDF files found")
}

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	got, err := FindPDFs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.PDF"), filepath.Join(dir, "b.pdf")}, got)

	_, err = FindPDFs(filepath.Join(dir, "c.txt"))
	assert.Error(t, err)
}

func TestFindPDFsMixedCaseAndMetacharacters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scans [x]{y}")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested.pdf"), 0o755))
	for _, name := range []string{"one.Pdf", "two.pDF", "notes.pdf.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	got, err := FindPDFs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "one.Pdf"), filepath.Join(dir, "two.pDF")}, got)
}

type fixtureLink struct {
	x, y, w, h float64
	uri        string
}

// writeLinkedPDF writes an A4 PDF with one page per entry of pages, each
// carrying the given URI links in top-left page coordinates.
func writeLinkedPDF(t *testing.T, path string, pages [][]fixtureLink) {
	t.Helper()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: 595, Ht: 842},
	})
	for _, links := range pages {
		pdf.AddPage()
		pdf.Line(50, 50, 200, 50)
		for _, l := range links {
			pdf.Rect(l.x, l.y, l.w, l.h, "D")
			pdf.LinkString(l.x, l.y, l.w, l.h, l.uri)
		}
	}
	require.NoError(t, pdf.OutputFileAndClose(path))
}

func TestReadLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked.pdf")
	writeLinkedPDF(t, path, [][]fixtureLink{
		{{10, 20, 100, 30, "https://example.com"}},
		nil,
		{
			{50, 100, 80, 12, "https://example.org/a?b=c"},
			{300, 700, 40, 20, "mailto:someone@example.com"},
		},
	})

	pages, err := ReadLinks(path)
	require.NoError(t, err)
	require.Len(t, pages, 3)

	require.Len(t, pages[0], 1)
	assert.Equal(t, "https://example.com", pages[0][0].URI)
	assertRect(t, types.Rect{X: 10, Y: 20, Width: 100, Height: 30}, pages[0][0].BBox)

	assert.Empty(t, pages[1])

	require.Len(t, pages[2], 2)
	assert.Equal(t, "https://example.org/a?b=c", pages[2][0].URI)
	assertRect(t, types.Rect{X: 50, Y: 100, Width: 80, Height: 12}, pages[2][0].BBox)
	assert.Equal(t, "mailto:someone@example.com", pages[2][1].URI)
	assertRect(t, types.Rect{X: 300, Y: 700, Width: 40, Height: 20}, pages[2][1].BBox)
}

func TestReadLinksNotPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))
	_, err := ReadLinks(path)
	assert.Error(t, err)
}

func assertRect(t *testing.T, want, got types.Rect) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 0.01)
	assert.InDelta(t, want.Y, got.Y, 0.01)
	assert.InDelta(t, want.Width, got.Width, 0.01)
	assert.InDelta(t, want.Height, got.Height, 0.01)
}

func TestNormalizeRect(t *testing.T) {
	tests := []struct {
		name     string
		rect     [4]float64
		mediaBox [4]float64
		want     types.Rect
	}{
		{"ordered", [4]float64{10, 792, 110, 822}, [4]float64{0, 0, 595, 842}, types.Rect{X: 10, Y: 20, Width: 100, Height: 30}},
		{"reversed corners", [4]float64{110, 822, 10, 792}, [4]float64{0, 0, 595, 842}, types.Rect{X: 10, Y: 20, Width: 100, Height: 30}},
		{"offset media box", [4]float64{60, 792, 160, 822}, [4]float64{50, 50, 645, 892}, types.Rect{X: 10, Y: 70, Width: 100, Height: 30}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeRect(tc.rect, tc.mediaBox))
		})
	}
}

// fakeTool records DrawSVG calls.
type fakeTool struct {
	calls []string
}

func (f *fakeTool) Name() string    { return "mutool" }
func (f *fakeTool) Available() bool { return true }

func (f *fakeTool) DrawSVG(pdfPath string, page int) (string, error) {
	f.calls = append(f.calls, filepath.Base(pdfPath)+":"+strings.Repeat("I", page))
	return pageSVG, nil
}

func TestMutoolOpener(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linked.pdf")
	writeLinkedPDF(t, path, [][]fixtureLink{
		nil,
		{{10, 20, 100, 30, "https://example.com"}},
	})

	tool := &fakeTool{}
	doc, err := MutoolOpener(tool)(path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 2, doc.NumPage())
	svg, err := doc.SVG(1)
	require.NoError(t, err)
	assert.Equal(t, pageSVG, svg)
	assert.Equal(t, []string{"linked.pdf:II"}, tool.calls)

	links, err := doc.Links(1)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com", links[0].URI)

	links, err = doc.Links(5)
	require.NoError(t, err)
	assert.Nil(t, links)
}

func TestPDFDocumentLinkError(t *testing.T) {
	d := &pdfDocument{pages: &mutoolPages{count: 1}, linkErr: errors.New("bad xref")}
	_, err := d.Links(0)
	assert.EqualError(t, err, "bad xref")
}

func TestNewOpener(t *testing.T) {
	open, err := NewOpener(types.ExtractionConfig{Backend: types.BackendFitz})
	require.NoError(t, err)
	assert.NotNil(t, open)

	_, err = NewOpener(types.ExtractionConfig{Backend: "ghostscript"})
	assert.ErrorContains(t, err, `unknown extraction backend "ghostscript"`)
}
