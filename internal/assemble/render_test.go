// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/pdiddy/pdf2html/internal/pagefile"
	"github.com/pdiddy/pdf2html/pkg/types"
)

const linkedPage = `<svg xmlns="http://www.w3.org/2000/svg" width="595" height="842" viewBox="0 0 595 842">
<path d="M0 0H595V842H0Z" fill="#ffffff"/>
<path d="M20 800C30 805 40 810 50 815" stroke="#000000" fill="none"/>
</svg>`

const plainPage = `<svg xmlns="http://www.w3.org/2000/svg" width="595" height="842"><path d="M1 1C2 2 3 3 4 4"/></svg>`

type fakeRecorder struct {
	pages  []types.PageRecord
	docs   map[string]types.ConversionStatus
	failOn string
}

func (f *fakeRecorder) RecordPage(_ context.Context, rec types.PageRecord) error {
	if rec.Document == f.failOn {
		return errors.New("store closed")
	}
	f.pages = append(f.pages, rec)
	return nil
}

func (f *fakeRecorder) RecordDocument(_ context.Context, doc, _ string, status types.ConversionStatus) error {
	if f.docs == nil {
		f.docs = make(map[string]types.ConversionStatus)
	}
	f.docs[doc] = status
	return nil
}

func testRenderConfig(t *testing.T) types.RenderConfig {
	t.Helper()
	root := t.TempDir()
	cfg := types.DefaultPipelineConfig().Render
	cfg.SVGDir = filepath.Join(root, "svg")
	cfg.HTMLDir = filepath.Join(root, "html")
	cfg.TemplateDir = filepath.Join(root, "templates")
	cfg.PDFDir = filepath.Join(root, "pdfs")
	require.NoError(t, os.MkdirAll(cfg.SVGDir, 0o755))
	return cfg
}

// pageNumbers returns the data-page-number of every svg element in
// document order.
func pageNumbers(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	node, err := html.Parse(f)
	require.NoError(t, err)

	var pages []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "svg" {
			for _, a := range n.Attr {
				if a.Key == "data-page-number" {
					pages = append(pages, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return pages
}

func TestRenderAllPageOrder(t *testing.T) {
	cfg := testRenderConfig(t)
	for _, n := range []int{9, 10, 2} {
		touch(t, cfg.SVGDir, pagefile.PageFileName("doc", n), plainPage)
	}

	var buf bytes.Buffer
	result := NewRenderer(cfg, nil, nil).RenderAll(context.Background(), &buf)

	assert.Equal(t, 1, result.Rendered)
	assert.False(t, result.HasFailures())
	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(cfg.HTMLDir, "doc.html"), result.Files[0])

	assert.Equal(t, []string{"2", "9", "10"}, pageNumbers(t, result.Files[0]))
	assert.Contains(t, buf.String(), "Created default template:")
	assert.Contains(t, buf.String(), "Render summary: 1 rendered, 0 failed (total: 1)")
}

func TestRenderDocumentLinks(t *testing.T) {
	cfg := testRenderConfig(t)
	svg := touch(t, cfg.SVGDir, "my_report_page_1.svg", linkedPage)
	require.NoError(t, pagefile.SaveLinks(svg, []types.LinkAnnotation{
		{URI: "https://example.com/a?x=1&y=2", BBox: types.Rect{X: 10, Y: 20, Width: 100, Height: 30}},
		{URI: "https://example.com/b", BBox: types.Rect{X: 400, Y: 400, Width: 20, Height: 10}},
	}))
	plain := touch(t, cfg.SVGDir, "my_report_page_2.svg", plainPage)

	rec := &fakeRecorder{}
	var buf bytes.Buffer
	out, err := NewRenderer(cfg, nil, rec).RenderDocument(context.Background(), "my_report", []string{svg, plain}, &buf)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "<title>My Report</title>")
	assert.Contains(t, body, `xlink:href="https://example.com/a?x=1&amp;y=2"`)
	assert.Contains(t, body, `xlink:href="https://example.com/b"`)
	assert.Equal(t, 2, strings.Count(body, `class="svg-container"`))
	assert.Contains(t, buf.String(), "my_report_page_1.svg: 2 links, 1 fallback")

	require.Len(t, rec.pages, 2)
	assert.Equal(t, 1, rec.pages[0].Page)
	assert.Equal(t, []types.LinkResult{
		{URI: "https://example.com/a?x=1&y=2", MatchedPaths: 1},
		{URI: "https://example.com/b", Fallback: true},
	}, rec.pages[0].Links)
	assert.Equal(t, 2, rec.pages[1].Page)
	assert.Empty(t, rec.pages[1].Links)
	assert.Equal(t, types.ConversionPartial, rec.docs["my_report"])
}

func TestRenderDocumentImages(t *testing.T) {
	cfg := testRenderConfig(t)
	require.NoError(t, os.MkdirAll(cfg.PDFDir, 0o755))
	touch(t, cfg.PDFDir, "doc-photo.png", "png")
	svg := touch(t, cfg.SVGDir, "doc_page_1.svg", plainPage)

	out, err := NewRenderer(cfg, nil, nil).RenderDocument(context.Background(), "doc", []string{svg}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<img src="images/doc-photo.png"`)
	assert.FileExists(t, filepath.Join(cfg.HTMLDir, "images", "doc-photo.png"))
}

func TestRenderDocumentCustomTemplate(t *testing.T) {
	cfg := testRenderConfig(t)
	require.NoError(t, os.MkdirAll(cfg.TemplateDir, 0o755))
	touch(t, cfg.TemplateDir, TemplateName,
		`<main data-title="{{.title}}">{{range .svg_contents}}{{.}}{{end}}</main>`)
	svg := touch(t, cfg.SVGDir, "doc_page_1.svg", plainPage)

	var buf bytes.Buffer
	out, err := NewRenderer(cfg, nil, nil).RenderDocument(context.Background(), "doc", []string{svg}, &buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Created default template")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `<main data-title="Doc"><svg`))
}

func TestRenderDocumentRecordErrorIsWarning(t *testing.T) {
	cfg := testRenderConfig(t)
	svg := touch(t, cfg.SVGDir, "doc_page_1.svg", plainPage)

	var buf bytes.Buffer
	_, err := NewRenderer(cfg, nil, &fakeRecorder{failOn: "doc"}).
		RenderDocument(context.Background(), "doc", []string{svg}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "warning: recording doc_page_1.svg: store closed")
}

func TestRenderAllMissingDir(t *testing.T) {
	cfg := testRenderConfig(t)
	cfg.SVGDir = filepath.Join(cfg.SVGDir, "missing")

	var buf bytes.Buffer
	result := NewRenderer(cfg, nil, nil).RenderAll(context.Background(), &buf)
	assert.Equal(t, 0, result.Total())
	assert.Contains(t, buf.String(), "does not exist")
}

func TestRenderAllMalformedSidecar(t *testing.T) {
	cfg := testRenderConfig(t)
	touch(t, cfg.SVGDir, "doc_page_1.svg", plainPage)
	bad := touch(t, cfg.SVGDir, "doc_page_2.svg", plainPage)
	require.NoError(t, os.WriteFile(pagefile.LinksFileName(bad), []byte("{not json"), 0o644))

	rec := &fakeRecorder{}
	var buf bytes.Buffer
	result := NewRenderer(cfg, nil, rec).RenderAll(context.Background(), &buf)

	assert.Equal(t, 1, result.Rendered)
	assert.False(t, result.HasFailures())
	assert.Contains(t, buf.String(), "warning: doc_page_2.svg:")
	assert.Equal(t, []string{"1", "2"}, pageNumbers(t, filepath.Join(cfg.HTMLDir, "doc.html")))
	require.Len(t, rec.pages, 2)
	assert.Empty(t, rec.pages[1].Links)
}

func TestRenderDocumentPageHeightOverride(t *testing.T) {
	cfg := testRenderConfig(t)
	cfg.PageHeights = map[string]float64{"doc": 1000}
	svg := touch(t, cfg.SVGDir, "doc_page_1.svg", linkedPage)
	require.NoError(t, pagefile.SaveLinks(svg, []types.LinkAnnotation{
		{URI: "https://example.com", BBox: types.Rect{X: 10, Y: 20, Width: 100, Height: 30}},
	}))

	rec := &fakeRecorder{}
	_, err := NewRenderer(cfg, nil, rec).RenderDocument(context.Background(), "doc", []string{svg}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, rec.pages, 1)
	assert.True(t, rec.pages[0].Links[0].Fallback, "flipped about 1000 the link misses the path")
}

func TestRenderAllFailure(t *testing.T) {
	cfg := testRenderConfig(t)
	touch(t, cfg.SVGDir, "good_page_1.svg", plainPage)
	require.NoError(t, os.Symlink(filepath.Join(cfg.SVGDir, "missing"), filepath.Join(cfg.SVGDir, "bad_page_1.svg")))

	rec := &fakeRecorder{}
	var buf bytes.Buffer
	result := NewRenderer(cfg, nil, rec).RenderAll(context.Background(), &buf)

	assert.Equal(t, 1, result.Rendered)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.HasFailures())
	assert.Contains(t, buf.String(), "failed:  bad")
	assert.Equal(t, types.ConversionFailed, rec.docs["bad"])
	assert.Equal(t, types.ConversionNone, rec.docs["good"])
}

func TestMergeStatus(t *testing.T) {
	tests := []struct {
		doc, page, want types.ConversionStatus
	}{
		{types.ConversionNone, types.ConversionNone, types.ConversionNone},
		{types.ConversionNone, types.ConversionDone, types.ConversionDone},
		{types.ConversionDone, types.ConversionNone, types.ConversionDone},
		{types.ConversionDone, types.ConversionPartial, types.ConversionPartial},
		{types.ConversionPartial, types.ConversionDone, types.ConversionPartial},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mergeStatus(tt.doc, tt.page), "%s+%s", tt.doc, tt.page)
	}
}
