// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/pdiddy/pdf2html/internal/mutool"
	"github.com/pdiddy/pdf2html/pkg/types"
)

// pageRenderer produces page SVGs. *fitz.Document satisfies it.
type pageRenderer interface {
	NumPage() int
	SVG(page int) (string, error)
	Close() error
}

// pdfDocument pairs a page renderer with the link annotations read from
// the same file.
type pdfDocument struct {
	pages   pageRenderer
	links   [][]types.LinkAnnotation
	linkErr error
}

func (d *pdfDocument) NumPage() int { return d.pages.NumPage() }

func (d *pdfDocument) SVG(page int) (string, error) { return d.pages.SVG(page) }

func (d *pdfDocument) Links(page int) ([]types.LinkAnnotation, error) {
	if d.linkErr != nil {
		return nil, d.linkErr
	}
	if page < 0 || page >= len(d.links) {
		return nil, nil
	}
	return d.links[page], nil
}

func (d *pdfDocument) Close() error { return d.pages.Close() }

// OpenPDF opens path with the in-process MuPDF binding. Link annotations
// are read eagerly; a file whose object tree cannot be walked still
// renders, and reports the error from Links.
func OpenPDF(path string) (Document, error) {
	fz, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	links, linkErr := ReadLinks(path)
	return &pdfDocument{pages: fz, links: links, linkErr: linkErr}, nil
}

// mutoolPages renders pages by running mutool once per page.
type mutoolPages struct {
	tool  mutool.Tool
	path  string
	count int
}

func (m *mutoolPages) NumPage() int { return m.count }

func (m *mutoolPages) SVG(page int) (string, error) {
	return m.tool.DrawSVG(m.path, page+1)
}

func (m *mutoolPages) Close() error { return nil }

// MutoolOpener returns an Opener that renders with tool. The page count
// comes from the PDF page tree, so a file tabula cannot read fails to open.
func MutoolOpener(tool mutool.Tool) Opener {
	return func(path string) (Document, error) {
		links, err := ReadLinks(path)
		if err != nil {
			return nil, err
		}
		return &pdfDocument{
			pages: &mutoolPages{tool: tool, path: path, count: len(links)},
			links: links,
		}, nil
	}
}

// NewOpener returns the Opener for the configured backend.
func NewOpener(cfg types.ExtractionConfig) (Opener, error) {
	switch cfg.Backend {
	case "", types.BackendFitz:
		return OpenPDF, nil
	case types.BackendMutool:
		tool, err := mutool.Detect(cfg.MutoolPath)
		if err != nil {
			return nil, err
		}
		return MutoolOpener(tool), nil
	default:
		return nil, fmt.Errorf("unknown extraction backend %q (want %s or %s)",
			cfg.Backend, types.BackendFitz, types.BackendMutool)
	}
}
