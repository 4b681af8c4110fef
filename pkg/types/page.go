// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pdf2html pipeline:
// extracted pages, link annotations recovered from the PDF link table, and
// the per-stage configuration records.
package types

// ConversionStatus indicates the outcome of rendering a page or document.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionPartial ConversionStatus = "partial"
	ConversionFailed  ConversionStatus = "failed"
)

// Rect is a rectangle given by its origin and extent.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// LinkAnnotation is one hyperlink region from a page's link table. BBox is
// in PDF point space as written to the page's sidecar file.
type LinkAnnotation struct {
	// URI is the link target.
	URI string `json:"uri" yaml:"uri"`

	// BBox is the clickable region.
	BBox Rect `json:"bbox" yaml:"bbox"`
}

// LinkResult records how one link was applied to its page.
type LinkResult struct {
	URI string `json:"uri" yaml:"uri"`

	// MatchedPaths is the number of vector paths placed under the link.
	MatchedPaths int `json:"matched_paths" yaml:"matched_paths"`

	// Fallback is true when nothing matched and a visible box was drawn.
	Fallback bool `json:"fallback" yaml:"fallback"`
}

// PageRecord describes one rendered page.
type PageRecord struct {
	// Document is the source document name (the PDF file stem).
	Document string `json:"document" yaml:"document"`

	// Page is the 1-based page number.
	Page int `json:"page" yaml:"page"`

	// SVGFile is the page's SVG file name.
	SVGFile string `json:"svg_file" yaml:"svg_file"`

	Links []LinkResult `json:"links,omitempty" yaml:"links,omitempty"`
}

// Status summarizes the page's links: none when it has no links, partial
// when any link fell back to a drawn box.
func (p PageRecord) Status() ConversionStatus {
	if len(p.Links) == 0 {
		return ConversionNone
	}
	for _, l := range p.Links {
		if l.Fallback {
			return ConversionPartial
		}
	}
	return ConversionDone
}
