// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"math"

	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/reader"

	"github.com/pdiddy/pdf2html/pkg/types"
)

// maxPageTreeDepth bounds the page tree walk against reference cycles.
const maxPageTreeDepth = 64

// defaultMediaBox is US Letter, used when a page inherits no MediaBox.
var defaultMediaBox = [4]float64{0, 0, 612, 792}

// ReadLinks returns the URI link annotations of every page of the PDF at
// path, indexed by 0-based page. Rectangles are normalized to a top-left
// origin within the page MediaBox.
func ReadLinks(path string) ([][]types.LinkAnnotation, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	catalog, err := r.GetCatalog()
	if err != nil {
		return nil, fmt.Errorf("reading catalog of %s: %w", path, err)
	}
	root, err := resolveDict(r, catalog.Get("Pages"))
	if err != nil {
		return nil, fmt.Errorf("reading page tree of %s: %w", path, err)
	}

	w := &linkWalker{r: r}
	if err := w.walk(root, defaultMediaBox, 0); err != nil {
		return nil, fmt.Errorf("walking pages of %s: %w", path, err)
	}
	return w.pages, nil
}

type linkWalker struct {
	r     *reader.Reader
	pages [][]types.LinkAnnotation
}

// walk visits the page tree depth-first in document order, carrying the
// inherited MediaBox down to each leaf.
func (w *linkWalker) walk(node core.Dict, box [4]float64, depth int) error {
	if depth > maxPageTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxPageTreeDepth)
	}
	if b, ok := w.box(node.Get("MediaBox")); ok {
		box = b
	}

	typ, _ := node.GetName("Type")
	if typ == "Page" || (typ == "" && node.Get("Kids") == nil) {
		w.pages = append(w.pages, w.pageLinks(node, box))
		return nil
	}

	kidsObj, err := w.r.Resolve(node.Get("Kids"))
	if err != nil {
		return fmt.Errorf("resolving /Kids: %w", err)
	}
	kids, ok := kidsObj.(core.Array)
	if !ok {
		return fmt.Errorf("invalid /Kids type: %T", kidsObj)
	}
	for i, kid := range kids {
		d, err := resolveDict(w.r, kid)
		if err != nil {
			return fmt.Errorf("resolving kid %d: %w", i, err)
		}
		if err := w.walk(d, box, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// pageLinks collects the URI links of one page. Malformed annotations are
// skipped rather than failing the page.
func (w *linkWalker) pageLinks(page core.Dict, box [4]float64) []types.LinkAnnotation {
	annotsObj, err := w.r.Resolve(page.Get("Annots"))
	if err != nil {
		return nil
	}
	annots, ok := annotsObj.(core.Array)
	if !ok {
		return nil
	}

	var links []types.LinkAnnotation
	for _, a := range annots {
		annot, err := resolveDict(w.r, a)
		if err != nil {
			continue
		}
		if sub, _ := annot.GetName("Subtype"); sub != "Link" {
			continue
		}
		uri, ok := w.uri(annot)
		if !ok {
			continue
		}
		rect, ok := w.box(annot.Get("Rect"))
		if !ok {
			continue
		}
		links = append(links, types.LinkAnnotation{
			URI:  uri,
			BBox: normalizeRect(rect, box),
		})
	}
	return links
}

// uri returns the target of a link whose action is /S /URI.
func (w *linkWalker) uri(annot core.Dict) (string, bool) {
	action, err := resolveDict(w.r, annot.Get("A"))
	if err != nil {
		return "", false
	}
	if s, _ := action.GetName("S"); s != "URI" {
		return "", false
	}
	obj, err := w.r.Resolve(action.Get("URI"))
	if err != nil {
		return "", false
	}
	s, ok := obj.(core.String)
	if !ok || s == "" {
		return "", false
	}
	return string(s), true
}

// box reads a four-number rectangle array.
func (w *linkWalker) box(obj core.Object) ([4]float64, bool) {
	var out [4]float64
	if obj == nil {
		return out, false
	}
	resolved, err := w.r.Resolve(obj)
	if err != nil {
		return out, false
	}
	arr, ok := resolved.(core.Array)
	if !ok || len(arr) != 4 {
		return out, false
	}
	for i, e := range arr {
		v, err := w.r.Resolve(e)
		if err != nil {
			return out, false
		}
		switch n := v.(type) {
		case core.Int:
			out[i] = float64(n)
		case core.Real:
			out[i] = float64(n)
		default:
			return out, false
		}
	}
	return out, true
}

func resolveDict(r *reader.Reader, obj core.Object) (core.Dict, error) {
	if obj == nil {
		return nil, fmt.Errorf("missing dictionary")
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	d, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("expected dictionary, got %T", resolved)
	}
	return d, nil
}

// normalizeRect converts a PDF /Rect, whose corners may come in any order,
// into an origin-and-extent rectangle measured from the top-left corner of
// the MediaBox.
func normalizeRect(rect, mediaBox [4]float64) types.Rect {
	x1, x2 := math.Min(rect[0], rect[2]), math.Max(rect[0], rect[2])
	y1, y2 := math.Min(rect[1], rect[3]), math.Max(rect[1], rect[3])
	left := math.Min(mediaBox[0], mediaBox[2])
	top := math.Max(mediaBox[1], mediaBox[3])
	return types.Rect{
		X:      x1 - left,
		Y:      top - y2,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}
