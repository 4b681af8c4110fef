// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package svgrewrite prepares one extracted page SVG for embedding in a
// multi-page HTML document. It tags the root with its source, makes element
// ids unique per page, and turns each link annotation into a clickable
// overlay that wraps the vector paths drawn under the link.
package svgrewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/pdiddy/pdf2html/internal/geom"
	"github.com/pdiddy/pdf2html/internal/linkmatch"
	"github.com/pdiddy/pdf2html/internal/pagefile"
	"github.com/pdiddy/pdf2html/internal/precision"
	"github.com/pdiddy/pdf2html/pkg/types"
)

const (
	xlinkNamespace = "http://www.w3.org/1999/xlink"

	// LinkColor is the stroke applied to vector content under a link.
	LinkColor = "blue"

	defaultPageHeight = 842
)

var urlRefRegexp = regexp.MustCompile(`url\(#([^)]+)\)`)

// Options configures a Rewriter.
type Options struct {
	// PageHeight flips link rectangles into SVG space.
	PageHeight float64

	// PageHeightFromViewBox takes the flip height from the root viewBox,
	// falling back to PageHeight when the page has none.
	PageHeightFromViewBox bool

	// Precision is the number of decimals written for overlay coordinates.
	Precision int

	// FlipLinks converts link rectangles from bottom-origin to top-origin
	// coordinates before matching.
	FlipLinks bool

	// OverlaySpace selects whether overlay rectangles use the link's own
	// coordinates or the flipped ones.
	OverlaySpace types.OverlaySpace
}

// DefaultOptions returns the options used for A4 pages.
func DefaultOptions() Options {
	return Options{
		PageHeight:            defaultPageHeight,
		PageHeightFromViewBox: true,
		Precision:             precision.DefaultDigits,
		FlipLinks:             true,
		OverlaySpace:          types.OverlayPDF,
	}
}

// LinkOutcome records how one link annotation was applied.
type LinkOutcome struct {
	URI string

	// Matched is the number of paths moved under the link.
	Matched int

	// Fallback is true when no path matched and a visible rectangle was drawn.
	Fallback bool
}

// String implements fmt.Stringer for status lines.
func (o LinkOutcome) String() string {
	if o.Fallback {
		return fmt.Sprintf("%s (fallback)", o.URI)
	}
	return fmt.Sprintf("%s (%d paths)", o.URI, o.Matched)
}

// Result is a rewritten page.
type Result struct {
	SVG   string
	Links []LinkOutcome
}

// Rewriter applies page identity and link overlays to SVG documents.
type Rewriter struct {
	opts    Options
	matcher *linkmatch.Matcher
}

// New returns a Rewriter. A nil matcher uses the default thresholds.
func New(opts Options, m *linkmatch.Matcher) *Rewriter {
	if opts.PageHeight <= 0 {
		opts.PageHeight = defaultPageHeight
	}
	if opts.Precision < 0 {
		opts.Precision = precision.DefaultDigits
	}
	if opts.OverlaySpace == "" {
		opts.OverlaySpace = types.OverlayPDF
	}
	if m == nil {
		m = linkmatch.NewMatcher(linkmatch.DefaultThresholds())
	}
	return &Rewriter{opts: opts, matcher: m}
}

// Options returns the effective options.
func (r *Rewriter) Options() Options { return r.opts }

// WithPageHeight returns a copy of r that flips links about h regardless
// of the page's viewBox.
func (r *Rewriter) WithPageHeight(h float64) *Rewriter {
	if h <= 0 {
		return r
	}
	cp := *r
	cp.opts.PageHeight = h
	cp.opts.PageHeightFromViewBox = false
	return &cp
}

// pageHeight returns the height links on root are flipped about.
func (r *Rewriter) pageHeight(root *etree.Element) float64 {
	if r.opts.PageHeightFromViewBox {
		vb := geom.Numbers(root.SelectAttrValue("viewBox", ""))
		if len(vb) == 4 && vb[3] > 0 {
			return vb[3]
		}
	}
	return r.opts.PageHeight
}

// Rewrite processes raw, the SVG text of the page stored as fileName.
// Input without an svg element is returned unchanged.
func (r *Rewriter) Rewrite(raw, fileName string, links []types.LinkAnnotation) Result {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return Result{SVG: raw}
	}
	root := findSVG(doc)
	if root == nil {
		return Result{SVG: raw}
	}

	page := pagefile.PageNumber(pagefile.Stem(fileName))
	suffix := "_p" + page

	root.CreateAttr("data-source-file", fileName)
	root.CreateAttr("data-page-number", page)
	uniquifyIDs(root, suffix)

	var outcomes []LinkOutcome
	if len(links) > 0 {
		outcomes = r.applyLinks(root, links)
	}

	out := etree.NewDocument()
	out.WriteSettings.CanonicalAttrVal = true
	out.SetRoot(root)
	s, err := out.WriteToString()
	if err != nil {
		return Result{SVG: raw}
	}

	s = urlRefRegexp.ReplaceAllStringFunc(s, func(ref string) string {
		return strings.TrimSuffix(ref, ")") + suffix + ")"
	})
	return Result{SVG: s, Links: outcomes}
}

func findSVG(doc *etree.Document) *etree.Element {
	if root := doc.Root(); root != nil && root.Tag == "svg" {
		return root
	}
	return doc.FindElement("//svg")
}

// uniquifyIDs appends suffix to every id and to every local href so that
// pages sharing one HTML document do not collide.
func uniquifyIDs(e *etree.Element, suffix string) {
	for i := range e.Attr {
		a := &e.Attr[i]
		switch {
		case a.Space == "" && a.Key == "id":
			a.Value += suffix
		case a.Key == "href" && strings.HasPrefix(a.Value, "#"):
			a.Value += suffix
		}
	}
	for _, c := range e.ChildElements() {
		uniquifyIDs(c, suffix)
	}
}

type candidate struct {
	el      *etree.Element
	d       string
	claimed bool
}

func (r *Rewriter) applyLinks(root *etree.Element, links []types.LinkAnnotation) []LinkOutcome {
	if root.SelectAttr("xmlns:xlink") == nil {
		root.CreateAttr("xmlns:xlink", xlinkNamespace)
	}

	height := r.pageHeight(root)
	cands := collectPaths(root)
	ds := make([]string, len(cands))
	for i, c := range cands {
		ds[i] = c.d
	}

	outcomes := make([]LinkOutcome, 0, len(links))
	for _, link := range links {
		pdfBox := geom.FromRect(link.BBox.X, link.BBox.Y, link.BBox.Width, link.BBox.Height)
		svgBox := pdfBox
		if r.opts.FlipLinks {
			svgBox = geom.FlipY(pdfBox, height)
		}
		overlayBox := pdfBox
		if r.opts.OverlaySpace == types.OverlaySVG {
			overlayBox = svgBox
		}

		var matched []*candidate
		for _, i := range r.matcher.Match(ds, svgBox) {
			if !cands[i].claimed {
				matched = append(matched, cands[i])
			}
		}

		anchor := etree.NewElement("a")
		anchor.CreateAttr("xlink:href", link.URI)
		anchor.CreateAttr("target", "_blank")

		outcome := LinkOutcome{URI: link.URI, Matched: len(matched)}
		if len(matched) == 0 {
			rect := r.rect(anchor, overlayBox)
			rect.CreateAttr("fill", "lightblue")
			rect.CreateAttr("fill-opacity", "0.3")
			rect.CreateAttr("stroke", LinkColor)
			rect.CreateAttr("stroke-width", "1")
			outcome.Fallback = true
		} else {
			group := anchor.CreateElement("g")
			group.CreateAttr("stroke", LinkColor)
			hit := r.rect(group, overlayBox)
			hit.CreateAttr("fill", "none")
			hit.CreateAttr("stroke", "none")
			hit.CreateAttr("pointer-events", "all")
			mv := newMover(root, group)
			for _, c := range matched {
				mv.move(c.el)
				c.claimed = true
			}
		}

		root.AddChild(anchor)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (r *Rewriter) rect(parent *etree.Element, b geom.BBox) *etree.Element {
	rect := parent.CreateElement("rect")
	rect.CreateAttr("x", precision.Format(b.X1, r.opts.Precision))
	rect.CreateAttr("y", precision.Format(b.Y1, r.opts.Precision))
	rect.CreateAttr("width", precision.Format(b.Width(), r.opts.Precision))
	rect.CreateAttr("height", precision.Format(b.Height(), r.opts.Precision))
	return rect
}

// collectPaths returns the drawable paths under root in document order,
// skipping anything inside defs or a clip or mask definition.
func collectPaths(root *etree.Element) []*candidate {
	var out []*candidate
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, c := range e.ChildElements() {
			switch c.Tag {
			case "defs", "clipPath", "mask":
				continue
			case "path":
				out = append(out, &candidate{el: c, d: c.SelectAttrValue("d", "")})
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// inheritedAttrs are the ancestor attributes that affect how a path is
// drawn. stroke is left out so the link group's color applies.
var inheritedAttrs = []string{
	"transform", "clip-path", "mask", "opacity", "style",
	"fill", "fill-rule", "fill-opacity", "stroke-width",
}

// mover relocates paths under dst. Each ancestor between root and a moved
// path is recreated under dst as a g carrying the ancestor's drawing
// attributes, so transforms, clips and inherited paint apply exactly as
// before. Paths that shared an ancestor share its copy.
type mover struct {
	root, dst *etree.Element
	copies    map[*etree.Element]*etree.Element
}

func newMover(root, dst *etree.Element) *mover {
	return &mover{root: root, dst: dst, copies: make(map[*etree.Element]*etree.Element)}
}

// move detaches p from its parent and appends it to the copy of that
// parent. An explicit stroke is recolored. Groups left empty are removed.
func (m *mover) move(p *etree.Element) {
	parent := p.Parent()
	target := m.copyOf(parent)

	if s := p.SelectAttr("stroke"); s != nil && s.Value != "none" {
		s.Value = LinkColor
	}

	if parent != nil {
		parent.RemoveChild(p)
	}
	target.AddChild(p)

	for g := parent; g != nil && g != m.root && g.Tag == "g" && len(g.ChildElements()) == 0; {
		up := g.Parent()
		if up == nil {
			break
		}
		up.RemoveChild(g)
		g = up
	}
}

func (m *mover) copyOf(a *etree.Element) *etree.Element {
	if a == nil || a == m.root {
		return m.dst
	}
	if c, ok := m.copies[a]; ok {
		return c
	}
	outer := m.copyOf(a.Parent())

	c := outer
	for _, key := range inheritedAttrs {
		v := a.SelectAttrValue(key, "")
		if key == "style" {
			v = withoutStroke(v)
		}
		if v == "" {
			continue
		}
		if c == outer {
			c = outer.CreateElement("g")
		}
		c.CreateAttr(key, v)
	}
	m.copies[a] = c
	return c
}

// withoutStroke drops stroke color declarations from a style attribute.
func withoutStroke(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		prop, _, _ := strings.Cut(decl, ":")
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" || prop == "stroke" {
			continue
		}
		kept = append(kept, strings.TrimSpace(decl))
	}
	return strings.Join(kept, ";")
}
