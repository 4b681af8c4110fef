// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package linkmatch decides which vector paths of a page lie under a link
// rectangle. Paths that look like page frames, panels, or fills are
// classified as background and never match; the remaining paths match when
// enough of their sampled coordinates, or enough of their bounding box,
// fall inside the link.
//
// All rectangles passed to a Matcher must already be in SVG space.
package linkmatch

import (
	"math"
	"regexp"

	"github.com/pdiddy/pdf2html/internal/geom"
	"github.com/pdiddy/pdf2html/pkg/types"
)

var (
	hvCommandRegexp = regexp.MustCompile(`[HV]`)
	curveRegexp     = regexp.MustCompile(`C`)
)

// Thresholds are the classifier and matcher constants.
type Thresholds = types.MatchConfig

// DefaultThresholds returns the empirically chosen constants.
func DefaultThresholds() Thresholds { return types.DefaultMatchConfig() }

// Matcher applies the background classifier and the link-geometry tests
// using a fixed set of thresholds.
type Matcher struct {
	cfg Thresholds
}

// NewMatcher returns a Matcher for cfg. Zero-valued fields fall back to
// DefaultThresholds.
func NewMatcher(cfg Thresholds) *Matcher {
	def := DefaultThresholds()
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = def.MaxWidth
	}
	if cfg.MaxHeight <= 0 {
		cfg.MaxHeight = def.MaxHeight
	}
	if cfg.MinHVCommands <= 0 {
		cfg.MinHVCommands = def.MinHVCommands
	}
	if cfg.MaxDensity <= 0 {
		cfg.MaxDensity = def.MaxDensity
	}
	if cfg.WideWidth <= 0 {
		cfg.WideWidth = def.WideWidth
	}
	if cfg.PointRatio <= 0 {
		cfg.PointRatio = def.PointRatio
	}
	if cfg.OverlapRatio <= 0 {
		cfg.OverlapRatio = def.OverlapRatio
	}
	return &Matcher{cfg: cfg}
}

// Config returns the effective thresholds.
func (m *Matcher) Config() Thresholds { return m.cfg }

// IsBackgroundElement reports whether a path of the given box size is a
// frame, panel, or fill rather than content. Checks run in order and the
// first hit wins: oversized, purely rectilinear, then sparse and wide.
func (m *Matcher) IsBackgroundElement(d string, width, height float64) bool {
	if width > m.cfg.MaxWidth || height > m.cfg.MaxHeight {
		return true
	}

	hv := len(hvCommandRegexp.FindAllStringIndex(d, -1))
	curves := len(curveRegexp.FindAllStringIndex(d, -1))
	if hv >= m.cfg.MinHVCommands && curves == 0 {
		return true
	}

	var density float64
	if area := width * height; area > 0 {
		density = float64(len(geom.NumberTokens(d))) / math.Max(area, 1)
	}
	return density < m.cfg.MaxDensity && width > m.cfg.WideWidth
}

// ExtractBoundingBox returns the box of d for link matching. It reports
// false for empty or malformed data, the full-page frame, and background
// paths.
func (m *Matcher) ExtractBoundingBox(d string) (geom.BBox, bool) {
	if d == "" || geom.IsPageFrame(d) {
		return geom.BBox{}, false
	}
	b, ok := geom.PathBounds(d)
	if !ok {
		return geom.BBox{}, false
	}
	if m.IsBackgroundElement(d, b.Width(), b.Height()) {
		return geom.BBox{}, false
	}
	return b, true
}

// PathIntersectsLinkRect reports whether the path d belongs to the link
// covering rect.
func (m *Matcher) PathIntersectsLinkRect(d string, rect geom.BBox) bool {
	if d == "" || geom.IsPageFrame(d) {
		return false
	}
	box, ok := m.ExtractBoundingBox(d)
	if !ok {
		return false
	}

	pts := geom.Points(d)
	if len(pts) == 0 {
		return false
	}
	inside := 0
	for _, p := range pts {
		if rect.Contains(p.X, p.Y) {
			inside++
		}
	}
	if float64(inside)/float64(len(pts)) >= m.cfg.PointRatio {
		return true
	}

	overlap, ok := box.Overlap(rect)
	if !ok {
		return false
	}
	area := box.Area()
	return area > 0 && overlap.Area()/area >= m.cfg.OverlapRatio
}

// Match returns the indices of the path data entries in paths that belong
// to the link covering rect, in input order.
func (m *Matcher) Match(paths []string, rect geom.BBox) []int {
	var idx []int
	for i, d := range paths {
		if m.PathIntersectsLinkRect(d, rect) {
			idx = append(idx, i)
		}
	}
	return idx
}
