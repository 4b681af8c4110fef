// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package precision rounds the numeric attributes of an SVG document to a
// fixed number of decimal digits. Extracted page SVGs carry full float
// precision, which inflates the assembled HTML without visible benefit.
package precision

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// DefaultDigits is the precision used when none is configured.
const DefaultDigits = 2

// Attributes holding a single number.
var simpleAttrs = map[string]bool{
	"x": true, "y": true, "width": true, "height": true,
	"cx": true, "cy": true, "r": true, "rx": true, "ry": true,
	"x1": true, "y1": true, "x2": true, "y2": true,
	"stroke-width": true, "font-size": true,
}

// Attributes holding a whitespace or comma separated number list.
var listAttrs = map[string]bool{
	"viewBox": true,
	"points":  true,
}

// Attributes mixing commands or function names with numbers.
var complexAttrs = map[string]bool{
	"d":         true,
	"transform": true,
}

var (
	listTokenRegexp = regexp.MustCompile(`[^\s,]+`)
	decimalRegexp   = regexp.MustCompile(`-?\d*\.\d+`)
)

// Format renders v with at most digits decimals, trailing zeros and a
// trailing point removed. Negative zero is written as "0".
func Format(v float64, digits int) string {
	s := strconv.FormatFloat(v, 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// RoundToken rounds a single numeric token. Tokens that do not parse as a
// number are returned unchanged.
func RoundToken(tok string, digits int) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		return tok
	}
	return Format(v, digits)
}

// RoundList rounds every token of a whitespace or comma separated list,
// keeping the separators as written.
func RoundList(s string, digits int) string {
	return listTokenRegexp.ReplaceAllStringFunc(s, func(tok string) string {
		return RoundToken(tok, digits)
	})
}

// RoundDecimals rounds every literal containing a decimal point inside
// path data or a transform. Integers are left as written.
func RoundDecimals(s string, digits int) string {
	return decimalRegexp.ReplaceAllStringFunc(s, func(tok string) string {
		return RoundToken(tok, digits)
	})
}

// Optimize rounds the numeric attributes of every element in svg. Input
// that does not parse as an XML document is returned unchanged. Optimizing
// an already optimized document at the same precision is a no-op.
func Optimize(svg string, digits int) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(svg); err != nil {
		return svg
	}
	root := doc.Root()
	if root == nil {
		return svg
	}

	optimizeElement(root, digits)

	out, err := doc.WriteToString()
	if err != nil {
		return svg
	}
	return out
}

func optimizeElement(e *etree.Element, digits int) {
	for i := range e.Attr {
		a := &e.Attr[i]
		if a.Space != "" {
			continue
		}
		switch {
		case simpleAttrs[a.Key]:
			a.Value = RoundToken(a.Value, digits)
		case listAttrs[a.Key]:
			a.Value = RoundList(a.Value, digits)
		case complexAttrs[a.Key]:
			a.Value = RoundDecimals(a.Value, digits)
		}
	}
	for _, c := range e.ChildElements() {
		optimizeElement(c, digits)
	}
}
