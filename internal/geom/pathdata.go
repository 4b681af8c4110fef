// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geom

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Page frame paths emitted for the full background of a 595x842 page.
const (
	PageFramePath       = "M0 0H595V842H0Z"
	PageFramePathSpaced = "M 0 0 H 595 V 842 H 0 Z"
)

var numberRegexp = regexp.MustCompile(`[-+]?\d*\.?\d+`)

// NumberTokens returns every numeric literal in path data, command letters
// ignored.
func NumberTokens(d string) []string {
	return numberRegexp.FindAllString(d, -1)
}

// Numbers returns the numeric literals of d as floats.
func Numbers(d string) []float64 {
	toks := NumberTokens(d)
	nums := make([]float64, 0, len(toks))
	for _, t := range toks {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			continue
		}
		nums = append(nums, v)
	}
	return nums
}

// Points pairs the numbers of d positionally into sample points. A trailing
// unpaired number is dropped.
func Points(d string) []Point {
	nums := Numbers(d)
	pts := make([]Point, 0, len(nums)/2)
	for i := 0; i+1 < len(nums); i += 2 {
		pts = append(pts, Point{X: nums[i], Y: nums[i+1]})
	}
	return pts
}

// IsPageFrame reports whether d contains the literal full-page frame path.
func IsPageFrame(d string) bool {
	return strings.Contains(d, PageFramePath) || strings.Contains(d, PageFramePathSpaced)
}

// PathBounds returns the min/max box over the sampled coordinates of d,
// taking even-indexed numbers as x and odd-indexed numbers as y. It reports
// false when d holds fewer than two numbers.
func PathBounds(d string) (BBox, bool) {
	nums := Numbers(d)
	if len(nums) < 2 {
		return BBox{}, false
	}
	b := BBox{
		X1: math.Inf(1), Y1: math.Inf(1),
		X2: math.Inf(-1), Y2: math.Inf(-1),
	}
	for i, v := range nums {
		if i%2 == 0 {
			b.X1 = math.Min(b.X1, v)
			b.X2 = math.Max(b.X2, v)
		} else {
			b.Y1 = math.Min(b.Y1, v)
			b.Y2 = math.Max(b.Y2, v)
		}
	}
	return b, true
}
