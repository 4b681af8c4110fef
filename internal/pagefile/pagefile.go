// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pagefile owns the on-disk naming of extracted pages and the JSON
// sidecar that carries each page's link annotations.
//
// A page of document "report" is written as report_page_3.svg with its
// links in report_page_3_links.json next to it.
package pagefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/pdf2html/pkg/types"
)

const (
	pageMarker  = "_page_"
	linksSuffix = "_links.json"
	svgExt      = ".svg"
)

// PageFileName returns the SVG file name for 1-based page n of doc.
func PageFileName(doc string, n int) string {
	return fmt.Sprintf("%s%s%d%s", doc, pageMarker, n, svgExt)
}

// Stem returns the file name of path without directory or extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LinksFileName returns the sidecar path that belongs to svgPath.
func LinksFileName(svgPath string) string {
	return filepath.Join(filepath.Dir(svgPath), Stem(svgPath)+linksSuffix)
}

// DocumentName returns the document part of a page stem: everything before
// the last "_page_". A stem without the marker is its own document.
func DocumentName(stem string) string {
	if i := strings.LastIndex(stem, pageMarker); i >= 0 {
		return stem[:i]
	}
	return stem
}

// PageNumber returns the page part of a stem as written, "1" when the stem
// has no page marker.
func PageNumber(stem string) string {
	if i := strings.LastIndex(stem, pageMarker); i >= 0 {
		return stem[i+len(pageMarker):]
	}
	return "1"
}

// PageIndex returns the numeric page of a stem for ordering. Stems without
// a parsable page number sort first.
func PageIndex(stem string) int {
	i := strings.LastIndex(stem, pageMarker)
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(stem[i+len(pageMarker):])
	if err != nil {
		return 0
	}
	return n
}

// LoadLinks reads the sidecar of svgPath. A missing sidecar means the page
// has no links and is not an error.
func LoadLinks(svgPath string) ([]types.LinkAnnotation, error) {
	data, err := os.ReadFile(LinksFileName(svgPath))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading links for %s: %w", svgPath, err)
	}

	var links []types.LinkAnnotation
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("parsing links for %s: %w", svgPath, err)
	}
	return links, nil
}

// SaveLinks writes the sidecar of svgPath as an indented JSON array.
// A page without links gets no sidecar, and any sidecar left from an
// earlier extraction is removed.
func SaveLinks(svgPath string, links []types.LinkAnnotation) error {
	if len(links) == 0 {
		if err := os.Remove(LinksFileName(svgPath)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing stale links for %s: %w", svgPath, err)
		}
		return nil
	}
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding links for %s: %w", svgPath, err)
	}
	if err := os.WriteFile(LinksFileName(svgPath), data, 0o644); err != nil {
		return fmt.Errorf("writing links for %s: %w", svgPath, err)
	}
	return nil
}
