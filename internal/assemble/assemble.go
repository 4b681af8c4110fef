// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble groups extracted page SVGs by source document and
// renders each document as one HTML file with its pages in order.
package assemble

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/pdf2html/internal/pagefile"
)

const (
	// TemplateName is the file looked up in the template directory.
	TemplateName = "base.html"

	imagesDir     = "images"
	imagePattern  = "*.{jpg,jpeg,png,gif,webp}"
	imagesURLBase = "images/"
)

// GroupPages maps each document name to its page SVGs under svgDir,
// ordered by numeric page index.
func GroupPages(svgDir string) (map[string][]string, error) {
	entries, err := os.ReadDir(svgDir)
	if err != nil {
		return nil, fmt.Errorf("reading SVG directory %s: %w", svgDir, err)
	}

	groups := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".svg" {
			continue
		}
		doc := pagefile.DocumentName(pagefile.Stem(e.Name()))
		groups[doc] = append(groups[doc], filepath.Join(svgDir, e.Name()))
	}
	for _, files := range groups {
		sort.SliceStable(files, func(i, j int) bool {
			return pagefile.PageIndex(pagefile.Stem(files[i])) < pagefile.PageIndex(pagefile.Stem(files[j]))
		})
	}
	return groups, nil
}

// SortedDocuments returns the document names of groups in lexical order.
func SortedDocuments(groups map[string][]string) []string {
	docs := make([]string, 0, len(groups))
	for d := range groups {
		docs = append(docs, d)
	}
	sort.Strings(docs)
	return docs
}

// Title turns a document name into a display title.
func Title(doc string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(doc, "_", " "))
}

// CopyImages copies the raster images that belong to doc from pdfsDir into
// htmlDir/images and returns their paths relative to htmlDir. An image
// belongs to doc when its name starts with "<doc>-".
func CopyImages(doc, pdfsDir, htmlDir string) ([]string, error) {
	entries, err := os.ReadDir(pdfsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pdfsDir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasPrefix(e.Name(), doc+"-") {
			continue
		}
		ok, err := doublestar.Match(imagePattern, strings.ToLower(e.Name()))
		if err != nil {
			return nil, fmt.Errorf("matching %s: %w", e.Name(), err)
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	dst := filepath.Join(htmlDir, imagesDir)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dst, err)
	}

	copied := make([]string, 0, len(names))
	for _, name := range names {
		if err := copyFile(filepath.Join(pdfsDir, name), filepath.Join(dst, name)); err != nil {
			return copied, err
		}
		copied = append(copied, imagesURLBase+name)
	}
	return copied, nil
}

// copyFile copies src to dst keeping its mode and modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// EnsureTemplate returns the path of base.html in dir, writing the default
// template first when the file does not exist. created reports whether it
// was written.
func EnsureTemplate(dir string) (path string, created bool, err error) {
	path = filepath.Join(dir, TemplateName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating template directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(DefaultTemplate), 0o644); err != nil {
		return "", false, fmt.Errorf("writing default template %s: %w", path, err)
	}
	return path, true, nil
}
