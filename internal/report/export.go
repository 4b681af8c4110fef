// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf2html/pkg/types"
)

// DocumentReport is one document with its recorded pages.
type DocumentReport struct {
	Name       string                 `json:"name" yaml:"name"`
	HTMLPath   string                 `json:"html_path,omitempty" yaml:"html_path,omitempty"`
	Status     types.ConversionStatus `json:"status" yaml:"status"`
	RenderedAt string                 `json:"rendered_at" yaml:"rendered_at"`
	Pages      []types.PageRecord     `json:"pages,omitempty" yaml:"pages,omitempty"`
}

// QueryOptions filters report queries. Zero values match everything.
type QueryOptions struct {
	// Document restricts results to one document.
	Document string

	// Status restricts results to documents with this status.
	Status types.ConversionStatus
}

// Documents returns the recorded documents ordered by name, each with its
// pages ordered by page number and links in overlay order.
func (s *Store) Documents(ctx context.Context, opts QueryOptions) ([]DocumentReport, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT name, coalesce(html_path, ''), status, coalesce(rendered_at, '') FROM documents WHERE 1=1`)
	if opts.Document != "" {
		qb.WriteString(` AND name = ?`)
		args = append(args, opts.Document)
	}
	if opts.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(opts.Status))
	}
	qb.WriteString(` ORDER BY name`)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	var docs []DocumentReport
	for rows.Next() {
		var d DocumentReport
		var status string
		if err := rows.Scan(&d.Name, &d.HTMLPath, &status, &d.RenderedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Status = types.ConversionStatus(status)
		docs = append(docs, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range docs {
		pages, err := s.pages(ctx, docs[i].Name)
		if err != nil {
			return nil, err
		}
		docs[i].Pages = pages
	}
	return docs, nil
}

func (s *Store) pages(ctx context.Context, doc string) ([]types.PageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.page, p.svg_file, l.uri, l.matched_paths, l.fallback
		FROM pages p
		LEFT JOIN links l ON l.document = p.document AND l.page = p.page
		WHERE p.document = ?
		ORDER BY p.page, l.seq`, doc)
	if err != nil {
		return nil, fmt.Errorf("querying pages of %s: %w", doc, err)
	}
	defer rows.Close()

	var pages []types.PageRecord
	for rows.Next() {
		var (
			page     int
			svgFile  string
			uri      *string
			matched  *int
			fallback *bool
		)
		if err := rows.Scan(&page, &svgFile, &uri, &matched, &fallback); err != nil {
			return nil, fmt.Errorf("scanning page of %s: %w", doc, err)
		}
		if len(pages) == 0 || pages[len(pages)-1].Page != page {
			pages = append(pages, types.PageRecord{Document: doc, Page: page, SVGFile: svgFile})
		}
		if uri != nil {
			cur := &pages[len(pages)-1]
			cur.Links = append(cur.Links, types.LinkResult{
				URI:          *uri,
				MatchedPaths: *matched,
				Fallback:     *fallback,
			})
		}
	}
	return pages, rows.Err()
}

// ExportYAML writes the report to <dir>/report.yaml and returns its path.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	docs, err := s.Documents(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	data, err := yaml.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, "report.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the report to <dir>/report.json and returns its path.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	docs, err := s.Documents(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, "report.json")
	return path, os.WriteFile(path, data, 0o644)
}
