package types

// ExtractionBackend identifies the tool that turns a PDF page into SVG.
type ExtractionBackend string

const (
	BackendFitz   ExtractionBackend = "fitz"
	BackendMutool ExtractionBackend = "mutool"
)

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	// Backend selects the SVG producer: fitz (in-process MuPDF) or mutool.
	Backend ExtractionBackend `json:"backend" yaml:"backend"`

	// MutoolPath is the mutool executable used by the mutool backend.
	MutoolPath string `json:"mutool_path,omitempty" yaml:"mutool_path,omitempty"`

	// PDFDir is the directory scanned for *.pdf input files.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`

	// SVGDir is the output directory for page SVGs and link sidecars.
	SVGDir string `json:"svg_dir" yaml:"svg_dir"`

	// Pages restricts extraction to these 1-based page numbers. Empty means all pages.
	Pages []int `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Precision is the number of decimal digits kept in numeric SVG
	// attributes (default 2). A negative value disables the optimizer.
	Precision int `json:"precision" yaml:"precision"`
}

// OverlaySpace selects the coordinate convention used when placing link
// overlay rectangles.
type OverlaySpace string

const (
	// OverlayPDF places overlays at the link's sidecar coordinates unchanged.
	OverlayPDF OverlaySpace = "pdf"
	// OverlaySVG places overlays at the flipped (SVG-space) coordinates.
	OverlaySVG OverlaySpace = "svg"
)

// MatchConfig holds the tunable constants of the path classifier and the
// link-geometry matcher.
type MatchConfig struct {
	// MaxWidth and MaxHeight bound path boxes; larger paths are page-spanning backgrounds.
	MaxWidth  float64 `json:"max_width" yaml:"max_width"`
	MaxHeight float64 `json:"max_height" yaml:"max_height"`

	// MinHVCommands is the H/V command count at which a curve-free path is geometric.
	MinHVCommands int `json:"min_hv_commands" yaml:"min_hv_commands"`

	// MaxDensity is the coordinates-per-unit-area level below which a wide path is simple.
	MaxDensity float64 `json:"max_density" yaml:"max_density"`

	// WideWidth is the width above which a simple path counts as a container.
	WideWidth float64 `json:"wide_width" yaml:"wide_width"`

	// PointRatio is the share of sampled points that must fall inside a link.
	PointRatio float64 `json:"point_ratio" yaml:"point_ratio"`

	// OverlapRatio is the share of the path box that must overlap a link.
	OverlapRatio float64 `json:"overlap_ratio" yaml:"overlap_ratio"`
}

// RenderConfig holds settings for the render stage.
type RenderConfig struct {
	// SVGDir is the directory of extracted page SVGs.
	SVGDir string `json:"svg_dir" yaml:"svg_dir"`

	// HTMLDir is the output directory for assembled documents.
	HTMLDir string `json:"html_dir" yaml:"html_dir"`

	// TemplateDir holds base.html. A default template is written if missing.
	TemplateDir string `json:"template_dir" yaml:"template_dir"`

	// PDFDir is scanned for raster images that belong to a document.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir"`

	// PageHeight is the page height in points used to flip link rectangles
	// into SVG space when a page has no viewBox (default 842, A4).
	PageHeight float64 `json:"page_height" yaml:"page_height"`

	// PageHeightFromViewBox takes the flip height from each page's viewBox
	// (default true). Set false to always use PageHeight.
	PageHeightFromViewBox bool `json:"page_height_from_viewbox" yaml:"page_height_from_viewbox"`

	// PageHeights overrides the flip height per document name.
	PageHeights map[string]float64 `json:"page_heights,omitempty" yaml:"page_heights,omitempty"`

	// FlipLinks enables the PDF-to-SVG vertical flip before matching (default true).
	FlipLinks bool `json:"flip_links" yaml:"flip_links"`

	// OverlaySpace selects where overlay rectangles are drawn (default pdf).
	OverlaySpace OverlaySpace `json:"overlay_space" yaml:"overlay_space"`

	// Precision is used when formatting overlay coordinates.
	Precision int `json:"precision" yaml:"precision"`

	Match MatchConfig `json:"match" yaml:"match"`
}

// HeightFor returns the page height configured for doc.
func (c RenderConfig) HeightFor(doc string) float64 {
	if h, ok := c.PageHeights[doc]; ok && h > 0 {
		return h
	}
	return c.PageHeight
}

// ReportConfig holds settings for the conversion report store.
type ReportConfig struct {
	// Dir holds the report database and its YAML export.
	Dir string `json:"dir" yaml:"dir"`

	// Disabled turns report recording off.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Render     RenderConfig     `json:"render" yaml:"render"`
	Report     ReportConfig     `json:"report" yaml:"report"`
}

// DefaultMatchConfig returns the empirically chosen classifier and matcher constants.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		MaxWidth:      400,
		MaxHeight:     600,
		MinHVCommands: 2,
		MaxDensity:    0.01,
		WideWidth:     200,
		PointRatio:    0.5,
		OverlapRatio:  0.5,
	}
}

// DefaultPipelineConfig returns the directory layout and constants used when
// no configuration file overrides them.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Extraction: ExtractionConfig{
			Backend:   BackendFitz,
			PDFDir:    "pdfs",
			SVGDir:    "output/svg",
			Precision: 2,
		},
		Render: RenderConfig{
			SVGDir:       "output/svg",
			HTMLDir:      "output/html",
			TemplateDir:  "templates",
			PDFDir:       "pdfs",
			PageHeight:            842,
			PageHeightFromViewBox: true,
			FlipLinks:             true,
			OverlaySpace:          OverlayPDF,
			Precision:             2,
			Match:                 DefaultMatchConfig(),
		},
		Report: ReportConfig{
			Dir: "output/report",
		},
	}
}
