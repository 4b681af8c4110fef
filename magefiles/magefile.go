//go:build mage

// Package main contains Mage build targets for pdf2html developer tooling.
package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"pdfs",
	"templates",
	"output/svg",
	"output/html",
	"output/report",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "pdf2html"
	cmdPkg  = "./cmd/pdf2html"
)

func binPath() string {
	return filepath.Join(binDir, binName)
}

// Build compiles the CLI binary into bin/, stamping the version from
// the PDF2HTML_VERSION environment variable when set.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version := os.Getenv("PDF2HTML_VERSION")
	if version == "" {
		version = "dev"
	}
	out := binPath()
	if err := sh.RunV("go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Extract renders every PDF in pdfs/ to page SVGs.
func Extract() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "extract")
}

// Render assembles the extracted SVGs into HTML documents.
func Render() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "render")
}

// Convert runs extraction followed by rendering.
func Convert() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath(), "convert")
}

// Report prints the summary of the last render runs.
func Report() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "report")
}

// Clean removes generated SVG and HTML output and the binary.
func Clean() error {
	for _, dir := range []string{"output/svg", "output/html", binDir} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}

// Stats prints non-blank Go lines per package, split into production and
// test code.
func Stats() error {
	type count struct{ prod, test int }
	counts := map[string]*count{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != "." && (name == "output" || name == "bin" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		n, err := nonBlankLines(path)
		if err != nil {
			return err
		}
		c := counts[filepath.Dir(path)]
		if c == nil {
			c = &count{}
			counts[filepath.Dir(path)] = c
		}
		if strings.HasSuffix(path, "_test.go") {
			c.test += n
		} else {
			c.prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	pkgs := make([]string, 0, len(counts))
	for p := range counts {
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)
	var total count
	for _, p := range pkgs {
		c := counts[p]
		fmt.Printf("%-28s %6d %6d\n", p, c.prod, c.test)
		total.prod += c.prod
		total.test += c.test
	}
	fmt.Printf("%-28s %6d %6d\n", "total (prod, test)", total.prod, total.test)
	return nil
}

func nonBlankLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}
