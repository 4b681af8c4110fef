// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mutool drives the MuPDF command-line tool as an alternative SVG
// producer for environments where the in-process MuPDF binding is not
// available.
package mutool

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

// DefaultBinary is the executable looked up on PATH when none is configured.
const DefaultBinary = "mutool"

// Tool renders PDF pages to SVG with an external mutool binary.
type Tool interface {
	// Name returns the binary used.
	Name() string

	// Available reports whether the binary exists and runs.
	Available() bool

	// DrawSVG renders 1-based page of the PDF at pdfPath and returns the
	// SVG text written to stdout.
	DrawSVG(pdfPath string, page int) (string, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

type tool struct {
	bin  string
	exec executor
}

func (t *tool) Name() string { return t.bin }

func (t *tool) Available() bool {
	if _, err := t.exec.LookPath(t.bin); err != nil {
		return false
	}
	return t.exec.RunSilent(t.bin, "-v") == nil
}

func (t *tool) DrawSVG(pdfPath string, page int) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("invalid page %d: pages are numbered from 1", page)
	}
	args := []string{"draw", "-q", "-F", "svg", "-o", "-", pdfPath, strconv.Itoa(page)}
	var out bytes.Buffer
	if err := t.exec.RunPiped(t.bin, args, nil, &out); err != nil {
		return "", fmt.Errorf("running %s draw on %s page %d: %w", t.bin, pdfPath, page, err)
	}
	return out.String(), nil
}

var defaultExec = &osExecutor{}

// Detect returns a Tool for bin, or DefaultBinary when bin is empty.
// It fails when the binary is missing or does not run.
func Detect(bin string) (Tool, error) {
	return detect(bin, defaultExec)
}

func detect(bin string, exec executor) (Tool, error) {
	if bin == "" {
		bin = DefaultBinary
	}
	t := &tool{bin: bin, exec: exec}
	if !t.Available() {
		return nil, fmt.Errorf("mutool not available: %s not found or not operational", bin)
	}
	return t, nil
}
