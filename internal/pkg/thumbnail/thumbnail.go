// Package thumbnail renders the first page of a PDF to PNG with an external converter (poppler's pdftoppm).
package thumbnail

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	Density = 100
	Width   = 900
	Height  = 1200
	Page    = 1
)

type Generator interface {
	// Generate renders page 1 of pdfPath and returns the PNG file name.
	Generate(ctx context.Context, pdfPath string) (string, error)
}

// Runner executes the converter and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type PDFToPPM struct {
	binary string
	outDir string
	run    Runner
	// timeout bounds a single conversion
	timeout time.Duration
}

func NewPDFToPPM(binary, outDir string) *PDFToPPM {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &PDFToPPM{binary: binary, outDir: outDir, run: execRunner, timeout: time.Minute}
}

// WithRunner swaps the process runner.
func (g *PDFToPPM) WithRunner(r Runner) *PDFToPPM {
	g.run = r
	return g
}

// FileName is the thumbnail name for a stored book: "<stem>.1.png".
func FileName(bookFileName string) string {
	stem := strings.TrimSuffix(bookFileName, filepath.Ext(bookFileName))
	return fmt.Sprintf("%s.%d.png", stem, Page)
}

func (g *PDFToPPM) args(pdfPath, outPrefix string) []string {
	page := strconv.Itoa(Page)
	return []string{
		"-png",
		"-singlefile",
		"-f", page,
		"-l", page,
		"-r", strconv.Itoa(Density),
		"-scale-to-x", strconv.Itoa(Width),
		"-scale-to-y", strconv.Itoa(Height),
		pdfPath,
		outPrefix,
	}
}

func (g *PDFToPPM) Generate(ctx context.Context, pdfPath string) (string, error) {
	name := FileName(filepath.Base(pdfPath))
	outPrefix := filepath.Join(g.outDir, strings.TrimSuffix(name, ".png"))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.run(ctx, g.binary, g.args(pdfPath, outPrefix)...)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", g.binary, err, strings.TrimSpace(string(out)))
	}

	if _, err := os.Stat(outPrefix + ".png"); err != nil {
		return "", fmt.Errorf("thumbnail %s was not produced: %w", name, err)
	}
	return name, nil
}
