package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/FirstLeaseAgent/template-pdf/config"
	"github.com/FirstLeaseAgent/template-pdf/model"
)

// Converter renders Word documents to PDF through an external executable
// (LibreOffice by default). The call is synchronous; the timeout keeps a
// wedged converter from hanging the request.
type Converter struct {
	binary  string
	timeout time.Duration
}

func NewConverter(cfg *config.ConverterConfig) *Converter {
	return &Converter{
		binary:  cfg.Binary,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Convert renders wordPath into a PDF next to it in outputDir and returns
// the PDF path. Every failure, timeout included, wraps
// model.ErrConversionFailed; the Word document remains usable.
func (c *Converter) Convert(ctx context.Context, wordPath, outputDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outputDir,
		wordPath,
	)
	output, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: timed out after %s", model.ErrConversionFailed, c.timeout)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v: %s", model.ErrConversionFailed, err, bytes.TrimSpace(output))
	}

	base := strings.TrimSuffix(filepath.Base(wordPath), filepath.Ext(wordPath))
	pdfPath := filepath.Join(outputDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("%w: converter exited cleanly but produced no output", model.ErrConversionFailed)
	}
	return pdfPath, nil
}
