package render

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

	"go.uber.org/zap"
)

const (
	defaultBinaryPath = "wkhtmltopdf"
	defaultWkTimeout  = 30 * time.Second
)

// WkhtmltopdfConfig contains configuration for the wkhtmltopdf converter.
type WkhtmltopdfConfig struct {
	// BinaryPath is the path to the wkhtmltopdf binary.
	// If empty, the binary is searched in PATH.
	BinaryPath string
	// DefaultTimeout for conversion operations.
	DefaultTimeout time.Duration
	// TempDir for temporary files during conversion.
	TempDir string
	// Logger for debug output.
	Logger *zap.Logger
}

// WkhtmltopdfConverter converts HTML to PDF using the wkhtmltopdf command-line
// tool. It is a fallback for environments without Chrome.
type WkhtmltopdfConverter struct {
	config *WkhtmltopdfConfig
	logger *zap.Logger
}

// NewWkhtmltopdfConverter creates a new wkhtmltopdf-based converter.
func NewWkhtmltopdfConverter(config *WkhtmltopdfConfig) (*WkhtmltopdfConverter, error) {
	if config == nil {
		config = &WkhtmltopdfConfig{}
	}
	if config.BinaryPath == "" {
		config.BinaryPath = defaultBinaryPath
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultWkTimeout
	}
	if config.TempDir == "" {
		config.TempDir = os.TempDir()
	}

	binaryPath, err := resolveBinaryPath(config.BinaryPath)
	if err != nil {
		return nil, &ConversionError{
			Message: fmt.Sprintf("wkhtmltopdf binary not found: %s", config.BinaryPath),
			Cause:   err,
		}
	}
	config.BinaryPath = binaryPath

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &WkhtmltopdfConverter{
		config: config,
		logger: logger,
	}, nil
}

// resolveBinaryPath finds the full path to the binary.
func resolveBinaryPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	return exec.LookPath(path)
}

// Convert renders HTML to a PDF by shelling out to wkhtmltopdf.
func (c *WkhtmltopdfConverter) Convert(ctx context.Context, req *ConvertRequest) (*ConvertResult, error) {
	if req == nil {
		return nil, &ConversionError{Message: "convert request is nil"}
	}
	if strings.TrimSpace(req.HTML) == "" {
		return nil, &ConversionError{Message: "HTML content is empty"}
	}

	startTime := time.Now()

	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	htmlFile, err := os.CreateTemp(c.config.TempDir, "doc-*.html")
	if err != nil {
		return nil, &ConversionError{Message: "failed to create temp HTML file", Cause: err}
	}
	htmlPath := htmlFile.Name()
	defer os.Remove(htmlPath)

	if _, err := htmlFile.WriteString(req.HTML); err != nil {
		htmlFile.Close()
		return nil, &ConversionError{Message: "failed to write HTML to temp file", Cause: err}
	}
	htmlFile.Close()

	pdfFile, err := os.CreateTemp(c.config.TempDir, "doc-*.pdf")
	if err != nil {
		return nil, &ConversionError{Message: "failed to create temp PDF file", Cause: err}
	}
	pdfPath := pdfFile.Name()
	pdfFile.Close()
	defer os.Remove(pdfPath)

	args := c.buildArgs(req, htmlPath, pdfPath)

	c.logger.Debug("executing wkhtmltopdf",
		zap.String("binary", c.config.BinaryPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, c.config.BinaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &ConversionError{
				Message: fmt.Sprintf("PDF conversion timed out after %v", timeout),
				Timeout: true,
				Cause:   err,
			}
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, &ConversionError{Message: "PDF conversion was cancelled", Timeout: true, Cause: err}
		}

		c.logger.Error("wkhtmltopdf failed",
			zap.Error(err),
			zap.String("stderr", stderr.String()))

		return nil, &ConversionError{
			Message: "wkhtmltopdf execution failed: " + stderr.String(),
			Cause:   err,
		}
	}

	pdfData, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, &ConversionError{Message: "failed to read generated PDF", Cause: err}
	}
	if len(pdfData) == 0 {
		return nil, &ConversionError{Message: "generated PDF is empty"}
	}

	result := &ConvertResult{
		PDFData:   pdfData,
		PageCount: estimatePageCount(pdfData),
		Duration:  time.Since(startTime),
	}

	c.logger.Info("PDF converted",
		zap.Int("bytes", len(result.PDFData)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// buildArgs constructs the command-line arguments for wkhtmltopdf. Margins
// stay zero; the document's @page rule owns the page geometry.
func (c *WkhtmltopdfConverter) buildArgs(req *ConvertRequest, htmlPath, pdfPath string) []string {
	args := []string{
		"--quiet",
		"--encoding", "UTF-8",
		"--page-size", "A4",
		"--orientation", "Portrait",
		"--margin-top", "0mm",
		"--margin-right", "0mm",
		"--margin-bottom", "0mm",
		"--margin-left", "0mm",
		"--disable-javascript",
		// Logo images are referenced with file:// URLs.
		"--enable-local-file-access",
	}
	if req.Title != "" {
		args = append(args, "--title", req.Title)
	}
	args = append(args, htmlPath, pdfPath)
	return args
}

// Close releases resources (no-op for wkhtmltopdf).
func (c *WkhtmltopdfConverter) Close() error {
	return nil
}

// Ensure WkhtmltopdfConverter implements PDFConverter
var _ PDFConverter = (*WkhtmltopdfConverter)(nil)
