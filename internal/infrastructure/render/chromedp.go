package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second

	// A4 portrait in inches. Page margins come from the document's @page
	// rule, so Chrome's own margins stay at zero.
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// ChromedpConfig contains configuration for the chromedp converter.
type ChromedpConfig struct {
	// DefaultTimeout for conversion operations.
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional).
	// If empty, chromedp launches a local browser.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root).
	NoSandbox bool
	// Logger for debug output.
	Logger *zap.Logger
}

// ChromedpConverter converts HTML to PDF using Chrome DevTools Protocol.
type ChromedpConverter struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpConverter creates a new chromedp-based converter.
func NewChromedpConverter(config *ChromedpConfig) (*ChromedpConverter, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &ChromedpConverter{
		config: config,
		logger: logger,
	}
	c.initAllocator()
	return c, nil
}

func (c *ChromedpConverter) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("font-render-hinting", "none"),
		chromedp.Flag("allow-file-access-from-files", true),
	)
	if c.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	if c.config.RemoteURL != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), c.config.RemoteURL)
	} else {
		c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
}

// Convert renders HTML to a PDF via PrintToPDF.
func (c *ChromedpConverter) Convert(ctx context.Context, req *ConvertRequest) (*ConvertResult, error) {
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

	browserCtx, browserCancel := chromedp.NewContext(c.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			c.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, req.HTML).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithScale(1.0).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &ConversionError{
				Message: fmt.Sprintf("PDF conversion timed out after %v", timeout),
				Timeout: true,
				Cause:   err,
			}
		}
		if ctx.Err() == context.Canceled {
			return nil, &ConversionError{Message: "PDF conversion was cancelled", Timeout: true, Cause: err}
		}

		c.logger.Error("chromedp conversion failed", zap.Error(err))
		return nil, &ConversionError{Message: "chromedp execution failed: " + err.Error(), Cause: err}
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

// Close releases the browser allocator.
func (c *ChromedpConverter) Close() error {
	if c.allocCancel != nil {
		c.allocCancel()
	}
	return nil
}

// Ensure ChromedpConverter implements PDFConverter
var _ PDFConverter = (*ChromedpConverter)(nil)
