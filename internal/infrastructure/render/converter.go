package render

import (
	"bytes"
	"context"
	"time"
)

// ConvertRequest carries a fully composed HTML document to a PDF backend.
type ConvertRequest struct {
	// HTML is the complete document markup, including the DOCTYPE.
	HTML string
	// Title appears in the PDF metadata.
	Title string
	// Timeout overrides the converter default when non-zero.
	Timeout time.Duration
}

// ConvertResult contains the generated PDF.
type ConvertResult struct {
	PDFData   []byte
	PageCount int
	Duration  time.Duration
}

// PDFConverter turns composed HTML into PDF bytes. Implementations must be
// safe for concurrent use; batch rendering calls Convert from multiple
// goroutines.
type PDFConverter interface {
	Convert(ctx context.Context, req *ConvertRequest) (*ConvertResult, error)
	Close() error
}

// estimatePageCount counts page objects in the PDF data. The count includes
// the parent "/Type /Pages" object, which is subtracted back out.
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	parentCount := bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count-parentCount, 1)
}
