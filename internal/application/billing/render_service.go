package billing

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quotemint/backend/internal/domain/billing"
	"github.com/quotemint/backend/internal/domain/shared"
	"github.com/quotemint/backend/internal/infrastructure/render"
)

// RenderedDocument is a finished PDF ready to be served
type RenderedDocument struct {
	FileName string
	PDFData  []byte
}

// RenderService turns stored billing documents into PDFs
type RenderService struct {
	repo     billing.BillingRecordRepository
	pipeline *render.Pipeline
	workers  int
	logger   *zap.Logger
}

// NewRenderService creates a new RenderService. workers bounds the
// concurrency of batch exports; values below 1 fall back to NumCPU.
func NewRenderService(repo billing.BillingRecordRepository, pipeline *render.Pipeline, workers int, logger *zap.Logger) *RenderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &RenderService{
		repo:     repo,
		pipeline: pipeline,
		workers:  workers,
		logger:   logger,
	}
}

// RenderByID renders an owner's document to PDF
func (s *RenderService) RenderByID(ctx context.Context, ownerID, id uuid.UUID) (*RenderedDocument, error) {
	record, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Document not found")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return s.renderRecord(ctx, record)
}

// RenderByShareToken renders a document for an anonymous share link
func (s *RenderService) RenderByShareToken(ctx context.Context, token string) (*RenderedDocument, error) {
	record, err := s.repo.FindByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Document not found")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return s.renderRecord(ctx, record)
}

// RenderBatch renders several documents concurrently. Failures are
// isolated per document; the result slice keeps the request order.
func (s *RenderService) RenderBatch(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]BatchRenderResult, error) {
	if len(ids) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No document IDs provided")
	}

	results := make([]BatchRenderResult, len(ids))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.renderBatchItem(ctx, ownerID, id)
		}(i, id)
	}
	wg.Wait()

	return results, nil
}

// BatchRenderResult is the outcome of one document in a batch export.
// Either Document or Err is set.
type BatchRenderResult struct {
	ID       uuid.UUID
	Number   string
	Document *RenderedDocument
	Err      error
}

func (s *RenderService) renderBatchItem(ctx context.Context, ownerID, id uuid.UUID) BatchRenderResult {
	record, err := s.repo.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			err = shared.NewDomainError("NOT_FOUND", "Document not found")
		}
		return BatchRenderResult{ID: id, Err: err}
	}

	doc, err := s.renderRecord(ctx, record)
	if err != nil {
		s.logger.Warn("batch render failed",
			zap.String("id", id.String()),
			zap.String("number", record.Number),
			zap.Error(err))
		return BatchRenderResult{ID: id, Number: record.Number, Err: err}
	}
	return BatchRenderResult{ID: id, Number: record.Number, Document: doc}
}

func (s *RenderService) renderRecord(ctx context.Context, record *billing.BillingRecord) (*RenderedDocument, error) {
	result, err := s.pipeline.Render(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to render document %s: %w", record.Number, err)
	}

	s.logger.Info("document rendered",
		zap.String("id", record.ID.String()),
		zap.String("number", record.Number),
		zap.Int("page_count", result.PageCount),
		zap.Duration("duration", result.Duration))

	return &RenderedDocument{
		FileName: pdfFileName(record.Kind.Label(), record.Number),
		PDFData:  result.PDFData,
	}, nil
}

// pdfFileName builds a download file name like "Invoice-INV-2026-001.pdf".
// Characters outside a safe set are replaced so the name survives
// Content-Disposition headers and shell-hostile file systems.
func pdfFileName(kind, number string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, number)
	return fmt.Sprintf("%s-%s.pdf", kind, safe)
}
