package render

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quotemint/backend/internal/domain/billing"
)

// Config holds the pipeline settings.
type Config struct {
	// PageCapacity is the number of item rows per page. Zero means the
	// default of 8.
	PageCapacity int
	// AssetDir is the directory holding static assets (the logo).
	AssetDir string
	// ConvertTimeout bounds a single PDF conversion. Zero defers to the
	// converter default.
	ConvertTimeout time.Duration
}

// Pipeline runs a billing record through the full rendering sequence:
// validation, tax computation, row rendering, pagination, document
// composition, and finally PDF conversion. RenderHTML stops before the
// conversion step and is fully deterministic.
type Pipeline struct {
	config    Config
	composer  *DocumentComposer
	converter PDFConverter
	logger    *zap.Logger
}

// NewPipeline builds the pipeline, parsing and verifying the document
// layouts up front.
func NewPipeline(config Config, converter PDFConverter, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PageCapacity <= 0 {
		config.PageCapacity = defaultPageCapacity
	}

	composer, err := NewDocumentComposer(config.AssetDir)
	if err != nil {
		return nil, wrapStage(StageCompose, err)
	}

	return &Pipeline{
		config:    config,
		composer:  composer,
		converter: converter,
		logger:    logger,
	}, nil
}

// RenderHTML produces the complete paginated document HTML for a record.
// The same record always yields byte-identical output.
func (p *Pipeline) RenderHTML(record *billing.BillingRecord) (string, error) {
	if record == nil {
		return "", wrapStage(StageValidate, NewValidationError("record", "record is nil"))
	}
	if err := record.Validate(); err != nil {
		return "", wrapStage(StageValidate, err)
	}

	rows, err := RenderRows(record)
	if err != nil {
		return "", wrapStage(StageRows, err)
	}
	if rows.Breakdown.Degraded {
		p.logger.Warn("tax rates incomplete, rendering without tax lines",
			zap.String("number", record.Number),
			zap.String("regime", string(record.Regime)))
	}

	pages := SplitPages(rows, p.config.PageCapacity)

	html, err := p.composer.Compose(record, pages)
	if err != nil {
		return "", wrapStage(StageCompose, err)
	}
	return html, nil
}

// Render produces the final PDF for a record.
func (p *Pipeline) Render(ctx context.Context, record *billing.BillingRecord) (*ConvertResult, error) {
	html, err := p.RenderHTML(record)
	if err != nil {
		return nil, err
	}

	result, err := p.converter.Convert(ctx, &ConvertRequest{
		HTML:    html,
		Title:   record.Kind.Title() + " " + record.Number,
		Timeout: p.config.ConvertTimeout,
	})
	if err != nil {
		return nil, wrapStage(StageConvert, err)
	}

	p.logger.Debug("document rendered",
		zap.String("number", record.Number),
		zap.Int("pages", result.PageCount))

	return result, nil
}

// Close releases the underlying converter.
func (p *Pipeline) Close() error {
	return p.converter.Close()
}
