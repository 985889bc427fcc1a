// Package pipeline runs invoice documents through text acquisition and line extraction.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// Processor coordinates text acquisition then line extraction.
type Processor struct {
	logger  *slog.Logger
	ocr     *OCRStage
	parse   *ParseStage
	timeout time.Duration
}

type Option func(*Processor)

// WithDocumentTimeout bounds each document's processing. Zero means no bound.
func WithDocumentTimeout(d time.Duration) Option {
	return func(p *Processor) { p.timeout = d }
}

func NewProcessor(logger *slog.Logger, ocr *OCRStage, parse *ParseStage, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{logger: logger, ocr: ocr, parse: parse}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessDocument never returns an error. Unreadable documents come back EMPTY with zero
// lines; a panic inside a stage comes back FAILED.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.Document) (res entity.DocumentResult) {
	start := time.Now()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	res = entity.DocumentResult{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Status:     string(constants.DocStatusRunning),
		Lines:      []entity.PurchaseLine{},
	}
	log := p.logger.With("document", doc.Name, "document_id", doc.ID)
	if batchID := common.BatchIDFromContext(ctx); batchID != "" {
		log = log.With("batch_id", batchID)
	}

	defer func() {
		if r := recover(); r != nil {
			res.Status = string(constants.DocStatusFailed)
			res.Error = fmt.Sprintf("panic: %v", r)
			res.Lines = []entity.PurchaseLine{}
			log.Error("processor.document.panic", "panic", r)
		}
		res.Duration = time.Since(start)
	}()

	ctx, cancel := common.WithTimeout(ctx, p.timeout)
	defer cancel()

	// 1) text acquisition
	acq, needsReview := p.ocr.Run(ctx, doc)
	res.Method = acq.Method
	res.Confidence = acq.Confidence
	res.NeedsReview = needsReview
	res.Warnings = acq.Warnings
	if acq.Empty() {
		res.Status = string(constants.DocStatusEmpty)
		log.Info("processor.document.empty", "detail", "0 lines detected", "warnings", len(acq.Warnings))
		return res
	}
	res.Status = string(constants.DocStatusTextOK)

	// 2) line extraction
	out := p.parse.Run(doc, acq.Text)
	res.Supplier = out.Supplier.String()
	res.InvoiceNo = out.InvoiceNo
	res.Lines = out.Lines
	res.Status = string(constants.DocStatusParsed)

	log.Info("processor.document.done",
		"supplier", res.Supplier,
		"method", res.Method,
		"lines", len(res.Lines),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res
}
