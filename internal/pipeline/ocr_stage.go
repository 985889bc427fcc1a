package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/ocr"
)

// TextAcquirer is stage 1: document -> text.
type TextAcquirer interface {
	Acquire(ctx context.Context, doc entity.Document) ocr.Acquisition
}

type OCRStage struct {
	acquirer TextAcquirer
	logger   *slog.Logger
}

func NewOCRStage(acquirer TextAcquirer, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStage{acquirer: acquirer, logger: logger}
}

// Run acquires the document text and decides whether a human should review it.
func (s *OCRStage) Run(ctx context.Context, doc entity.Document) (ocr.Acquisition, bool) {
	res := s.acquirer.Acquire(ctx, doc)

	needsReview := false
	if res.Method == ocr.MethodImageOCR && res.Confidence < constants.ImageConfidenceThreshold {
		s.logger.Warn("image ocr confidence low; needs review",
			"document", doc.Name,
			"document_id", doc.ID,
			"conf", res.Confidence,
		)
		needsReview = true
	}
	return res, needsReview
}
