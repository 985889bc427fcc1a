package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/extract"
)

// ParseStage is stage 2: text -> purchase lines.
type ParseStage struct {
	extractor *extract.Extractor
	logger    *slog.Logger
}

func NewParseStage(extractor *extract.Extractor, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{extractor: extractor, logger: logger}
}

func (s *ParseStage) Run(doc entity.Document, text string) extract.Result {
	res := s.extractor.Extract(text)
	s.logger.Debug("parse stage done",
		"document", doc.Name,
		"supplier", res.Supplier,
		"lines", len(res.Lines),
		"skipped", res.Skipped,
		"dropped", res.Dropped,
	)
	return res
}
