package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// BatchSummary is the outcome of one batch. Documents keep input order.
type BatchSummary struct {
	BatchID   uuid.UUID
	Documents []entity.DocumentResult
	Lines     int
	Empty     int
	Failed    int
	Duration  time.Duration
}

// Message is the operator-facing one-liner.
func (s BatchSummary) Message() string {
	return fmt.Sprintf("Detectadas %d líneas", s.Lines)
}

// PurchaseLines flattens every document's lines in document order.
func (s BatchSummary) PurchaseLines() []entity.PurchaseLine {
	out := make([]entity.PurchaseLine, 0, s.Lines)
	for _, d := range s.Documents {
		out = append(out, d.Lines...)
	}
	return out
}

// ProcessBatch processes docs with at most workers in flight. One bad document never
// stops the others.
func (p *Processor) ProcessBatch(ctx context.Context, docs []entity.Document, workers int) BatchSummary {
	start := time.Now()
	if workers <= 0 {
		workers = 1
	}
	sum := BatchSummary{
		BatchID:   uuid.New(),
		Documents: make([]entity.DocumentResult, len(docs)),
	}
	ctx = common.WithBatchID(ctx, sum.BatchID.String())

	var g errgroup.Group
	g.SetLimit(workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			sum.Documents[i] = p.ProcessDocument(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	for _, d := range sum.Documents {
		sum.Lines += len(d.Lines)
		switch d.Status {
		case string(constants.DocStatusEmpty):
			sum.Empty++
		case string(constants.DocStatusFailed):
			sum.Failed++
		}
	}
	sum.Duration = time.Since(start)
	p.logger.Info("processor.batch.done",
		"batch_id", sum.BatchID,
		"documents", len(docs),
		"lines", sum.Lines,
		"empty", sum.Empty,
		"failed", sum.Failed,
		"duration_ms", sum.Duration.Milliseconds(),
	)
	return sum
}
