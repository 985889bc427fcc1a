package extract

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// Result is the outcome of extracting one document's text.
type Result struct {
	Supplier  constants.SupplierID
	Date      string
	InvoiceNo string
	Lines     []entity.PurchaseLine
	Skipped   int // lines with a skip marker
	Dropped   int // matched lines with a malformed field
}

// Extractor classifies document text and runs the supplier's line extractor over it.
// It is safe for concurrent use once built.
type Extractor struct {
	catalog  *catalog.Catalog
	registry *Registry
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Extractor)

// WithClock sets the clock used for documents without a date.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithRegistry replaces DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(e *Extractor) { e.registry = r }
}

func NewExtractor(cat *catalog.Catalog, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{
		catalog:  cat,
		registry: DefaultRegistry(),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the rule catalog the extractor classifies with.
func (e *Extractor) Catalog() *catalog.Catalog { return e.catalog }

// Extract never fails: text without purchase lines yields an empty Result.Lines.
func (e *Extractor) Extract(text string) Result {
	supplier := e.catalog.Classify(text)
	x := e.registry.For(supplier)
	res := Result{
		Supplier:  x.Supplier(),
		Date:      ResolveDate(text, e.now()),
		InvoiceNo: x.InvoiceNumber(text),
		Lines:     make([]entity.PurchaseLine, 0),
	}
	log := e.logger.With("supplier", res.Supplier)

	for i, line := range strings.Split(text, "\n") {
		pl, err := x.ParseLine(strings.TrimRight(line, "\r"), e.catalog)
		var fe *FieldError
		switch {
		case err == nil:
			pl.Date = res.Date
			pl.Supplier = res.Supplier.String()
			pl.InvoiceNo = res.InvoiceNo
			res.Lines = append(res.Lines, pl)
		case errors.Is(err, ErrNoMatch):
		case errors.Is(err, ErrSkipped):
			res.Skipped++
			log.Debug("extract.line.skipped", "line_no", i+1)
		case errors.As(err, &fe):
			res.Dropped++
			log.Debug("extract.line.dropped", "line_no", i+1, "field", fe.Field, "value", fe.Value)
		default:
			res.Dropped++
			log.Debug("extract.line.dropped", "line_no", i+1, "error", err)
		}
	}
	return res
}
