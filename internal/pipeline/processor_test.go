package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/extract"
	"github.com/joseph-ayodele/menu-pricer/internal/ocr"
)

// fakeAcquirer returns canned text keyed by document name.
type fakeAcquirer struct {
	texts  map[string]string
	method string
	conf   float32
}

func (f fakeAcquirer) Acquire(_ context.Context, doc entity.Document) ocr.Acquisition {
	if doc.Name == "panic.pdf" {
		panic("corrupt stream")
	}
	txt, ok := f.texts[doc.Name]
	if !ok {
		return ocr.Acquisition{Method: ocr.MethodNone, Warnings: []string{"pdf text: malformed pdf"}}
	}
	method := f.method
	if method == "" {
		method = ocr.MethodPDFText
	}
	return ocr.Acquisition{Text: txt, Method: method, Confidence: f.conf}
}

func newProcessor(t *testing.T, acq TextAcquirer) *Processor {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	ex := extract.NewExtractor(cat, nil, extract.WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	}))
	return NewProcessor(nil, NewOCRStage(acq, nil), NewParseStage(ex, nil), WithDocumentTimeout(time.Minute))
}

func TestProcessDocument_Europastry(t *testing.T) {
	acq := fakeAcquirer{texts: map[string]string{
		"europastry.pdf": "EUROPASTRY, S.A.\nA123 PAN BRIOCHE (6 u) 10 2,50 15,00 10",
	}}
	p := newProcessor(t, acq)

	res := p.ProcessDocument(context.Background(), entity.Document{Name: "europastry.pdf"})

	assert.Equal(t, string(constants.DocStatusParsed), res.Status)
	assert.Equal(t, "europastry", res.Supplier)
	assert.NotEqual(t, "", res.DocumentID.String())
	require.Len(t, res.Lines, 1)
	pl := res.Lines[0]
	assert.Equal(t, "PAN BRIOCHE (6 u)", pl.Ingredient)
	assert.Equal(t, 60.0, pl.Qty)
	assert.Equal(t, "ud", pl.Unit)
	assert.Equal(t, 15.00, pl.TotalCostGross)
	assert.InDelta(t, 0.10, pl.IVARate, 1e-9)
	assert.Equal(t, "2025-06-01", pl.Date)
}

func TestProcessDocument_UnknownSupplier(t *testing.T) {
	acq := fakeAcquirer{texts: map[string]string{"ticket.jpg": "PRODUCTO VARIOS ABC 12,34 21"}}
	p := newProcessor(t, acq)

	res := p.ProcessDocument(context.Background(), entity.Document{Name: "ticket.jpg"})

	assert.Equal(t, "desconocido", res.Supplier)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 1.0, res.Lines[0].Qty)
	assert.Equal(t, "ud", res.Lines[0].Unit)
	assert.InDelta(t, 0.21, res.Lines[0].IVARate, 1e-9)
}

func TestProcessDocument_EmptyText(t *testing.T) {
	p := newProcessor(t, fakeAcquirer{})

	res := p.ProcessDocument(context.Background(), entity.Document{Name: "broken.pdf"})

	assert.Equal(t, string(constants.DocStatusEmpty), res.Status)
	assert.NotNil(t, res.Lines)
	assert.Empty(t, res.Lines)
	assert.Equal(t, []string{"pdf text: malformed pdf"}, res.Warnings)
	assert.Empty(t, res.Error)
}

func TestProcessDocument_PanicIsContained(t *testing.T) {
	p := newProcessor(t, fakeAcquirer{})

	res := p.ProcessDocument(context.Background(), entity.Document{Name: "panic.pdf"})

	assert.Equal(t, string(constants.DocStatusFailed), res.Status)
	assert.Contains(t, res.Error, "corrupt stream")
	assert.Empty(t, res.Lines)
}

func TestProcessDocument_LowConfidenceNeedsReview(t *testing.T) {
	acq := fakeAcquirer{
		texts:  map[string]string{"foto.png": "PERYMUZ\nP001 AGUA C24 2 5,00 10,00 10"},
		method: ocr.MethodImageOCR,
		conf:   0.35,
	}
	p := newProcessor(t, acq)

	res := p.ProcessDocument(context.Background(), entity.Document{Name: "foto.png"})

	assert.True(t, res.NeedsReview)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 48.0, res.Lines[0].Qty)
}

func TestProcessBatch(t *testing.T) {
	acq := fakeAcquirer{texts: map[string]string{
		"a.pdf": "EUROPASTRY\nA123 PAN BRIOCHE (6 u) 10 2,50 15,00 10\nB700 CROISSANT (24 u) 3 9,60 28,80 10",
		"b.pdf": "PRODUCTO VARIOS ABC 12,34 21",
		"c.pdf": "sin lineas",
	}}
	p := newProcessor(t, acq)
	docs := []entity.Document{
		{Name: "a.pdf"},
		{Name: "broken.pdf"},
		{Name: "panic.pdf"},
		{Name: "b.pdf"},
		{Name: "c.pdf"},
	}

	sum := p.ProcessBatch(context.Background(), docs, 3)

	require.Len(t, sum.Documents, len(docs))
	for i, d := range sum.Documents {
		assert.Equal(t, docs[i].Name, d.Name, "results keep input order")
	}
	assert.Equal(t, 3, sum.Lines)
	assert.Equal(t, 1, sum.Empty)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, "Detectadas 3 líneas", sum.Message())

	lines := sum.PurchaseLines()
	require.Len(t, lines, 3)
	assert.Equal(t, "PAN BRIOCHE (6 u)", lines[0].Ingredient)
	assert.Equal(t, 72.0, lines[1].Qty)
	assert.Equal(t, "desconocido", lines[2].Supplier)
}
