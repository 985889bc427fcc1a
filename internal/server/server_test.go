package server

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/async"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/pricing"
	"github.com/joseph-ayodele/menu-pricer/internal/store"
)

type cannedProcessor struct{}

func (cannedProcessor) ProcessDocument(_ context.Context, doc entity.Document) entity.DocumentResult {
	return entity.DocumentResult{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Supplier:   "deca",
		Status:     string(constants.DocStatusParsed),
		Method:     "pdf-text",
		Lines: []entity.PurchaseLine{
			{Date: "2025-02-10", Supplier: "deca", Ingredient: "TOMATE", Qty: 5, Unit: "kg", TotalCostGross: 6.24, IVARate: 0.04, Notes: "cajas:1"},
		},
	}
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

func startServer(t *testing.T, queue async.Queue) (*Client, store.Store) {
	t.Helper()
	st, err := store.NewCSV(filepath.Join(t.TempDir(), "purchases.csv"), nil)
	require.NoError(t, err)

	tables := func() (pricing.Tables, error) {
		return pricing.Tables{
			Recipes: []entity.RecipeLine{{Product: "Ensalada", Category: "entrantes", Ingredient: "tomate", Qty: 0.2, Unit: "kg"}},
			Margins: []entity.CategoryMargin{{Category: "entrantes", TargetMargin: 0.6}},
		}, nil
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryLogging(discard())))
	RegisterInvoiceServiceServer(srv, NewInvoiceService(cannedProcessor{}, st, queue, tables, discard()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn), st
}

func TestExtractInvoice_StoresLines(t *testing.T) {
	c, st := startServer(t, nil)
	ctx := context.Background()

	res, err := c.ExtractInvoice(ctx, "deca.pdf", []byte("%PDF-1.4"), true)
	require.NoError(t, err)
	assert.Equal(t, "deca", res.Supplier)
	assert.Equal(t, "deca.pdf", res.Name)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 6.24, res.Lines[0].TotalCostGross)

	stored, err := st.List(ctx, store.Filter{})
	require.NoError(t, err)
	assert.Equal(t, res.Lines, stored)

	got, err := c.ListPurchases(ctx, PurchaseQuery{Supplier: "deca", FromDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestExtractInvoice_InvalidArguments(t *testing.T) {
	c, _ := startServer(t, nil)

	_, err := c.ExtractInvoice(context.Background(), "", []byte("x"), false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.ExtractInvoice(context.Background(), "a.pdf", nil, false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.ListPurchases(context.Background(), PurchaseQuery{FromDate: "03/02/2025"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.ListPurchases(context.Background(), PurchaseQuery{FromDate: "2025-03-01", ToDate: "2025-02-01"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.ExtractInvoice(context.Background(), strings.Repeat("a", maxDocumentName+1)+".pdf", []byte("x"), false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "'name'")

	_, err = c.ExportPurchases(context.Background(), PurchaseQuery{ToDate: "2025-02-30"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "'to_date'")
}

func TestSuggestPrices(t *testing.T) {
	c, _ := startServer(t, nil)
	ctx := context.Background()
	_, err := c.ExtractInvoice(ctx, "deca.pdf", []byte("%PDF-1.4"), true)
	require.NoError(t, err)

	prices, costs, err := c.SuggestPrices(ctx)
	require.NoError(t, err)
	require.Len(t, costs, 1)
	assert.Equal(t, 1.2, costs[0].UnitCostNet)
	require.Len(t, prices, 1)
	// 0.2 kg * 1.2 = 0.24 net; / (1 - 0.6) = 0.60; * 1.10 = 0.66
	assert.Equal(t, 0.24, prices[0].CostNet)
	assert.Equal(t, 0.6, prices[0].PriceNet)
	assert.Equal(t, 0.66, prices[0].PriceGross)
}

func TestExportPurchases(t *testing.T) {
	c, _ := startServer(t, nil)
	ctx := context.Background()
	_, err := c.ExtractInvoice(ctx, "deca.pdf", []byte("%PDF-1.4"), true)
	require.NoError(t, err)

	raw, err := c.ExportPurchases(ctx, PurchaseQuery{})
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Compras", "C2")
	require.NoError(t, err)
	assert.Equal(t, "TOMATE", v)
}

func TestIngestPath(t *testing.T) {
	c, _ := startServer(t, nil)
	_, err := c.IngestPath(context.Background(), "/inbox/a.pdf", false)
	assert.Equal(t, codes.Unimplemented, status.Code(err))

	q := &recordingQueue{}
	c, _ = startServer(t, q)
	ctx := metadata.AppendToOutgoingContext(context.Background(), RequestIDHeader, "req-42")
	trace, err := c.IngestPath(ctx, "/inbox/a.pdf", true)
	require.NoError(t, err)
	assert.Equal(t, "req-42", trace)

	_, err = c.IngestPath(context.Background(), " ", false)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	require.Len(t, q.jobs, 1)
	assert.Equal(t, "/inbox/a.pdf", q.jobs[0].Path)
	assert.True(t, q.jobs[0].Force)
	assert.Equal(t, "req-42", q.jobs[0].TraceID)
}
