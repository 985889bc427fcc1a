package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

func sampleLines() []entity.PurchaseLine {
	return []entity.PurchaseLine{
		{Date: "2025-02-03", Supplier: "europastry", Ingredient: "BRIOCHE MINI (24 u)", Qty: 240, Unit: "ud", TotalCostGross: 36, IVARate: 0.10, InvoiceNo: "778812", Notes: "cajas:10"},
		{Date: "2025-02-10", Supplier: "deca", Ingredient: "TERNERA PICADA", Qty: 4.5, Unit: "kg", TotalCostGross: 41.63, IVARate: 0.10, Notes: "cajas:1"},
		{Date: "2025-03-01", Supplier: "deca", Ingredient: "TERNERA PICADA", Qty: -1, Unit: "kg", TotalCostGross: -9.25, IVARate: 0.10, Notes: "cajas:1"},
	}
}

func TestCSV_AppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "purchases.csv")
	s, err := NewCSV(path, nil)
	require.NoError(t, err)

	ctx := context.Background()
	lines := sampleLines()
	require.NoError(t, s.Append(ctx, lines[:1]))
	require.NoError(t, s.Append(ctx, lines[1:]))
	require.NoError(t, s.Append(ctx, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, rows, 4)
	assert.Equal(t, strings.Join(entity.PurchaseColumns, ","), rows[0])
	assert.Equal(t, "2025-02-03,europastry,BRIOCHE MINI (24 u),240,ud,36.00,0.1,778812,cajas:10", rows[1])
	assert.Equal(t, 1, strings.Count(string(raw), "total_cost_gross"))

	got, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, lines, got)
}

func TestCSV_ListFilters(t *testing.T) {
	s, err := NewCSV(filepath.Join(t.TempDir(), "purchases.csv"), nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, sampleLines()))

	got, err := s.List(ctx, Filter{Supplier: "deca"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.List(ctx, Filter{From: "2025-02-05", To: "2025-02-28"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 41.63, got[0].TotalCostGross)

	got, err = s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCSV_MissingFileListsEmpty(t *testing.T) {
	s, err := NewCSV(filepath.Join(t.TempDir(), "none.csv"), nil)
	require.NoError(t, err)

	got, err := s.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestNewCSV_EmptyPath(t *testing.T) {
	_, err := NewCSV("", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestSQLite_AppendAndList(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "purchases.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Append(ctx, sampleLines()))
	require.NoError(t, s.Append(ctx, sampleLines()[:1]))

	got, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, sampleLines()[0], got[0])
	assert.Equal(t, sampleLines()[0], got[3])

	got, err = s.List(ctx, Filter{Ingredient: "TERNERA PICADA", From: "2025-03-01"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, -9.25, got[0].TotalCostGross)
	assert.Equal(t, -1.0, got[0].Qty)
}

func TestSQLite_AppendManyChunks(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "purchases.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	lines := make([]entity.PurchaseLine, 0, insertChunk+7)
	for i := 0; i < insertChunk+7; i++ {
		lines = append(lines, sampleLines()[1])
	}
	require.NoError(t, s.Append(ctx, lines))

	got, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, got, insertChunk+7)
}

func TestDialect_Postgres(t *testing.T) {
	query, args, err := postgresDialect.insert(sampleLines()[:2])
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO purchases (date,supplier,ingredient,qty,unit,total_cost_gross,iva_rate,invoice_no,notes) "+
			"VALUES ($1::date,$2,$3,$4,$5,$6,$7,$8,$9),($10::date,$11,$12,$13,$14,$15,$16,$17,$18)",
		query)
	assert.Len(t, args, 18)
	assert.Equal(t, "2025-02-03", args[0])

	query, args, err = postgresDialect.list(Filter{Supplier: "deca", From: "2025-01-01", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT to_char(date, 'YYYY-MM-DD'), supplier, ingredient, qty, unit, total_cost_gross, iva_rate, invoice_no, notes "+
			"FROM purchases WHERE supplier = $1 AND date >= $2::date ORDER BY id LIMIT 10",
		query)
	assert.Equal(t, []any{"deca", "2025-01-01"}, args)
}

func TestChunks(t *testing.T) {
	lines := make([]entity.PurchaseLine, 5)
	got := chunks(lines, 2)
	require.Len(t, got, 3)
	assert.Len(t, got[2], 1)
	assert.Empty(t, chunks(nil, 2))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), common.StoreConfig{Driver: "mongo"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestOpen_CSVDefault(t *testing.T) {
	s, err := Open(context.Background(), common.StoreConfig{CSVPath: filepath.Join(t.TempDir(), "p.csv")}, nil)
	require.NoError(t, err)
	_, ok := s.(*CSV)
	assert.True(t, ok)
}
