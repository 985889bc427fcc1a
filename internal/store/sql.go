package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

const purchasesTable = "purchases"

// insertChunk keeps a multi-row insert under SQLite's bound-parameter limit.
const insertChunk = 500

type dialect struct {
	placeholder sq.PlaceholderFormat
	// dateExpr reads the date column back as YYYY-MM-DD
	dateExpr string
	// dateCast is appended to date placeholders
	dateCast string
}

var (
	sqliteDialect = dialect{
		placeholder: sq.Question,
		dateExpr:    "date",
	}
	postgresDialect = dialect{
		placeholder: sq.Dollar,
		dateExpr:    "to_char(date, 'YYYY-MM-DD')",
		dateCast:    "::date",
	}
)

func (d dialect) insert(lines []entity.PurchaseLine) (string, []any, error) {
	b := sq.Insert(purchasesTable).
		Columns(entity.PurchaseColumns...).
		PlaceholderFormat(d.placeholder)
	for _, l := range lines {
		b = b.Values(sq.Expr("?"+d.dateCast, l.Date), l.Supplier, l.Ingredient, l.Qty, l.Unit, l.TotalCostGross, l.IVARate, l.InvoiceNo, l.Notes)
	}
	return b.ToSql()
}

func (d dialect) list(f Filter) (string, []any, error) {
	b := sq.Select(d.dateExpr, "supplier", "ingredient", "qty", "unit", "total_cost_gross", "iva_rate", "invoice_no", "notes").
		From(purchasesTable).
		OrderBy("id").
		PlaceholderFormat(d.placeholder)
	if f.Supplier != "" {
		b = b.Where(sq.Eq{"supplier": f.Supplier})
	}
	if f.Ingredient != "" {
		b = b.Where(sq.Eq{"ingredient": f.Ingredient})
	}
	if f.From != "" {
		b = b.Where(sq.Expr("date >= ?"+d.dateCast, f.From))
	}
	if f.To != "" {
		b = b.Where(sq.Expr("date <= ?"+d.dateCast, f.To))
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}
	return b.ToSql()
}

func chunks(lines []entity.PurchaseLine, n int) [][]entity.PurchaseLine {
	var out [][]entity.PurchaseLine
	for len(lines) > n {
		out = append(out, lines[:n])
		lines = lines[n:]
	}
	if len(lines) > 0 {
		out = append(out, lines)
	}
	return out
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLine(row scanner) (entity.PurchaseLine, error) {
	var p entity.PurchaseLine
	err := row.Scan(&p.Date, &p.Supplier, &p.Ingredient, &p.Qty, &p.Unit, &p.TotalCostGross, &p.IVARate, &p.InvoiceNo, &p.Notes)
	return p, err
}
