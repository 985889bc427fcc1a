package entity

import (
	"strconv"
)

// PurchaseLine is one purchased item read from a supplier invoice.
// Values are built once per extraction and never mutated afterwards.
type PurchaseLine struct {
	Date           string  `json:"date"`
	Supplier       string  `json:"supplier"`
	Ingredient     string  `json:"ingredient"`
	Qty            float64 `json:"qty"`
	Unit           string  `json:"unit"`
	TotalCostGross float64 `json:"total_cost_gross"`
	IVARate        float64 `json:"iva_rate"`
	InvoiceNo      string  `json:"invoice_no"`
	Notes          string  `json:"notes"`
}

// PurchaseColumns is the column order of the purchases table.
var PurchaseColumns = []string{
	"date",
	"supplier",
	"ingredient",
	"qty",
	"unit",
	"total_cost_gross",
	"iva_rate",
	"invoice_no",
	"notes",
}

// Record renders the line as a row in PurchaseColumns order.
func (p PurchaseLine) Record() []string {
	return []string{
		p.Date,
		p.Supplier,
		p.Ingredient,
		strconv.FormatFloat(p.Qty, 'f', -1, 64),
		p.Unit,
		strconv.FormatFloat(p.TotalCostGross, 'f', 2, 64),
		strconv.FormatFloat(p.IVARate, 'f', -1, 64),
		p.InvoiceNo,
		p.Notes,
	}
}

// IsCredit reports whether the line is a return or correction.
func (p PurchaseLine) IsCredit() bool {
	return p.TotalCostGross < 0
}
