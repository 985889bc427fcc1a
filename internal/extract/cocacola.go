package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// ean code desc qty unit_price ... iva(21|10)
var cocaColaLine = regexp.MustCompile(
	`^\s*(?P<ean>\d{8,14})\s+(?P<code>\d{2,})\s+(?P<desc>.+?)\s+(?P<cant>-?\d{1,4})\s+(?P<precio>` + amount + `).*?(?P<iva>21|10)\s*$`,
)

// CocaCola reads beverage invoices. The line amount is quantity times unit price.
type CocaCola struct{}

func (CocaCola) Supplier() constants.SupplierID { return constants.SupplierCocaCola }

func (CocaCola) InvoiceNumber(text string) string { return invoiceNumber(text) }

func (CocaCola) ParseLine(line string, cat *catalog.Catalog) (entity.PurchaseLine, error) {
	g := groups(cocaColaLine, line)
	if g == nil {
		return entity.PurchaseLine{}, ErrNoMatch
	}
	v, err := decimals(g, "cant", "precio")
	if err != nil {
		return entity.PurchaseLine{}, err
	}
	count, price := v[0], v[1]

	desc := NormSpace(g["desc"])
	qty := count
	if n, ok := CaseCode(desc); ok {
		qty = count.Mul(decimal.NewFromInt(n))
	}

	return entity.PurchaseLine{
		Ingredient:     desc,
		Qty:            qty.InexactFloat64(),
		Unit:           constants.UnitPiece,
		TotalCostGross: count.Mul(price).Round(2).InexactFloat64(),
		IVARate:        ResolveRate(g["iva"], cat.Lookup(desc)),
	}, nil
}
