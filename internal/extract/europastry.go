package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// code desc cases unit_price amount iva
var europastryLine = regexp.MustCompile(
	`^\s*(?P<code>[A-Z0-9]{3,})\s+(?P<desc>.+?)\s+(?P<cant>-?\d+)\s+(?P<precio>` + amount + `)\s+(?P<importe>` + amount + `)\s+(?P<iva>\d{1,2})\b`,
)

var (
	europastryInvoice    = regexp.MustCompile(`(?i)FACTURA\s+N[º°.]?\s*(\w+)`)
	europastryInvoiceNum = regexp.MustCompile(`(?i)NUM\.\s*(\w+)`)
)

// Europastry reads bakery invoices. Case counts expand through a "(N u)" hint and the
// inline rate is a whole percentage.
type Europastry struct{}

func (Europastry) Supplier() constants.SupplierID { return constants.SupplierEuropastry }

func (Europastry) InvoiceNumber(text string) string {
	return firstGroup(text, europastryInvoice, europastryInvoiceNum)
}

func (Europastry) ParseLine(line string, cat *catalog.Catalog) (entity.PurchaseLine, error) {
	g := groups(europastryLine, line)
	if g == nil {
		return entity.PurchaseLine{}, ErrNoMatch
	}
	v, err := decimals(g, "cant", "importe")
	if err != nil {
		return entity.PurchaseLine{}, err
	}
	cases, total := v[0], v[1]

	desc := NormSpace(g["desc"])
	meta := cat.Lookup(desc)
	qty, unit := cases, meta.Unit
	if n, ok := UnitsPerCase(desc); ok {
		qty, unit = cases.Mul(decimal.NewFromInt(n)), constants.UnitPiece
	}

	return entity.PurchaseLine{
		Ingredient:     desc,
		Qty:            qty.InexactFloat64(),
		Unit:           unit,
		TotalCostGross: total.InexactFloat64(),
		IVARate:        resolvePercent(g["iva"], meta),
		Notes:          "cajas:" + g["cant"],
	}, nil
}
