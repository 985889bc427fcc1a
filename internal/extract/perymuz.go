package extract

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// code desc cases unit_price amount iva, iva as 21 | 21,00 | 0,10
var perymuzLine = regexp.MustCompile(
	`^\s*(?P<code>[A-Z0-9]{3,})\s+(?P<desc>.+?)\s+(?P<cajas>-?\d{1,3})\s+(?P<precio>` + amount + `)\s+(?P<importe>` + amount + `)\s+(?P<iva>\d{1,2}[.,]\d{2}|\d{1,2})`,
)

var perymuzInvoice = regexp.MustCompile(`(?i)FACTURA\s+([A-Z0-9]+)`)

// perymuzSkip are the folded markers of discount and delivery-note lines.
var perymuzSkip = []string{"DESCUENTO", "ALBARAN"}

// Perymuz reads distributor invoices. Case counts expand through a "C<N>" code and
// discount or delivery-note lines are never purchases.
type Perymuz struct{}

func (Perymuz) Supplier() constants.SupplierID { return constants.SupplierPerymuz }

func (Perymuz) InvoiceNumber(text string) string {
	return firstGroup(text, perymuzInvoice)
}

func (Perymuz) ParseLine(line string, cat *catalog.Catalog) (entity.PurchaseLine, error) {
	if hasMarker(line, perymuzSkip...) {
		return entity.PurchaseLine{}, ErrSkipped
	}
	g := groups(perymuzLine, line)
	if g == nil {
		return entity.PurchaseLine{}, ErrNoMatch
	}
	v, err := decimals(g, "cajas", "importe")
	if err != nil {
		return entity.PurchaseLine{}, err
	}
	cases, total := v[0], v[1]

	desc := NormSpace(g["desc"])
	qty := cases
	if n, ok := CaseCode(desc); ok {
		qty = cases.Mul(decimal.NewFromInt(n))
	}

	return entity.PurchaseLine{
		Ingredient:     desc,
		Qty:            qty.InexactFloat64(),
		Unit:           constants.UnitPiece,
		TotalCostGross: total.InexactFloat64(),
		IVARate:        ResolveRate(g["iva"], cat.Lookup(desc)),
		Notes:          "cajas:" + g["cajas"],
	}, nil
}
