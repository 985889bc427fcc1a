package extract

import (
	"regexp"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// code desc cases units kilos price iva amount
var llinaresLine = regexp.MustCompile(
	`^\s*(?P<code>\d{6,})\s+(?P<desc>.+?)\s+(?P<cajas>-?\d{1,3})\s+(?P<ud>-?\d{1,3})\s+(?P<kilos>-?\d{1,3}[.,]\d{2})\s+(?P<precio>\d{1,3}[.,]\d{3}|\d{1,3}[.,]\d{2})\s+(?P<iva>\d{1,2})\s+(?P<importe>` + amount + `)`,
)

// Llinares reads greengrocer invoices; quantity is the net kilos.
type Llinares struct{}

func (Llinares) Supplier() constants.SupplierID { return constants.SupplierLlinares }

func (Llinares) InvoiceNumber(text string) string { return invoiceNumber(text) }

func (Llinares) ParseLine(line string, cat *catalog.Catalog) (entity.PurchaseLine, error) {
	g := groups(llinaresLine, line)
	if g == nil {
		return entity.PurchaseLine{}, ErrNoMatch
	}
	v, err := decimals(g, "kilos", "importe")
	if err != nil {
		return entity.PurchaseLine{}, err
	}

	desc := NormSpace(g["desc"])
	return entity.PurchaseLine{
		Ingredient:     desc,
		Qty:            v[0].InexactFloat64(),
		Unit:           constants.UnitKilogram,
		TotalCostGross: v[1].InexactFloat64(),
		IVARate:        ResolveRate(g["iva"], cat.Lookup(desc)),
		Notes:          "cajas:" + g["cajas"],
	}, nil
}
