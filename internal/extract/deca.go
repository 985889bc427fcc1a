package extract

import (
	"regexp"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// article desc cases kilos eur_per_kg iva amount
var decaLine = regexp.MustCompile(
	`^\s*(?P<art>\d{3,})\s+(?P<desc>.+?)\s+(?P<cajas>-?\d{1,3}(?:[.,]\d+)?)\s+(?P<kilos>-?\d{1,5}[.,]\d{1,3})\s+(?P<eurkg>\d{1,3}[.,]\d{2})\s+(?P<iva>\d{1,2})\s+(?P<importe>` + amount + `)`,
)

// Deca reads butcher invoices priced by weight; quantity is the net kilos.
type Deca struct{}

func (Deca) Supplier() constants.SupplierID { return constants.SupplierDeca }

func (Deca) InvoiceNumber(text string) string { return invoiceNumber(text) }

func (Deca) ParseLine(line string, cat *catalog.Catalog) (entity.PurchaseLine, error) {
	g := groups(decaLine, line)
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
