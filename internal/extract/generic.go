package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// GenericNote marks lines read by the fallback extractor.
const GenericNote = "auto-generic"

var genericLine = regexp.MustCompile(
	`(?P<desc>[A-Za-z0-9/()., -]{8,})\s+(?P<importe>` + amount + `)\s+(?P<iva>` + legalRates() + `)\b`,
)

func legalRates() string {
	alts := make([]string, 0, len(constants.LegalIVAPercents))
	for _, p := range constants.LegalIVAPercents {
		alts = append(alts, strconv.Itoa(p))
	}
	return strings.Join(alts, "|")
}

// Generic is the permissive fallback for unknown layouts: a long description followed
// by an amount and a legal tax rate. Every line counts as one unit.
type Generic struct{}

func (Generic) Supplier() constants.SupplierID { return constants.SupplierUnknown }

func (Generic) InvoiceNumber(string) string { return "" }

func (Generic) ParseLine(line string, _ *catalog.Catalog) (entity.PurchaseLine, error) {
	g := groups(genericLine, line)
	if g == nil {
		return entity.PurchaseLine{}, ErrNoMatch
	}
	v, err := decimals(g, "importe", "iva")
	if err != nil {
		return entity.PurchaseLine{}, err
	}

	return entity.PurchaseLine{
		Ingredient:     NormSpace(g["desc"]),
		Qty:            1,
		Unit:           constants.UnitPiece,
		TotalCostGross: v[0].InexactFloat64(),
		IVARate:        v[1].Div(hundred).InexactFloat64(),
		Notes:          GenericNote,
	}, nil
}
