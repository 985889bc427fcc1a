package constants

// Units written to purchase lines.
const (
	UnitPiece    = "ud"
	UnitKilogram = "kg"
)

// DefaultIVARate applies when neither the invoice nor the catalog provides a rate.
const DefaultIVARate = 0.10

// DefaultTargetMargin applies to recipe categories without a configured margin.
const DefaultTargetMargin = 0.65

// LegalIVAPercents are the Spanish VAT rates recognised by the generic extractor.
var LegalIVAPercents = []int{4, 10, 21}
