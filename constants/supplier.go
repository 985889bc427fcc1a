package constants

import "strings"

// SupplierID is the canonical identifier of an invoice layout.
type SupplierID string

const (
	SupplierEuropastry SupplierID = "europastry"
	SupplierDeca       SupplierID = "deca"
	SupplierPerymuz    SupplierID = "perymuz"
	SupplierCocaCola   SupplierID = "cocacola"
	SupplierLlinares   SupplierID = "llinares"

	// SupplierUnknown is used when no alias matches; lines go through the generic extractor.
	SupplierUnknown SupplierID = "desconocido"
)

var knownSuppliers = []SupplierID{
	SupplierEuropastry,
	SupplierDeca,
	SupplierPerymuz,
	SupplierCocaCola,
	SupplierLlinares,
}

// KnownSuppliers returns the suppliers with a dedicated line extractor.
func KnownSuppliers() []SupplierID {
	out := make([]SupplierID, len(knownSuppliers))
	copy(out, knownSuppliers)
	return out
}

// CanonicalSupplier lowercases and trims a supplier id as written in configuration.
func CanonicalSupplier(input string) SupplierID {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return SupplierUnknown
	}
	return SupplierID(s)
}

func (s SupplierID) String() string { return string(s) }
