// Package catalog holds the rule catalog: supplier aliases used to classify invoices and
// keyword rules giving a product's category, tax rate and unit.
//
// A Catalog is immutable once built and safe for concurrent use.
package catalog

import (
	"strings"

	"github.com/joseph-ayodele/menu-pricer/constants"
)

// SupplierAlias lists the lowercase substrings identifying one supplier in document text.
type SupplierAlias struct {
	Supplier constants.SupplierID
	Aliases  []string
}

// ProductRule maps description keywords to product metadata.
type ProductRule struct {
	Match    []string
	Category string
	IVARate  float64
	Unit     string
}

// ProductMeta is the result of a rule lookup.
type ProductMeta struct {
	Category string
	IVARate  float64
	Unit     string
}

// DefaultMeta applies when no product rule matches.
var DefaultMeta = ProductMeta{Category: "", IVARate: constants.DefaultIVARate, Unit: constants.UnitPiece}

// Catalog is the validated, ordered rule set.
type Catalog struct {
	suppliers []SupplierAlias
	rules     []ProductRule
}

// New builds a catalog, lowercasing aliases and match strings. Order is preserved.
func New(suppliers []SupplierAlias, rules []ProductRule) *Catalog {
	c := &Catalog{
		suppliers: make([]SupplierAlias, 0, len(suppliers)),
		rules:     make([]ProductRule, 0, len(rules)),
	}
	for _, s := range suppliers {
		c.suppliers = append(c.suppliers, SupplierAlias{
			Supplier: constants.CanonicalSupplier(string(s.Supplier)),
			Aliases:  lowerAll(s.Aliases),
		})
	}
	for _, r := range rules {
		if r.Unit == "" {
			r.Unit = constants.UnitPiece
		}
		r.Match = lowerAll(r.Match)
		c.rules = append(c.rules, r)
	}
	return c
}

// Suppliers returns the supplier aliases in catalog order.
func (c *Catalog) Suppliers() []SupplierAlias {
	out := make([]SupplierAlias, len(c.suppliers))
	copy(out, c.suppliers)
	return out
}

// Rules returns the product rules in evaluation order.
func (c *Catalog) Rules() []ProductRule {
	out := make([]ProductRule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the first supplier, in catalog order, with an alias occurring in text.
func (c *Catalog) Classify(text string) constants.SupplierID {
	t := strings.ToLower(text)
	for _, s := range c.suppliers {
		for _, a := range s.Aliases {
			if strings.Contains(t, a) {
				return s.Supplier
			}
		}
	}
	return constants.SupplierUnknown
}

// Lookup returns the metadata of the first rule with a keyword contained in desc.
func (c *Catalog) Lookup(desc string) ProductMeta {
	d := strings.ToLower(desc)
	for _, r := range c.rules {
		for _, w := range r.Match {
			if strings.Contains(d, w) {
				return ProductMeta{Category: r.Category, IVARate: r.IVARate, Unit: r.Unit}
			}
		}
	}
	return DefaultMeta
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
