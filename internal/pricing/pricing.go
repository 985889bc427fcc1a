// Package pricing turns stored purchase lines into net ingredient costs and
// propagates them through recipes into suggested menu prices.
package pricing

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/extract"
)

// Tables are the hand-maintained inputs next to the purchases table.
type Tables struct {
	Recipes []entity.RecipeLine
	Yields  []entity.IngredientYield
	Margins []entity.CategoryMargin
}

// key matches ingredient names across tables regardless of case, accents and spacing.
func key(s string) string {
	return extract.Fold(extract.NormSpace(s))
}

// IngredientCosts returns the latest net unit cost per ingredient, sorted by ingredient.
// Net cost is gross / (1 + iva); lines with zero quantity or an iva rate of -1 or below carry
// no unit cost and are dropped. On equal dates the line appearing later wins.
func IngredientCosts(lines []entity.PurchaseLine) []entity.IngredientCost {
	ordered := make([]entity.PurchaseLine, 0, len(lines))
	for _, l := range lines {
		if l.Qty == 0 || 1+l.IVARate <= 0 {
			continue
		}
		ordered = append(ordered, l)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date < ordered[j].Date })

	latest := make(map[string]entity.IngredientCost, len(ordered))
	for _, l := range ordered {
		net := decimal.NewFromFloat(l.TotalCostGross).
			Div(decimal.NewFromFloat(1 + l.IVARate)).
			Div(decimal.NewFromFloat(l.Qty))
		latest[key(l.Ingredient)] = entity.IngredientCost{
			Ingredient:  l.Ingredient,
			Unit:        l.Unit,
			UnitCostNet: net.Round(4).InexactFloat64(),
			Date:        l.Date,
		}
	}

	out := make([]entity.IngredientCost, 0, len(latest))
	for _, c := range latest {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ingredient < out[j].Ingredient })
	return out
}

// SuggestPrices costs every recipe product and applies its category margin.
// Products keep the order of their first recipe line.
func SuggestPrices(t Tables, costs []entity.IngredientCost, logger *slog.Logger) []entity.SuggestedPrice {
	if logger == nil {
		logger = slog.Default()
	}

	unitCost := make(map[string]decimal.Decimal, len(costs))
	for _, c := range costs {
		unitCost[key(c.Ingredient)] = decimal.NewFromFloat(c.UnitCostNet)
	}
	yields := make(map[string]decimal.Decimal, len(t.Yields))
	for _, y := range t.Yields {
		if y.UsableYield > 0 {
			yields[key(y.Ingredient)] = decimal.NewFromFloat(y.UsableYield)
		}
	}
	margins := make(map[string]float64, len(t.Margins))
	for _, m := range t.Margins {
		margins[m.Category] = m.TargetMargin
	}

	type acc struct {
		price   entity.SuggestedPrice
		cost    decimal.Decimal
		missing []string
	}
	var order []string
	byProduct := make(map[string]*acc)

	for _, r := range t.Recipes {
		a, ok := byProduct[r.Product]
		if !ok {
			a = &acc{price: entity.SuggestedPrice{
				Product:  r.Product,
				Category: r.Category,
				IVARate:  recipeRate(r.IVARate),
			}}
			byProduct[r.Product] = a
			order = append(order, r.Product)
		}

		cost, ok := unitCost[key(r.Ingredient)]
		if !ok {
			a.missing = append(a.missing, r.Ingredient)
			continue
		}
		y, ok := yields[key(r.Ingredient)]
		if !ok {
			y = decimal.NewFromInt(1)
		}
		a.cost = a.cost.Add(decimal.NewFromFloat(r.Qty).Div(y).Mul(cost))
	}

	out := make([]entity.SuggestedPrice, 0, len(order))
	for _, name := range order {
		a := byProduct[name]
		margin := targetMargin(margins, a.price.Category)
		net := a.cost.Div(decimal.NewFromFloat(1 - margin))
		gross := net.Mul(decimal.NewFromFloat(1 + a.price.IVARate))

		p := a.price
		p.CostNet = a.cost.Round(4).InexactFloat64()
		p.TargetMargin = margin
		p.PriceNet = net.Round(2).InexactFloat64()
		p.PriceGross = gross.Round(2).InexactFloat64()
		p.MissingCosts = a.missing
		if len(a.missing) > 0 {
			logger.Warn("pricing.missing_costs", "product", p.Product, "ingredients", a.missing)
		}
		out = append(out, p)
	}
	return out
}

// recipeRate accepts a fraction or a whole percentage; missing or non-positive rates use the default.
func recipeRate(rate *float64) float64 {
	if rate == nil || *rate <= 0 {
		return constants.DefaultIVARate
	}
	if *rate >= 1 {
		return *rate / 100
	}
	return *rate
}

// targetMargin falls back to the default for unknown categories and margins outside [0, 1).
func targetMargin(margins map[string]float64, category string) float64 {
	m, ok := margins[category]
	if !ok || m < 0 || m >= 1 {
		return constants.DefaultTargetMargin
	}
	return m
}
