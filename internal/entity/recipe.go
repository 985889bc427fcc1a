package entity

// IngredientCost is the latest net unit cost of an ingredient.
type IngredientCost struct {
	Ingredient  string  `json:"ingredient"`
	Unit        string  `json:"unit"`
	UnitCostNet float64 `json:"unit_cost_net"`
	Date        string  `json:"date"`
}

// RecipeLine is one ingredient of a menu product.
type RecipeLine struct {
	Product    string   `json:"product"`
	Category   string   `json:"category"`
	IVARate    *float64 `json:"iva_rate,omitempty"`
	Ingredient string   `json:"ingredient"`
	Qty        float64  `json:"qty"`
	Unit       string   `json:"unit"`
}

// IngredientYield is the usable fraction of a purchased ingredient after waste.
type IngredientYield struct {
	Ingredient  string  `json:"ingredient"`
	Unit        string  `json:"unit"`
	UsableYield float64 `json:"usable_yield"`
	Notes       string  `json:"notes"`
}

// CategoryMargin is the target gross margin for a menu section.
type CategoryMargin struct {
	Category     string  `json:"category"`
	TargetMargin float64 `json:"target_margin"`
}

// SuggestedPrice is the recommended selling price of a product.
type SuggestedPrice struct {
	Product      string  `json:"product"`
	Category     string  `json:"category"`
	IVARate      float64 `json:"iva_rate"`
	CostNet      float64 `json:"cost_net"`
	TargetMargin float64 `json:"target_margin"`
	PriceNet     float64 `json:"pvp_sin_iva"`
	PriceGross   float64 `json:"pvp_con_iva"`
	// MissingCosts lists recipe ingredients without a known purchase price.
	MissingCosts []string `json:"missing_costs,omitempty"`
}
