package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joseph-ayodele/menu-pricer/internal/app"
	"github.com/joseph-ayodele/menu-pricer/internal/export"
	"github.com/joseph-ayodele/menu-pricer/internal/logging"
	"github.com/joseph-ayodele/menu-pricer/internal/pricing"
	"github.com/joseph-ayodele/menu-pricer/internal/store"
)

func main() {
	var (
		out      = flag.String("out", "", "write suggested prices and ingredient costs to this XLSX file")
		supplier = flag.String("supplier", "", "only use purchases from this supplier")
		since    = flag.String("from", "", "only use purchases on or after YYYY-MM-DD")
		costs    = flag.Bool("costs", false, "also print ingredient costs")
	)
	flag.Parse()

	logger := logging.Setup(logging.FromEnv())
	cfg, err := app.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	tables, err := a.Tables()
	if err != nil {
		logger.Error("failed to load pricing tables", "error", err)
		os.Exit(1)
	}
	lines, err := a.Store.List(ctx, store.Filter{Supplier: *supplier, From: *since})
	if err != nil {
		logger.Error("failed to list purchases", "error", err)
		os.Exit(1)
	}

	ingredientCosts := pricing.IngredientCosts(lines)
	prices := pricing.SuggestPrices(tables, ingredientCosts, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "producto\tcategoría\tcoste neto\tmargen\tPVP sin IVA\tPVP con IVA\t")
	for _, p := range prices {
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.0f%%\t%.2f\t%.2f\t\n",
			p.Product, p.Category, p.CostNet, p.TargetMargin*100, p.PriceNet, p.PriceGross)
	}
	_ = w.Flush()

	for _, p := range prices {
		if len(p.MissingCosts) > 0 {
			fmt.Printf("! %s: sin coste para %s\n", p.Product, strings.Join(p.MissingCosts, ", "))
		}
	}

	if *costs {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ingrediente\tunidad\tcoste neto/unidad\tfecha")
		for _, c := range ingredientCosts {
			fmt.Fprintf(w, "%s\t%s\t%.4f\t%s\n", c.Ingredient, c.Unit, c.UnitCostNet, c.Date)
		}
		_ = w.Flush()
	}

	if *out != "" {
		xlsx, err := export.NewService(a.Store, logger).PricesXLSX(prices, ingredientCosts)
		if err != nil {
			logger.Error("failed to export prices", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, xlsx, 0o644); err != nil {
			logger.Error("failed to write output file", "error", err)
			os.Exit(1)
		}
		fmt.Printf("- Output: %s\n", *out)
	}
}
