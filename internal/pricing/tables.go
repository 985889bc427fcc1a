package pricing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/extract"
)

// LoadTables reads the recipe, yield and margin CSV files. A missing file yields an empty table.
func LoadTables(recipesPath, yieldsPath, marginsPath string) (Tables, error) {
	var t Tables

	rows, err := readTable(recipesPath, "product", "ingredient", "qty")
	if err != nil {
		return t, err
	}
	for i, r := range rows {
		qty, err := number(r, "qty")
		if err != nil {
			return t, tableError(recipesPath, i, err)
		}
		line := entity.RecipeLine{
			Product:    r["product"],
			Category:   r["category"],
			Ingredient: r["ingredient"],
			Qty:        qty,
			Unit:       r["unit"],
		}
		if r["iva_rate"] != "" {
			rate, err := number(r, "iva_rate")
			if err != nil {
				return t, tableError(recipesPath, i, err)
			}
			line.IVARate = &rate
		}
		t.Recipes = append(t.Recipes, line)
	}

	rows, err = readTable(yieldsPath, "ingredient")
	if err != nil {
		return t, err
	}
	for i, r := range rows {
		y := entity.IngredientYield{Ingredient: r["ingredient"], Unit: r["unit"], Notes: r["notes"]}
		if r["usable_yield"] != "" {
			if y.UsableYield, err = number(r, "usable_yield"); err != nil {
				return t, tableError(yieldsPath, i, err)
			}
		}
		t.Yields = append(t.Yields, y)
	}

	rows, err = readTable(marginsPath, "category", "target_margin")
	if err != nil {
		return t, err
	}
	for i, r := range rows {
		m, err := number(r, "target_margin")
		if err != nil {
			return t, tableError(marginsPath, i, err)
		}
		t.Margins = append(t.Margins, entity.CategoryMargin{Category: r["category"], TargetMargin: m})
	}
	return t, nil
}

// readTable returns the rows of a headed CSV as column-name maps.
func readTable(path string, required ...string) ([]map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, common.WrapError(err, "open "+path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, common.WrapError(err, "read "+path)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	for _, col := range required {
		if !slices.Contains(header, col) {
			return nil, common.NewAppError("TABLE_ERROR", fmt.Sprintf("%s: missing column %q", path, col), common.ErrInvalidInput)
		}
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, common.WrapError(err, "read "+path)
		}
		row := make(map[string]string, len(header))
		empty := true
		for i, col := range header {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
				empty = empty && row[col] == ""
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func number(row map[string]string, col string) (float64, error) {
	v, err := extract.ParseLocaleFloat(row[col])
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", col, row[col], err)
	}
	return v, nil
}

func tableError(path string, row int, err error) error {
	// +2: header line and 1-based numbering
	return common.NewAppError("TABLE_ERROR", fmt.Sprintf("%s line %d", path, row+2), fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
}

