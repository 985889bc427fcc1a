// Package export renders purchase lines and suggested prices as XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/store"
)

const (
	SheetPurchases = "Compras"
	SheetPrices    = "PVP"
	SheetCosts     = "Costes"
)

// Service is a small façade over the purchases store that produces XLSX bytes.
type Service struct {
	store  store.Store
	logger *slog.Logger
}

func NewService(s store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: s, logger: logger}
}

// PurchasesXLSX returns a workbook with every stored purchase line matching f.
func (s *Service) PurchasesXLSX(ctx context.Context, f store.Filter) ([]byte, error) {
	lines, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("query purchases: %w", err)
	}
	return s.LinesXLSX(lines)
}

// LinesXLSX returns a workbook with the given purchase lines, in order.
func (s *Service) LinesXLSX(lines []entity.PurchaseLine) ([]byte, error) {
	start := time.Now()

	wb := newWorkbook(SheetPurchases)
	defer wb.Close()
	if err := wb.header(SheetPurchases, entity.PurchaseColumns); err != nil {
		return nil, err
	}
	for i, l := range lines {
		wb.row(SheetPurchases, i+2,
			l.Date, l.Supplier, l.Ingredient, l.Qty, l.Unit, l.TotalCostGross, l.IVARate, l.InvoiceNo, l.Notes)
	}

	_ = wb.f.SetColWidth(SheetPurchases, "A", "B", 12) // date, supplier
	_ = wb.f.SetColWidth(SheetPurchases, "C", "C", 40) // ingredient
	_ = wb.f.SetColWidth(SheetPurchases, "D", "G", 12) // numbers
	_ = wb.f.SetColWidth(SheetPurchases, "H", "I", 18)

	buf, err := wb.bytes()
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"sheet", SheetPurchases,
		"rows", len(lines),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf, nil
}

// PricesXLSX returns a workbook with suggested prices and the ingredient costs behind them.
func (s *Service) PricesXLSX(prices []entity.SuggestedPrice, costs []entity.IngredientCost) ([]byte, error) {
	wb := newWorkbook(SheetPrices)
	defer wb.Close()

	headers := []string{"product", "category", "iva_rate", "cost_net", "target_margin", "pvp_sin_iva", "pvp_con_iva", "missing_costs"}
	if err := wb.header(SheetPrices, headers); err != nil {
		return nil, err
	}
	for i, p := range prices {
		wb.row(SheetPrices, i+2,
			p.Product, p.Category, p.IVARate, p.CostNet, p.TargetMargin, p.PriceNet, p.PriceGross, strings.Join(p.MissingCosts, ", "))
	}
	_ = wb.f.SetColWidth(SheetPrices, "A", "B", 24)
	_ = wb.f.SetColWidth(SheetPrices, "C", "G", 13)
	_ = wb.f.SetColWidth(SheetPrices, "H", "H", 40)

	if _, err := wb.f.NewSheet(SheetCosts); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if err := wb.header(SheetCosts, []string{"ingredient", "unit", "unit_cost_net", "date"}); err != nil {
		return nil, err
	}
	for i, c := range costs {
		wb.row(SheetCosts, i+2, c.Ingredient, c.Unit, c.UnitCostNet, c.Date)
	}
	_ = wb.f.SetColWidth(SheetCosts, "A", "A", 40)

	buf, err := wb.bytes()
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok", "sheet", SheetPrices, "rows", len(prices), "costs", len(costs))
	return buf, nil
}

type workbook struct {
	f    *excelize.File
	bold int
}

// newWorkbook renames the default sheet so the first sheet is the active one.
func newWorkbook(first string) *workbook {
	f := excelize.NewFile()
	_ = f.SetSheetName("Sheet1", first)
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	return &workbook{f: f, bold: bold}
}

func (w *workbook) header(sheet string, cols []string) error {
	for i, h := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := w.f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	_ = w.f.SetCellStyle(sheet, "A1", last, w.bold)
	_ = w.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return nil
}

func (w *workbook) row(sheet string, row int, values ...any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = w.f.SetCellValue(sheet, cell, v)
	}
}

func (w *workbook) bytes() ([]byte, error) {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *workbook) Close() { _ = w.f.Close() }
