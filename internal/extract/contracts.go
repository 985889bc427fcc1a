// Package extract turns invoice text into purchase lines. Each supplier layout is a
// LineExtractor; the Registry dispatches to it and falls back to the generic extractor.
package extract

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// LineExtractor maps the item lines of one supplier layout to purchase lines.
type LineExtractor interface {
	Supplier() constants.SupplierID
	// InvoiceNumber searches the whole document text; "" when absent.
	InvoiceNumber(text string) string
	// ParseLine returns ErrNoMatch for lines outside the layout, ErrSkipped for lines
	// carrying a skip marker and a *FieldError when a matched field is malformed.
	// Date and invoice number are left empty; the caller fills them per document.
	ParseLine(line string, cat *catalog.Catalog) (entity.PurchaseLine, error)
}

var (
	ErrNoMatch = errors.New("line does not match layout")
	ErrSkipped = errors.New("line carries a skip marker")
)

// FieldError reports a structurally matched line whose field failed to parse.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field, value string, err error) error {
	return &FieldError{Field: field, Value: value, Err: err}
}
