package server

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/store"
)

// ExportPurchases returns stored lines as an XLSX workbook, base64 encoded in "xlsx".
func (s *InvoiceService) ExportPurchases(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter, err := parseFilter(req)
	if err != nil {
		return nil, err
	}

	// only from -> from..today (inclusive)
	if filter.From != "" && filter.To == "" {
		filter.To = time.Now().Format("2006-01-02")
	}

	xlsx, err := s.export.PurchasesXLSX(ctx, filter)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "err", err)
		return nil, common.ToStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"xlsx":     base64.StdEncoding.EncodeToString(xlsx),
		"filename": "compras.xlsx",
	})
}

func parseFilter(req *structpb.Struct) (store.Filter, error) {
	f := req.GetFields()
	out := store.Filter{
		Supplier:   strings.TrimSpace(f["supplier"].GetStringValue()),
		Ingredient: strings.TrimSpace(f["ingredient"].GetStringValue()),
	}
	if n := f["limit"].GetNumberValue(); n > 0 {
		out.Limit = uint64(n)
	}

	out.From = strings.TrimSpace(f["from_date"].GetStringValue())
	out.To = strings.TrimSpace(f["to_date"].GetStringValue())
	v := common.NewValidator().
		Field("from_date", out.From, common.ISODate).
		Field("to_date", out.To, common.ISODate)
	if err := common.ValidateAndReturnError(v); err != nil {
		return out, err
	}
	if out.From != "" && out.To != "" && out.From > out.To {
		return out, common.InvalidArgumentError("from_date is after to_date")
	}
	return out, nil
}
