package server

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// Client is a typed InvoiceService client.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractInvoice uploads a document; with store set, its lines are appended to the purchases table.
func (c *Client) ExtractInvoice(ctx context.Context, name string, content []byte, store bool, opts ...grpc.CallOption) (entity.DocumentResult, error) {
	var res entity.DocumentResult
	out, err := c.invoke(ctx, "ExtractInvoice", map[string]any{
		"name":    name,
		"content": base64.StdEncoding.EncodeToString(content),
		"store":   store,
	}, opts...)
	if err != nil {
		return res, err
	}
	err = fromStruct(out, &res)
	return res, err
}

func (c *Client) IngestPath(ctx context.Context, path string, force bool, opts ...grpc.CallOption) (string, error) {
	out, err := c.invoke(ctx, "IngestPath", map[string]any{"path": path, "force": force}, opts...)
	if err != nil {
		return "", err
	}
	return out.GetFields()["trace_id"].GetStringValue(), nil
}

// PurchaseQuery mirrors store.Filter on the wire.
type PurchaseQuery struct {
	Supplier   string
	Ingredient string
	FromDate   string
	ToDate     string
	Limit      int
}

func (q PurchaseQuery) fields() map[string]any {
	return map[string]any{
		"supplier":   q.Supplier,
		"ingredient": q.Ingredient,
		"from_date":  q.FromDate,
		"to_date":    q.ToDate,
		"limit":      q.Limit,
	}
}

func (c *Client) ListPurchases(ctx context.Context, q PurchaseQuery, opts ...grpc.CallOption) ([]entity.PurchaseLine, error) {
	out, err := c.invoke(ctx, "ListPurchases", q.fields(), opts...)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Purchases []entity.PurchaseLine `json:"purchases"`
	}
	err = fromStruct(out, &resp)
	return resp.Purchases, err
}

func (c *Client) SuggestPrices(ctx context.Context, opts ...grpc.CallOption) ([]entity.SuggestedPrice, []entity.IngredientCost, error) {
	out, err := c.invoke(ctx, "SuggestPrices", map[string]any{}, opts...)
	if err != nil {
		return nil, nil, err
	}
	var resp struct {
		Prices []entity.SuggestedPrice `json:"prices"`
		Costs  []entity.IngredientCost `json:"costs"`
	}
	err = fromStruct(out, &resp)
	return resp.Prices, resp.Costs, err
}

// ExportPurchases returns the XLSX workbook bytes.
func (c *Client) ExportPurchases(ctx context.Context, q PurchaseQuery, opts ...grpc.CallOption) ([]byte, error) {
	out, err := c.invoke(ctx, "ExportPurchases", q.fields(), opts...)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(out.GetFields()["xlsx"].GetStringValue())
}
