// Package server exposes invoice extraction and pricing over gRPC.
//
// Messages are google.protobuf.Struct values, so clients only need the well-known types.
package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/menu-pricer/internal/async"
	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/export"
	"github.com/joseph-ayodele/menu-pricer/internal/pricing"
	"github.com/joseph-ayodele/menu-pricer/internal/store"
)

const ServiceName = "menupricer.v1.InvoiceService"

// maxDocumentName bounds the uploaded file name echoed into logs and stored rows.
const maxDocumentName = 255

// InvoiceServiceServer is the server API for InvoiceService.
type InvoiceServiceServer interface {
	ExtractInvoice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IngestPath(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListPurchases(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SuggestPrices(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportPurchases(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func unaryHandler(call func(InvoiceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error), method string) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InvoiceServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InvoiceServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// InvoiceServiceDesc describes InvoiceService for grpc.Server.RegisterService.
var InvoiceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InvoiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExtractInvoice", Handler: unaryHandler(InvoiceServiceServer.ExtractInvoice, "ExtractInvoice")},
		{MethodName: "IngestPath", Handler: unaryHandler(InvoiceServiceServer.IngestPath, "IngestPath")},
		{MethodName: "ListPurchases", Handler: unaryHandler(InvoiceServiceServer.ListPurchases, "ListPurchases")},
		{MethodName: "SuggestPrices", Handler: unaryHandler(InvoiceServiceServer.SuggestPrices, "SuggestPrices")},
		{MethodName: "ExportPurchases", Handler: unaryHandler(InvoiceServiceServer.ExportPurchases, "ExportPurchases")},
	},
	Metadata: "menupricer/v1/invoice.proto",
}

func RegisterInvoiceServiceServer(s grpc.ServiceRegistrar, srv InvoiceServiceServer) {
	s.RegisterService(&InvoiceServiceDesc, srv)
}

// DocumentProcessor extracts purchase lines from one document.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc entity.Document) entity.DocumentResult
}

// TablesLoader returns the current recipe, yield and margin tables.
type TablesLoader func() (pricing.Tables, error)

type InvoiceService struct {
	processor DocumentProcessor
	store     store.Store
	queue     async.Queue
	tables    TablesLoader
	export    *export.Service
	logger    *slog.Logger
}

// NewInvoiceService wires the handlers. queue may be nil, which disables IngestPath.
func NewInvoiceService(proc DocumentProcessor, st store.Store, queue async.Queue, tables TablesLoader, logger *slog.Logger) *InvoiceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceService{
		processor: proc,
		store:     st,
		queue:     queue,
		tables:    tables,
		export:    export.NewService(st, logger),
		logger:    logger,
	}
}

// ExtractInvoice processes an uploaded document: {name, content (base64), store (bool)}.
func (s *InvoiceService) ExtractInvoice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	name := strings.TrimSpace(f["name"].GetStringValue())
	content, err := base64.StdEncoding.DecodeString(f["content"].GetStringValue())
	if err != nil {
		return nil, common.InvalidArgumentErrorf("content must be base64: %v", err)
	}
	v := common.NewValidator().
		Field("name", name, common.Required, common.MaxLength(maxDocumentName)).
		Field("content", content, common.Required)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	res := s.processor.ProcessDocument(ctx, entity.Document{ID: uuid.New(), Name: name, Content: content})
	if f["store"].GetBoolValue() && len(res.Lines) > 0 {
		if err := s.store.Append(ctx, res.Lines); err != nil {
			s.logger.Error("store append failed", "document", name, "error", err)
			return nil, common.ToStatus(err)
		}
	}
	s.logger.Info("extract invoice",
		"document", name,
		"supplier", res.Supplier,
		"status", res.Status,
		"lines", len(res.Lines),
	)
	return toStruct(res)
}

// ListPurchases returns stored lines: {supplier, ingredient, from_date, to_date, limit}.
func (s *InvoiceService) ListPurchases(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter, err := parseFilter(req)
	if err != nil {
		return nil, err
	}
	lines, err := s.store.List(ctx, filter)
	if err != nil {
		s.logger.Warn("list purchases failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{"purchases": lines, "count": len(lines)})
}

// SuggestPrices costs every recipe from the stored purchases.
func (s *InvoiceService) SuggestPrices(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	tables, err := s.tables()
	if err != nil {
		s.logger.Warn("loading pricing tables failed", "error", err)
		return nil, common.ToStatus(err)
	}
	lines, err := s.store.List(ctx, store.Filter{})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	costs := pricing.IngredientCosts(lines)
	prices := pricing.SuggestPrices(tables, costs, s.logger)
	return toStruct(map[string]any{"prices": prices, "costs": costs})
}
