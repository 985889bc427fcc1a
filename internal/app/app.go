// Package app wires configuration into the extraction pipeline, shared by the binaries.
package app

import (
	"context"
	"log/slog"
	"os/exec"
	"time"

	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/extract"
	"github.com/joseph-ayodele/menu-pricer/internal/ocr"
	"github.com/joseph-ayodele/menu-pricer/internal/pipeline"
	"github.com/joseph-ayodele/menu-pricer/internal/pricing"
	"github.com/joseph-ayodele/menu-pricer/internal/store"
)

// App holds the long-lived components built from configuration.
type App struct {
	Config    *common.Config
	Catalog   *catalog.Catalog
	Acquirer  *ocr.Acquirer
	Processor *pipeline.Processor
	Store     store.Store
	Logger    *slog.Logger
}

// Load reads and validates configuration from the environment (and CONFIG_FILE).
func Load() (*common.Config, error) {
	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Build loads the catalog, sets up text acquisition and opens the store.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.Catalog.Path, "error", err)
		return nil, err
	}
	logger.Info("catalog loaded", "suppliers", len(cat.Suppliers()), "rules", len(cat.Rules()))

	acq := ocr.NewAcquirer(ocr.PDFText{}, NewEngine(cfg.OCR, logger), logger)
	processor := pipeline.NewProcessor(logger,
		pipeline.NewOCRStage(acq, logger),
		pipeline.NewParseStage(extract.NewExtractor(cat, logger), logger),
		pipeline.WithDocumentTimeout(cfg.Batch.DocTimeout),
	)

	st, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		return nil, err
	}

	return &App{
		Config:    cfg,
		Catalog:   cat,
		Acquirer:  acq,
		Processor: processor,
		Store:     st,
		Logger:    logger,
	}, nil
}

// Tables reads the pricing tables named in the configuration.
func (a *App) Tables() (pricing.Tables, error) {
	p := a.Config.Pricing
	return pricing.LoadTables(p.RecipesPath, p.YieldsPath, p.MarginsPath)
}

func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("failed to close store", "error", err)
	}
}

// NewEngine returns the tesseract engine, or nil when OCR is disabled or tesseract is missing.
func NewEngine(cfg common.OCRConfig, logger *slog.Logger) ocr.OCREngine {
	if !cfg.Enabled {
		logger.Info("image OCR disabled")
		return nil
	}
	if _, err := exec.LookPath(cfg.Tesseract); err != nil {
		logger.Warn("tesseract not found, image OCR disabled", "bin", cfg.Tesseract, "error", err)
		return nil
	}
	t := ocr.NewTesseract(ocr.Config{
		Tesseract:     cfg.Tesseract,
		TesseractLang: cfg.Lang,
		TessdataDir:   cfg.TessdataDir,
		HeicConverter: cfg.HeicConverter,
		PSM:           6,
	}, logger)
	return boundedEngine{engine: t, timeout: cfg.Timeout}
}

type boundedEngine struct {
	engine  ocr.OCREngine
	timeout time.Duration
}

func (b boundedEngine) Recognize(ctx context.Context, content []byte, ext string) (string, error) {
	ctx, cancel := common.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.engine.Recognize(ctx, content, ext)
}
