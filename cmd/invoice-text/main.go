package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/menu-pricer/internal/app"
	"github.com/joseph-ayodele/menu-pricer/internal/catalog"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/logging"
	"github.com/joseph-ayodele/menu-pricer/internal/ocr"
)

// invoice-text prints the text acquired from one invoice and the supplier it classifies as.
// Useful when writing a new line extractor.
func main() {
	logger := logging.Setup(logging.FromEnv())

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "invoice-text <file>")
		os.Exit(2)
	}
	path := os.Args[1]
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	cfg, err := app.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("load catalog", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	acq := ocr.NewAcquirer(ocr.PDFText{}, app.NewEngine(cfg.OCR, logger), logger)
	res := acq.Acquire(ctx, entity.Document{Name: filepath.Base(path), Content: content})

	logger.Info("text acquired",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"supplier", cat.Classify(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	for _, w := range res.Warnings {
		logger.Warn("acquisition warning", "warning", w)
	}
	fmt.Println(res.Text)
}
