package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/menu-pricer/internal/app"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/export"
	"github.com/joseph-ayodele/menu-pricer/internal/ingest"
	"github.com/joseph-ayodele/menu-pricer/internal/logging"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir     = flag.String("dir", "", "directory of invoice files (pdf, jpg, png, heic)")
		file    = flag.String("file", "", "single invoice file, instead of --dir")
		out     = flag.String("out", "", "also write the extracted lines to this XLSX file")
		workers = flag.Int("workers", 0, "documents processed in parallel (default BATCH_WORKERS)")
		dryRun  = flag.Bool("dry-run", false, "extract and report without appending to the store")
		hidden  = flag.Bool("hidden", false, "include hidden files and directories")
	)
	flag.Parse()

	// Validate required flags
	if (*dir == "") == (*file == "") {
		printError("Error: exactly one of --dir or --file is required\n")
		os.Exit(1)
	}

	logger := logging.Setup(logging.FromEnv())

	cfg, err := app.Load()
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	if *workers <= 0 {
		*workers = cfg.Batch.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	// Load documents
	ingestor := ingest.NewFSIngestor(logger)
	docs, results, stats, err := loadDocuments(ctx, ingestor, *dir, *file, !*hidden)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	for _, r := range results {
		if r.Err != "" {
			logger.Warn("file skipped", "path", r.SourcePath, "error", r.Err)
		}
	}
	logger.Info("ingestion complete",
		"documents", len(docs),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	// Extract
	summary := a.Processor.ProcessBatch(ctx, docs, *workers)
	lines := summary.PurchaseLines()

	// Store
	if !*dryRun && len(lines) > 0 {
		if err := a.Store.Append(ctx, lines); err != nil {
			logger.Error("failed to store purchase lines", "error", err)
			printError("Error: storing lines: %v\n", err)
			os.Exit(1)
		}
	}

	// Export to XLSX
	if *out != "" {
		if err := writeXLSX(*out, lines); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	}

	for _, d := range summary.Documents {
		review := ""
		if d.NeedsReview {
			review = " (revisar)"
		}
		fmt.Printf("%-32s %-12s %-10s %3d líneas%s\n", d.Name, d.Supplier, d.Status, len(d.Lines), review)
		if d.Error != "" {
			fmt.Printf("  error: %s\n", d.Error)
		}
	}
	fmt.Println(summary.Message())
	if *out != "" {
		fmt.Printf("- Output: %s\n", *out)
	}
	if summary.Failed > 0 {
		os.Exit(3)
	}
}

func loadDocuments(ctx context.Context, ing *ingest.FSIngestor, dir, file string, skipHidden bool) ([]entity.Document, []ingest.IngestionResult, ingest.DirStats, error) {
	if dir != "" {
		return ing.IngestDirectory(ctx, dir, skipHidden)
	}
	doc, r, err := ing.IngestPath(ctx, file)
	if err != nil {
		return nil, nil, ingest.DirStats{}, err
	}
	return []entity.Document{doc}, []ingest.IngestionResult{r}, ingest.DirStats{Scanned: 1, Matched: 1, Succeeded: 1}, nil
}

func writeXLSX(out string, lines []entity.PurchaseLine) error {
	xlsx, err := export.NewService(nil, nil).LinesXLSX(lines)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(out, xlsx, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
