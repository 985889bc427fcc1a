// Package ingest discovers invoice files on the local filesystem and loads them as documents.
package ingest

import (
	"context"

	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	DocumentID   string
	Deduplicated bool
	HashHex      string
	FileExt      string
	Size         int64
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the CLI and the daemon depend on.
type Ingestor interface {
	// IngestPath loads a single file. Duplicates of an already loaded file come back
	// with Deduplicated set and a zero Document.
	IngestPath(ctx context.Context, path string) (entity.Document, IngestionResult, error)
	// IngestDirectory loads all matching files under root, in lexical order.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]entity.Document, []IngestionResult, DirStats, error)
}
