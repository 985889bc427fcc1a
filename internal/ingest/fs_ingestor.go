package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
)

// DefaultMaxBytes bounds a single invoice file.
const DefaultMaxBytes = 32 << 20

// FSIngestor reads from the local filesystem. Content hashes are remembered for the
// lifetime of the ingestor, so one run never loads the same invoice twice.
type FSIngestor struct {
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> constants.AllowedExtensions
	MaxBytes    int64

	logger *slog.Logger
	mu     sync.Mutex
	seen   map[string]string // hash -> first path
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{
		MaxBytes: DefaultMaxBytes,
		logger:   logger,
		seen:     make(map[string]string),
	}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (entity.Document, IngestionResult, error) {
	out := IngestionResult{SourcePath: path}
	if err := ctx.Err(); err != nil {
		return entity.Document{}, out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path error", "path", path, "error", err)
		return entity.Document{}, out, err
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	out.FileExt = ext
	if ext == "" || !allowedIn(abs, i.AllowedExts) {
		i.logger.Warn("unsupported or missing extension", "path", abs, "ext", ext)
		return entity.Document{}, out, common.NewAppError("INGEST_ERROR", fmt.Sprintf("unsupported or missing extension %q", ext), common.ErrInvalidInput)
	}

	st, err := os.Stat(abs)
	if err != nil {
		i.logger.Error("stat error", "path", abs, "error", err)
		if errors.Is(err, os.ErrNotExist) {
			return entity.Document{}, out, common.NewAppError("INGEST_ERROR", "file not found", fmt.Errorf("%w: %w", common.ErrNotFound, err))
		}
		return entity.Document{}, out, err
	}
	out.Size = st.Size()
	if i.MaxBytes > 0 && st.Size() > i.MaxBytes {
		return entity.Document{}, out, common.NewAppError("INGEST_ERROR", fmt.Sprintf("file too large: %d bytes", st.Size()), common.ErrInvalidInput)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		i.logger.Error("read error", "path", abs, "error", err)
		return entity.Document{}, out, err
	}
	sum := sha256.Sum256(content)
	out.HashHex = hex.EncodeToString(sum[:])

	i.mu.Lock()
	first, dup := i.seen[out.HashHex]
	if !dup {
		i.seen[out.HashHex] = abs
	}
	i.mu.Unlock()
	if dup {
		out.Deduplicated = true
		i.logger.Info("duplicate invoice skipped", "path", abs, "same_as", first)
		return entity.Document{}, out, nil
	}

	doc := entity.Document{
		ID:      uuid.New(),
		Name:    filepath.Base(abs),
		Content: content,
		HashHex: out.HashHex,
	}
	out.DocumentID = doc.ID.String()
	return doc, out, nil
}

// IngestDirectory walks root, skips hidden entries if requested,
// and calls IngestPath for each file. Returns the loaded documents, per-file results and stats.
func (i *FSIngestor) IngestDirectory(
	ctx context.Context,
	root string,
	skipHidden bool,
) ([]entity.Document, []IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, common.NewAppError("INGEST_ERROR", "root path is required", common.ErrInvalidInput)
	}

	var (
		docs    []entity.Document
		results []IngestionResult
		stats   DirStats
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !allowedIn(path, i.AllowedExts) {
			return nil
		}
		stats.Matched++

		doc, r, err := i.IngestPath(ctx, path)
		if err != nil {
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
			return nil
		}
		docs = append(docs, doc)
		return nil
	})

	i.logger.Info("ingest.directory.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	if err != nil {
		return docs, results, stats, fmt.Errorf("walk: %w", err)
	}
	return docs, results, stats, nil
}

// Forget drops remembered hashes, e.g. when a caller forces reprocessing.
func (i *FSIngestor) Forget(hashHex string) {
	i.mu.Lock()
	delete(i.seen, hashHex)
	i.mu.Unlock()
}
