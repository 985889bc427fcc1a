package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/menu-pricer/internal/common"
)

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a_europastry.pdf"), "factura europastry")
	write(t, filepath.Join(root, "b_copy.PDF"), "factura europastry")
	write(t, filepath.Join(root, "c_ticket.jpg"), "jpeg bytes")
	write(t, filepath.Join(root, "notes.txt"), "ignored")
	write(t, filepath.Join(root, ".hidden.pdf"), "hidden")
	write(t, filepath.Join(root, ".cache", "x.pdf"), "hidden dir")
	write(t, filepath.Join(root, "sub", "d_deca.png"), "png bytes")

	ing := NewFSIngestor(nil)
	docs, results, stats, err := ing.IngestDirectory(context.Background(), root, true)
	require.NoError(t, err)

	require.Len(t, docs, 3)
	assert.Equal(t, "a_europastry.pdf", docs[0].Name)
	assert.Equal(t, "c_ticket.jpg", docs[1].Name)
	assert.Equal(t, "d_deca.png", docs[2].Name)
	assert.Equal(t, []byte("jpeg bytes"), docs[1].Content)
	assert.Len(t, docs[0].HashHex, 64)

	assert.Equal(t, uint32(4), stats.Matched)
	assert.Equal(t, uint32(4), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Zero(t, stats.Failed)

	require.Len(t, results, 4)
	assert.True(t, results[1].Deduplicated)
	assert.Equal(t, "pdf", results[1].FileExt)
	assert.Empty(t, results[1].DocumentID)
}

func TestIngestDirectory_HiddenIncludedOnRequest(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ".hidden.pdf"), "hidden")

	docs, _, _, err := NewFSIngestor(nil).IngestDirectory(context.Background(), root, false)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestIngestDirectory_EmptyRoot(t *testing.T) {
	_, _, _, err := NewFSIngestor(nil).IngestDirectory(context.Background(), " ", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestIngestPath_Errors(t *testing.T) {
	root := t.TempDir()
	ing := NewFSIngestor(nil)

	write(t, filepath.Join(root, "x.docx"), "word")
	_, _, err := ing.IngestPath(context.Background(), filepath.Join(root, "x.docx"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = ing.IngestPath(context.Background(), filepath.Join(root, "missing.pdf"))
	assert.ErrorIs(t, err, common.ErrNotFound)

	ing.MaxBytes = 3
	write(t, filepath.Join(root, "big.pdf"), "too big")
	_, res, err := ing.IngestPath(context.Background(), filepath.Join(root, "big.pdf"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Equal(t, int64(7), res.Size)
}

func TestIngestPath_ForgetAllowsReload(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.pdf")
	write(t, path, "same")
	ing := NewFSIngestor(nil)

	doc, _, err := ing.IngestPath(context.Background(), path)
	require.NoError(t, err)
	_, res, err := ing.IngestPath(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, res.Deduplicated)

	ing.Forget(doc.HashHex)
	again, res, err := ing.IngestPath(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, res.Deduplicated)
	assert.NotEqual(t, doc.ID, again.ID)
}

func TestStartWatcher_InitialScanAndNewFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "old.pdf"), "old")
	write(t, filepath.Join(root, "skip.txt"), "txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		SkipHidden:  true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "old.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit existing file")
	}

	write(t, filepath.Join(root, "new.png"), "png")
	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "new.png"), p)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not emit new file")
	}

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
