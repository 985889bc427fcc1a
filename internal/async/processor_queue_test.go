package async

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/ingest"
)

type fakeProcessor struct{}

func (fakeProcessor) ProcessDocument(_ context.Context, doc entity.Document) entity.DocumentResult {
	return entity.DocumentResult{
		DocumentID: doc.ID,
		Name:       doc.Name,
		Status:     string(constants.DocStatusParsed),
		Lines:      []entity.PurchaseLine{{Ingredient: string(doc.Content), Qty: 1, Unit: "ud"}},
	}
}

type memSink struct {
	mu    sync.Mutex
	lines []entity.PurchaseLine
	err   error
}

func (s *memSink) Append(_ context.Context, lines []entity.PurchaseLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, lines...)
	return nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

type recorder struct {
	mu      sync.Mutex
	results []entity.DocumentResult
}

func (r *recorder) hook(_ Job, res entity.DocumentResult) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
}

func (r *recorder) all() []entity.DocumentResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.DocumentResult(nil), r.results...)
}

func writeInvoice(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestProcessorQueue_ProcessesAndStores(t *testing.T) {
	dir := t.TempDir()
	a := writeInvoice(t, dir, "a.pdf", "TOMATE")
	b := writeInvoice(t, dir, "b.pdf", "LECHE")
	dup := writeInvoice(t, dir, "c.pdf", "TOMATE")

	sink := &memSink{}
	rec := &recorder{}
	q := NewProcessorQueue(fakeProcessor{}, ingest.NewFSIngestor(nil), sink, nil,
		WithWorkers(1), WithQueueSize(8), WithResultHook(rec.hook))

	ctx := context.Background()
	for _, p := range []string{a, b, dup} {
		require.NoError(t, q.Enqueue(ctx, Job{Path: p, TraceID: "t-1"}))
	}
	q.Shutdown(ctx)

	assert.Equal(t, 2, sink.count())
	require.Len(t, rec.all(), 2)
	assert.Equal(t, "a.pdf", rec.all()[0].Name)

	assert.ErrorIs(t, q.Enqueue(ctx, Job{Path: a}), ErrQueueClosed)
}

func TestProcessorQueue_ForceReprocesses(t *testing.T) {
	dir := t.TempDir()
	a := writeInvoice(t, dir, "a.pdf", "TOMATE")

	sink := &memSink{}
	q := NewProcessorQueue(fakeProcessor{}, ingest.NewFSIngestor(nil), sink, nil, WithWorkers(1))
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{Path: a}))
	require.NoError(t, q.Enqueue(ctx, Job{Path: a, Force: true}))
	q.Shutdown(ctx)

	assert.Equal(t, 2, sink.count())
}

func TestProcessorQueue_FailuresReported(t *testing.T) {
	dir := t.TempDir()
	a := writeInvoice(t, dir, "a.pdf", "TOMATE")

	sink := &memSink{err: errors.New("disk full")}
	rec := &recorder{}
	q := NewProcessorQueue(fakeProcessor{}, ingest.NewFSIngestor(nil), sink, nil,
		WithWorkers(2), WithResultHook(rec.hook))
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{Path: filepath.Join(dir, "missing.pdf")}))
	require.NoError(t, q.Enqueue(ctx, Job{Path: a}))
	q.Shutdown(ctx)

	results := rec.all()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, string(constants.DocStatusFailed), r.Status)
		assert.NotEmpty(t, r.Error)
	}
}

type blockingProcessor struct{ release chan struct{} }

func (p blockingProcessor) ProcessDocument(ctx context.Context, doc entity.Document) entity.DocumentResult {
	<-p.release
	return entity.DocumentResult{Name: doc.Name}
}

func TestProcessorQueue_EnqueueHonoursContextWhenFull(t *testing.T) {
	dir := t.TempDir()
	release := make(chan struct{})
	q := NewProcessorQueue(blockingProcessor{release: release}, ingest.NewFSIngestor(nil), nil, nil,
		WithWorkers(1), WithQueueSize(1))

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{Path: writeInvoice(t, dir, "1.pdf", "1")}))
	// wait until the worker holds the first job so the buffer is free
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(ctx, Job{Path: writeInvoice(t, dir, "2.pdf", "2")}))

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := q.Enqueue(short, Job{Path: writeInvoice(t, dir, "3.pdf", "3")})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	q.Shutdown(ctx)
}
