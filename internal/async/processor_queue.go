package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/menu-pricer/constants"
	"github.com/joseph-ayodele/menu-pricer/internal/common"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/ingest"
)

// DocumentProcessor turns one document into purchase lines.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc entity.Document) entity.DocumentResult
}

// Loader reads a file into a document.
type Loader interface {
	IngestPath(ctx context.Context, path string) (entity.Document, ingest.IngestionResult, error)
}

// Sink receives the lines of every processed document.
type Sink interface {
	Append(ctx context.Context, lines []entity.PurchaseLine) error
}

type forgetter interface {
	Forget(hashHex string)
}

type ProcessorQueue struct {
	proc     DocumentProcessor
	loader   Loader
	sink     Sink
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	onResult func(Job, entity.DocumentResult)

	ch       chan Job
	stopping chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
	stopOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultHook is called after each job, from the worker goroutine.
func WithResultHook(fn func(Job, entity.DocumentResult)) Option {
	return func(q *ProcessorQueue) { q.onResult = fn }
}

func NewProcessorQueue(proc DocumentProcessor, loader Loader, sink Sink, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:     proc,
		loader:   loader,
		sink:     sink,
		logger:   logger,
		workers:  4,
		timeout:  3 * time.Minute,
		ch:       make(chan Job, 256),
		stopping: make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					if job.TraceID != "" {
						ctx = common.WithRequestID(ctx, job.TraceID)
					}
					res, ok := q.process(ctx, workerID, job)
					cancel()
					if ok && q.onResult != nil {
						q.onResult(job, res)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// process loads, extracts and stores one file. ok is false when nothing was processed.
func (q *ProcessorQueue) process(ctx context.Context, workerID int, job Job) (entity.DocumentResult, bool) {
	log := q.logger.With("worker_id", workerID, "path", job.Path, "trace_id", job.TraceID)

	doc, in, err := q.loader.IngestPath(ctx, job.Path)
	if err != nil {
		log.Error("loading file failed", "error", err)
		return entity.DocumentResult{Name: job.Path, Status: string(constants.DocStatusFailed), Error: err.Error()}, true
	}
	if in.Deduplicated {
		f, canForget := q.loader.(forgetter)
		if !job.Force || !canForget {
			log.Info("file already processed, skipping", "hash", in.HashHex)
			return entity.DocumentResult{}, false
		}
		f.Forget(in.HashHex)
		if doc, _, err = q.loader.IngestPath(ctx, job.Path); err != nil {
			log.Error("reloading file failed", "error", err)
			return entity.DocumentResult{Name: job.Path, Status: string(constants.DocStatusFailed), Error: err.Error()}, true
		}
	}

	res := q.proc.ProcessDocument(ctx, doc)
	if len(res.Lines) > 0 && q.sink != nil {
		if err := q.sink.Append(ctx, res.Lines); err != nil {
			log.Error("storing lines failed", "document_id", res.DocumentID, "error", err)
			res.Status = string(constants.DocStatusFailed)
			res.Error = err.Error()
			// let a later resubmission retry the file
			if f, ok := q.loader.(forgetter); ok {
				f.Forget(doc.HashHex)
			}
			return res, true
		}
	}
	log.Info("processed file successfully",
		"document_id", res.DocumentID,
		"supplier", res.Supplier,
		"status", res.Status,
		"lines", len(res.Lines),
		"queued_ms", time.Since(job.SubmittedAt).Milliseconds(),
	)
	return res, true
}

// Enqueue blocks while the queue is full until ctx is done or shutdown starts.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued file for processing", "path", job.Path, "force", job.Force)
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.stopping:
		return ErrQueueClosed
	}
}

// Shutdown stops accepting jobs, lets workers drain what is queued, and waits for them
// until ctx is done.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.stopOnce.Do(func() { close(q.stopping) })

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
