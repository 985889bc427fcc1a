package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/menu-pricer/internal/app"
	"github.com/joseph-ayodele/menu-pricer/internal/async"
	"github.com/joseph-ayodele/menu-pricer/internal/entity"
	"github.com/joseph-ayodele/menu-pricer/internal/ingest"
	"github.com/joseph-ayodele/menu-pricer/internal/logging"
	svc "github.com/joseph-ayodele/menu-pricer/internal/server"
)

func main() {
	logCfg := logging.FromEnv()
	logCfg.JSON = true
	logger := logging.Setup(logCfg)

	cfg, err := app.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		os.Exit(1)
	}
	defer a.Close()

	if err := svc.PingStore(ctx, a.Store, logger, 5*time.Second); err != nil {
		logger.Error("failed to ping store", "error", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(svc.UnaryLogging(logger)))

	ingestor := ingest.NewFSIngestor(logger)
	queue := async.NewProcessorQueue(a.Processor, ingestor, a.Store, logger,
		async.WithWorkers(cfg.Batch.Workers),
		async.WithQueueSize(cfg.Batch.QueueSize),
		async.WithProcessTimeout(cfg.Batch.DocTimeout),
		async.WithResultHook(func(job async.Job, res entity.DocumentResult) {
			if res.NeedsReview {
				logger.Warn("low OCR confidence, review lines", "path", job.Path, "confidence", res.Confidence)
			}
		}),
	)

	invoiceService := svc.NewInvoiceService(a.Processor, a.Store, queue, a.Tables, logger)
	svc.RegisterInvoiceServiceServer(grpcServer, invoiceService)

	// Register gRPC health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	// Set the service as serving (empty string means overall server health)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	go svc.WatchStoreHealth(ctx, healthServer, a.Store, logger, 30*time.Second)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	if inbox := cfg.Server.InboxDir; inbox != "" {
		if err := watchInbox(ctx, inbox, queue, logger); err != nil {
			logger.Error("failed to watch inbox", "dir", inbox, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("menu-pricer listening", "addr", addr, "store", cfg.Store.Driver, "ocr", a.Acquirer.OCREnabled())
	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Batch.DocTimeout+5*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
}

// watchInbox queues every invoice that appears in dir, including those already there.
func watchInbox(ctx context.Context, dir string, queue async.Queue, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		InitialScan: true,
		SkipHidden:  true,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	go func() {
		for errs != nil || events != nil {
			select {
			case p, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if err := queue.Enqueue(ctx, async.Job{Path: p, SubmittedAt: time.Now()}); err != nil {
					logger.Warn("failed to queue inbox file", "path", p, "error", err)
				}
			case _, ok := <-errs:
				if !ok {
					errs = nil
				}
			}
		}
	}()
	return nil
}
