package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is satisfied by every purchases store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingStore pings the store to ensure it's responsive.
func PingStore(ctx context.Context, p Pinger, logger *slog.Logger, timeout time.Duration) error {
	logger.Debug("pinging store")
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		logger.Error("store ping failed", "error", err)
		return err
	}
	logger.Debug("store ping successful")
	return nil
}

// WatchStoreHealth flips the service's health status with the store until ctx is done.
func WatchStoreHealth(ctx context.Context, hs *health.Server, p Pinger, logger *slog.Logger, every time.Duration) {
	check := func() {
		st := healthpb.HealthCheckResponse_SERVING
		if err := PingStore(ctx, p, logger, every/2); err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus(ServiceName, st)
	}

	check()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}
