package grpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "user_service.UserService"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves grpc.health.v1.Health. Both the overall status ("")
// and ServiceName follow the result of the last store ping.
type HealthHandler struct {
	server   *health.Server
	store    Pinger
	interval time.Duration
	timeout  time.Duration
	log      *logrus.Logger
}

func NewHealthHandler(store Pinger, interval time.Duration, logger *logrus.Logger) *HealthHandler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	h := &HealthHandler{
		server:   health.NewServer(),
		store:    store,
		interval: interval,
		timeout:  2 * time.Second,
		log:      logger,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
}

func (h *HealthHandler) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}

// Probe pings the store once and records the outcome.
func (h *HealthHandler) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warnf("gRPC Health: store ping failed: %v", err)
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
}

// Run probes the store every interval until ctx is cancelled, then marks the
// service as shutting down.
func (h *HealthHandler) Run(ctx context.Context) {
	h.Probe(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}
