package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/gdpdash/internal/loader"
	"github.com/JonMunkholm/gdpdash/internal/logging"
)

// StartReloader re-runs req every interval until ctx is cancelled, so edits
// to the source file show up without a restart. A failed reload is logged
// and the previous dataset stays in place. It blocks; run it in a goroutine.
func (s *Server) StartReloader(ctx context.Context, req loader.Request, interval time.Duration) {
	slog.Info("reloader started", "source", req.Source(), "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reloader stopped")
			return
		case <-ticker.C:
			s.reload(ctx, req)
		}
	}
}

// reload performs one run under the run limiter.
func (s *Server) reload(ctx context.Context, req loader.Request) {
	runCtx := logging.WithRunID(ctx, uuid.NewString())
	logger := logging.WithFields(runCtx, "source", req.Source(), "format", req.Format())

	if err := s.limiter.Acquire(runCtx); err != nil {
		logger.Warn("reload skipped", "error", err)
		return
	}
	defer s.limiter.Release()

	start := time.Now()
	ds, err := s.load(runCtx, req, req.Source())
	if err != nil {
		logger.Error("reload failed", "error", err)
		return
	}
	logger.Info("dataset reloaded",
		"resolved", ds.source,
		"rows", ds.result.Metadata.RowCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
