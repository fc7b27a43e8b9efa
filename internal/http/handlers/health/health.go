// Package health реализует проверку живости сервиса и его зависимостей:
// базы данных, Redis и соединения с RabbitMQ.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
)

// DBPinger проверяет соединение с базой данных.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger проверяет соединение с Redis.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// QueueChecker сообщает, закрыто ли соединение с брокером.
type QueueChecker interface {
	IsClosed() bool
}

// Handler управляет запросами проверки здоровья.
type Handler struct {
	log   *slog.Logger
	db    DBPinger
	cache CachePinger
	queue QueueChecker
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, db DBPinger, cache CachePinger, queue QueueChecker) *Handler {
	return &Handler{
		log:   log,
		db:    db,
		cache: cache,
		queue: queue,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	checks := map[string]string{
		"database": "ok",
		"cache":    "ok",
		"queue":    "ok",
	}
	healthy := true

	if err := h.db.PingContext(r.Context()); err != nil {
		h.log.Error("database health check failed", slog.String("op", op), sl.Err(err))
		checks["database"] = "down"
		healthy = false
	}
	if err := h.cache.Ping(r.Context()); err != nil {
		h.log.Error("cache health check failed", slog.String("op", op), sl.Err(err))
		checks["cache"] = "down"
		healthy = false
	}
	if h.queue.IsClosed() {
		h.log.Error("queue connection is closed", slog.String("op", op))
		checks["queue"] = "down"
		healthy = false
	}

	status := "ok"
	if !healthy {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": status,
		"checks": checks,
	}))
}
