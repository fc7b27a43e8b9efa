// Package list отдаёт таблицу премиум-планов.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/plans"
)

// Handler отдаёт список планов.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Список премиум-планов
// @Description Возвращает серверную таблицу планов с ценами в минорных единицах.
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response "Список планов"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(plans.List()))
}
