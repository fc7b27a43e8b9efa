// Package campaigns реализует HTTP-обработчики рассылок администратора:
// список, создание черновика и отправку.
package campaigns

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/lovebug/backend/internal/http/response"
	"github.com/lovebug/backend/internal/lib/sl"
	"github.com/lovebug/backend/internal/models"
	notification "github.com/lovebug/backend/internal/services/notification"
)

// Handler управляет HTTP-запросами рассылок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики рассылок.
type Service interface {
	CreateCampaign(ctx context.Context, req models.DummyCampaign) (int, error)
	ListCampaigns(ctx context.Context) ([]*models.Campaign, error)
	ListTemplates(ctx context.Context) ([]*models.NotificationTemplate, error)
	CreateTemplate(ctx context.Context, req models.DummyTemplate) (int, error)
	DeleteTemplate(ctx context.Context, templateID int) error
	SendCampaign(ctx context.Context, campaignID int) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// List godoc
// @Summary Список рассылок
// @Description Возвращает рассылки и шаблоны писем.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Рассылки и шаблоны"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Router /admin/notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.campaigns.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	campaigns, err := h.service.ListCampaigns(r.Context())
	if err != nil {
		log.Error("failed to list campaigns", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list campaigns"))
		return
	}

	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		log.Error("failed to list templates", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list templates"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"campaigns": campaigns,
		"templates": templates,
	}))
}

// Create godoc
// @Summary Создать черновик рассылки
// @Description Сохраняет черновик с темой, телом и аудиторией.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyCampaign true "Данные рассылки"
// @Success 200 {object} map[string]any "Черновик создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/notifications [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.campaigns.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCampaign
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.service.CreateCampaign(r.Context(), req)
	if err != nil {
		log.Error("failed to create campaign", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create campaign"))
		return
	}

	log.Info("campaign created", slog.Int("campaign_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"campaign_id": id,
	}))
}

// CreateTemplate godoc
// @Summary Создать шаблон письма
// @Description Сохраняет шаблон для последующих рассылок.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyTemplate true "Данные шаблона"
// @Success 200 {object} map[string]any "Шаблон создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/notifications/templates [post]
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.campaigns.createtemplate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyTemplate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id, err := h.service.CreateTemplate(r.Context(), req)
	if err != nil {
		log.Error("failed to create template", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create template"))
		return
	}

	log.Info("template created", slog.Int("template_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"template_id": id,
	}))
}

// DeleteTemplate godoc
// @Summary Удалить шаблон письма
// @Description Удаляет шаблон по идентификатору.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param template_id path int true "Идентификатор шаблона"
// @Success 200 {object} response.Response "Шаблон удален"
// @Failure 404 {object} response.ErrorResponse "Шаблон не найден"
// @Router /admin/notifications/templates/{template_id} [delete]
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.campaigns.deletetemplate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	templateID, err := strconv.Atoi(chi.URLParam(r, "template_id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid template id"))
		return
	}

	if err := h.service.DeleteTemplate(r.Context(), templateID); err != nil {
		if errors.Is(err, notification.ErrTemplateNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("template not found"))
			return
		}
		log.Error("failed to delete template", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete template"))
		return
	}

	log.Info("template deleted", slog.Int("template_id", templateID))
	render.JSON(w, r, response.StatusOKWithData(nil))
}

// Send godoc
// @Summary Отправить рассылку
// @Description Публикует письма в очередь и помечает рассылку отправленной.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param campaign_id path int true "Идентификатор рассылки"
// @Success 200 {object} map[string]any "Количество адресатов"
// @Failure 404 {object} response.ErrorResponse "Рассылка не найдена"
// @Failure 409 {object} response.ErrorResponse "Рассылка уже отправлена"
// @Router /admin/notifications/{campaign_id}/send [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.campaigns.send"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	campaignID, err := strconv.Atoi(chi.URLParam(r, "campaign_id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid campaign id"))
		return
	}

	sent, err := h.service.SendCampaign(r.Context(), campaignID)
	if err != nil {
		switch {
		case errors.Is(err, notification.ErrCampaignNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("campaign not found"))
		case errors.Is(err, notification.ErrCampaignSent):
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("campaign already sent"))
		default:
			log.Error("failed to send campaign", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not send campaign"))
		}
		return
	}

	log.Info("campaign sent", slog.Int("campaign_id", campaignID), slog.Int("recipients", sent))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"sent_count": sent,
	}))
}
