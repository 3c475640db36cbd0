// Package read реализует HTTP-обработчик просмотра ресурса.
//
// Обработчик строит посетителя из контекста запроса (анонимного, если
// токена не было), запрашивает у каталога ресурс вместе с решением
// движка доступа и отображает отказ в HTTP-статус: 401 для
// AuthenticationRequired, 403 для PremiumRequired.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/resource-library/internal/http/middlewarectx"
	"github.com/magabrotheeeer/resource-library/internal/http/response"
	"github.com/magabrotheeeer/resource-library/internal/lib/sl"
	"github.com/magabrotheeeer/resource-library/internal/models"
	"github.com/magabrotheeeer/resource-library/internal/services/access"
)

// Handler управляет HTTP-запросами на просмотр ресурса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики просмотра ресурса.
type Service interface {
	View(ctx context.Context, viewerUID string, id int, now time.Time) (*models.Resource, access.Decision, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Просмотреть ресурс
// @Description Возвращает ресурс, если движок доступа разрешает просмотр текущему посетителю.
// @Tags Resources
// @Produce  json
// @Param id path int true "ID ресурса"
// @Success 200 {object} map[string]any "Ресурс и решение о доступе"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Требуется аутентификация"
// @Failure 403 {object} response.ErrorResponse "Требуется премиум-подписка"
// @Failure 404 {object} response.ErrorResponse "Ресурс не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /resources/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.resource.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	// Пустой UID означает анонимного посетителя.
	viewerUID, _ := r.Context().Value(middlewarectx.UserUID).(string)

	res, decision, err := h.service.View(r.Context(), viewerUID, id, time.Now().UTC())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("resource not found"))
			return
		}
		log.Error("failed to view resource", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read resource"))
		return
	}

	if !decision.Allowed {
		log.Info("access denied",
			slog.Int("resource_id", id),
			slog.String("reason", string(decision.Reason)))
		switch decision.Reason {
		case access.AuthenticationRequired:
			w.WriteHeader(http.StatusUnauthorized)
		case access.PremiumRequired:
			w.WriteHeader(http.StatusForbidden)
		}
		render.JSON(w, r, response.OKWithData(decision))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"resource": res,
		"decision": decision,
	}))
}
