// Package remove реализует HTTP-обработчик удаления тегов с защитой
// ссылочной целостности: тег, используемый неудалёнными ресурсами,
// удалить нельзя — ответ 409 содержит число таких ресурсов.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/resource-library/internal/http/response"
	"github.com/magabrotheeeer/resource-library/internal/lib/sl"
	"github.com/magabrotheeeer/resource-library/internal/models"
)

// Handler управляет HTTP-запросами на удаление тегов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления тега.
type Service interface {
	Delete(ctx context.Context, tagID int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить тег
// @Description Удаляет тег из реестра, если на него не ссылается ни один неудалённый ресурс.
// @Tags Tags
// @Produce  json
// @Param id path int true "ID тега"
// @Success 200 {object} map[string]any "Успешное удаление"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Тег не найден"
// @Failure 409 {object} map[string]any "Тег используется ресурсами"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tags/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tag.remove"
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

	if err := h.service.Delete(r.Context(), id); err != nil {
		if inUse, ok := models.AsTagInUse(err); ok {
			log.Info("tag in use", slog.Int("id", id), slog.Int("count", inUse.Count))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Response{
				Status: response.StatusError,
				Error:  inUse.Error(),
				Data:   map[string]any{"in_use_count": inUse.Count},
			})
			return
		}
		if errors.Is(err, models.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("tag not found"))
			return
		}
		log.Error("failed to delete tag", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete tag"))
		return
	}

	log.Info("tag deleted", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
