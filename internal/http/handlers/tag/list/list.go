// Package list реализует HTTP-обработчик листинга тегов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/resource-library/internal/http/response"
	"github.com/magabrotheeeer/resource-library/internal/lib/sl"
	"github.com/magabrotheeeer/resource-library/internal/models"
)

// Handler управляет HTTP-запросами на листинг тегов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики листинга тегов.
type Service interface {
	List(ctx context.Context) ([]*models.Tag, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список тегов
// @Description Возвращает все теги реестра.
// @Tags Tags
// @Produce  json
// @Success 200 {object} map[string]any "Список тегов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tags/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tag.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tags, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list tags", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tags"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tags":  tags,
		"count": len(tags),
	}))
}
