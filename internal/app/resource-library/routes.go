// Package resourcelibrary предоставляет маршруты для основного приложения.
package resourcelibrary

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/resource-library/internal/http/handlers/admin/changerole"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/admin/removeuser"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/premium/activate"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/premium/cancel"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/premium/history"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/resource/create"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/resource/list"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/resource/read"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/resource/remove"
	"github.com/magabrotheeeer/resource-library/internal/http/handlers/resource/update"
	tagcreate "github.com/magabrotheeeer/resource-library/internal/http/handlers/tag/create"
	taglist "github.com/magabrotheeeer/resource-library/internal/http/handlers/tag/list"
	tagremove "github.com/magabrotheeeer/resource-library/internal/http/handlers/tag/remove"
	tagrename "github.com/magabrotheeeer/resource-library/internal/http/handlers/tag/rename"
	"github.com/magabrotheeeer/resource-library/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/resource-library/internal/services/auth"
	premiumservice "github.com/magabrotheeeer/resource-library/internal/services/premium"
	catalogservice "github.com/magabrotheeeer/resource-library/internal/services/resourcecatalog"
	tagservice "github.com/magabrotheeeer/resource-library/internal/services/tagregistry"
	adminservice "github.com/magabrotheeeer/resource-library/internal/services/useradmin"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.Service,
	premiumService *premiumservice.Service,
	catalogService *catalogservice.Service,
	tagService *tagservice.Service,
	adminService *adminservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Просмотр каталога: токен не обязателен, решение о доступе
		// к закрытым ресурсам принимает движок доступа.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/resources/list", list.New(logger, catalogService).ServeHTTP)
			r.Get("/resources/{id}", read.New(logger, catalogService).ServeHTTP)
			r.Get("/tags/list", taglist.New(logger, tagService).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/premium/activate", activate.New(logger, premiumService).ServeHTTP)
			r.Post("/premium/cancel", cancel.New(logger, premiumService).ServeHTTP)
			r.Get("/premium/history", history.New(logger, premiumService).ServeHTTP)
		})

		// Группа администратора
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.AdminOnlyMiddleware(logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/resources", create.New(logger, catalogService).ServeHTTP)
			r.Put("/resources/{id}", update.New(logger, catalogService).ServeHTTP)
			r.Delete("/resources/{id}", remove.New(logger, catalogService).ServeHTTP)
			r.Post("/tags", tagcreate.New(logger, tagService).ServeHTTP)
			r.Put("/tags/{id}", tagrename.New(logger, tagService).ServeHTTP)
			r.Delete("/tags/{id}", tagremove.New(logger, tagService).ServeHTTP)
			r.Delete("/admin/users/{uid}", removeuser.New(logger, adminService).ServeHTTP)
			r.Put("/admin/users/{uid}/role", changerole.New(logger, adminService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
