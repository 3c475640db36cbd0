// Package resourcecatalog содержит бизнес-логику каталога ресурсов:
// CRUD с мягким удалением, кеширование и проверку доступа при просмотре.
package resourcecatalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/resource-library/internal/lib/sl"
	"github.com/magabrotheeeer/resource-library/internal/models"
	"github.com/magabrotheeeer/resource-library/internal/services/access"
	"github.com/magabrotheeeer/resource-library/internal/services/premium"
)

// ResourceRepository определяет методы для работы с ресурсами в хранилище.
type ResourceRepository interface {
	// CreateResource добавляет новый ресурс и возвращает его ID.
	CreateResource(ctx context.Context, res models.Resource) (int, error)
	// ReadResource возвращает неудалённый ресурс по ID.
	ReadResource(ctx context.Context, id int) (*models.Resource, error)
	// UpdateResource обновляет ресурс и его теги и категории.
	UpdateResource(ctx context.Context, id int, res models.Resource) error
	// SoftDeleteResource помечает ресурс удалённым.
	SoftDeleteResource(ctx context.Context, id int) error
	// ListResources возвращает неудалённые ресурсы с пагинацией.
	ListResources(ctx context.Context, limit, offset int) ([]*models.Resource, error)
	// MissingTags возвращает имена из списка, отсутствующие в реестре тегов.
	MissingTags(ctx context.Context, names []string) ([]string, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует бизнес-логику каталога ресурсов, включая кеширование.
type Service struct {
	repo  ResourceRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo ResourceRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новый ресурс, кеширует его и возвращает ID. Каждое имя
// тега должно существовать в реестре на момент назначения; проверка
// нестрогая — она не атомарна с одновременным удалением тега.
func (s *Service) Create(ctx context.Context, req models.DummyResource) (int, error) {
	if err := s.checkTagsExist(ctx, req.Tags); err != nil {
		return 0, err
	}

	res := models.Resource{
		Title:      req.Title,
		Visibility: req.Visibility,
		Categories: req.Categories,
		Tags:       req.Tags,
	}
	id, err := s.repo.CreateResource(ctx, res)
	if err != nil {
		return 0, err
	}
	s.log.Info("created resource", slog.Int("id", id))

	cacheKey := fmt.Sprintf("resource:%d", id)
	res.ID = id
	if err := s.cache.Set(cacheKey, res, time.Hour); err != nil {
		s.log.Warn("failed to cache resource", slog.String("key", cacheKey), sl.Err(err))
	}
	return id, nil
}

// Update обновляет ресурс и инвалидирует кеш.
func (s *Service) Update(ctx context.Context, id int, req models.DummyResource) error {
	if err := s.checkTagsExist(ctx, req.Tags); err != nil {
		return err
	}

	res := models.Resource{
		Title:      req.Title,
		Visibility: req.Visibility,
		Categories: req.Categories,
		Tags:       req.Tags,
	}
	if err := s.repo.UpdateResource(ctx, id, res); err != nil {
		return err
	}
	s.log.Info("updated resource", slog.Int("id", id))

	cacheKey := fmt.Sprintf("resource:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return nil
}

// Remove помечает ресурс удалённым и инвалидирует кеш. Запись остаётся
// в хранилище, но исключается из чтения и подсчёта использования тегов.
func (s *Service) Remove(ctx context.Context, id int) error {
	if err := s.repo.SoftDeleteResource(ctx, id); err != nil {
		return err
	}
	s.log.Info("soft-deleted resource", slog.Int("id", id))

	cacheKey := fmt.Sprintf("resource:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return nil
}

// List возвращает неудалённые ресурсы с пагинацией.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Resource, error) {
	return s.repo.ListResources(ctx, limit, offset)
}

// View возвращает ресурс вместе с решением о доступе для посетителя.
// viewerUID пуст для анонимного посетителя. Действующий премиум-статус
// пересчитывается относительно now при каждом вызове; отказ в доступе —
// обычный результат, ресурс при отказе не возвращается.
func (s *Service) View(ctx context.Context, viewerUID string, id int, now time.Time) (*models.Resource, access.Decision, error) {
	res, err := s.read(ctx, id)
	if err != nil {
		return nil, access.Decision{}, err
	}

	var viewer access.Viewer
	if viewerUID == "" {
		viewer = access.Viewer{Kind: access.Anonymous}
	} else {
		user, err := s.repo.GetUser(ctx, viewerUID)
		if err != nil {
			return nil, access.Decision{}, err
		}
		viewer = access.ViewerFromUser(user, premium.Effective(user, now))
	}

	decision := access.Decide(viewer, res.Visibility)
	if !decision.Allowed {
		return nil, decision, nil
	}
	return res, decision, nil
}

// read возвращает ресурс по ID, используя кеш или репозиторий.
func (s *Service) read(ctx context.Context, id int) (*models.Resource, error) {
	var result *models.Resource
	cacheKey := fmt.Sprintf("resource:%d", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("cache read failed", slog.String("key", cacheKey), sl.Err(err))
	}
	if found && result != nil {
		return result, nil
	}
	result, err = s.repo.ReadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache resource", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

func (s *Service) checkTagsExist(ctx context.Context, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	missing, err := s.repo.MissingTags(ctx, tags)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("unknown tags %v: %w", missing, models.ErrNotFound)
	}
	return nil
}
