// Package tagregistry содержит бизнес-логику реестра тегов: создание,
// переименование, листинг и удаление с защитой ссылочной целостности.
package tagregistry

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/resource-library/internal/models"
)

// TagRepository описывает методы хранилища для работы с тегами.
type TagRepository interface {
	// CreateTag добавляет тег и возвращает его ID.
	CreateTag(ctx context.Context, name string) (int, error)
	// ListTags возвращает все теги реестра.
	ListTags(ctx context.Context) ([]*models.Tag, error)
	// DeleteTag удаляет тег; подсчёт использований и удаление атомарны.
	DeleteTag(ctx context.Context, tagID int) error
	// RenameTag меняет имя тега в реестре.
	RenameTag(ctx context.Context, tagID int, newName string) error
}

// Service реализует операции реестра тегов.
type Service struct {
	repo TagRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo TagRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create добавляет тег в реестр. Возвращает ErrDuplicateName,
// если имя уже занято.
func (s *Service) Create(ctx context.Context, name string) (int, error) {
	id, err := s.repo.CreateTag(ctx, name)
	if err != nil {
		return 0, err
	}
	s.log.Info("created tag", slog.Int("id", id), slog.String("name", name))
	return id, nil
}

// List возвращает все теги реестра.
func (s *Service) List(ctx context.Context) ([]*models.Tag, error) {
	return s.repo.ListTags(ctx)
}

// Delete удаляет тег из реестра. Если на тег по его текущему имени
// ссылается хотя бы один неудалённый ресурс, возвращается TagInUseError
// с числом таких ресурсов, и тег остаётся на месте: вызывающий обязан
// сначала снять тег с каждого ресурса. Каскадного удаления нет намеренно —
// потеря метаданных должна быть явной.
func (s *Service) Delete(ctx context.Context, tagID int) error {
	if err := s.repo.DeleteTag(ctx, tagID); err != nil {
		return err
	}
	s.log.Info("deleted tag", slog.Int("id", tagID))
	return nil
}

// Rename меняет имя тега в реестре. Строки тегов на ресурсах не
// переписываются: ресурсы хранят имя по значению, и после переименования
// старые строки перестают считаться использованием этого тега.
func (s *Service) Rename(ctx context.Context, tagID int, newName string) error {
	if err := s.repo.RenameTag(ctx, tagID, newName); err != nil {
		return err
	}
	s.log.Info("renamed tag", slog.Int("id", tagID), slog.String("new_name", newName))
	return nil
}
