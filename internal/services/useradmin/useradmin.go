// Package useradmin содержит административные операции над учётными
// записями с охранными проверками самозащиты администратора.
package useradmin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/resource-library/internal/models"
)

// UserRepository описывает методы хранилища для административных мутаций.
// Роль вызывающего перечитывается хранилищем внутри транзакции при каждом
// вызове, результат нигде не кешируется.
type UserRepository interface {
	DeleteUserAsAdmin(ctx context.Context, adminUID, targetUID string) error
	ChangeUserRoleAsAdmin(ctx context.Context, adminUID, targetUID, newRole string) error
}

// Service реализует административные операции над пользователями.
type Service struct {
	repo UserRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UserRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// DeleteUser жёстко удаляет учётную запись targetUID от имени adminUID.
// Удаление собственной записи запрещено независимо от роли; отсутствие
// роли администратора у вызывающего — ErrNotAuthorized. Все проверки
// выполняются до мутации, при нарушении запись остаётся нетронутой.
func (s *Service) DeleteUser(ctx context.Context, adminUID, targetUID string) error {
	if adminUID == targetUID {
		return models.ErrSelfActionForbidden
	}
	if err := s.repo.DeleteUserAsAdmin(ctx, adminUID, targetUID); err != nil {
		return err
	}
	s.log.Info("deleted user",
		slog.String("admin_uid", adminUID),
		slog.String("target_uid", targetUID))
	return nil
}

// ChangeRole меняет роль targetUID на newRole от имени adminUID.
// Смена собственной роли запрещена; newRole должна входить в закрытое
// множество ролей.
func (s *Service) ChangeRole(ctx context.Context, adminUID, targetUID, newRole string) error {
	if newRole != models.RoleUser && newRole != models.RoleAdmin {
		return fmt.Errorf("unknown role: %q", newRole)
	}
	if adminUID == targetUID {
		return models.ErrSelfActionForbidden
	}
	if err := s.repo.ChangeUserRoleAsAdmin(ctx, adminUID, targetUID, newRole); err != nil {
		return err
	}
	s.log.Info("changed user role",
		slog.String("admin_uid", adminUID),
		slog.String("target_uid", targetUID),
		slog.String("new_role", newRole))
	return nil
}
