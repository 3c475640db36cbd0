package useradmin

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/resource-library/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) DeleteUserAsAdmin(ctx context.Context, adminUID, targetUID string) error {
	return m.Called(ctx, adminUID, targetUID).Error(0)
}

func (m *RepoMock) ChangeUserRoleAsAdmin(ctx context.Context, adminUID, targetUID, newRole string) error {
	return m.Called(ctx, adminUID, targetUID, newRole).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_DeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		adminUID   string
		targetUID  string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:      "успешное удаление",
			adminUID:  "admin-1",
			targetUID: "user-1",
			setupMocks: func(r *RepoMock) {
				r.On("DeleteUserAsAdmin", mock.Anything, "admin-1", "user-1").Return(nil).Once()
			},
		},
		{
			// Проверка выполняется до обращения к хранилищу.
			name:       "администратор не может удалить себя",
			adminUID:   "admin-1",
			targetUID:  "admin-1",
			setupMocks: func(_ *RepoMock) {},
			wantErr:    models.ErrSelfActionForbidden,
		},
		{
			name:      "вызывающий не администратор",
			adminUID:  "user-2",
			targetUID: "user-1",
			setupMocks: func(r *RepoMock) {
				r.On("DeleteUserAsAdmin", mock.Anything, "user-2", "user-1").
					Return(models.ErrNotAuthorized).Once()
			},
			wantErr: models.ErrNotAuthorized,
		},
		{
			name:      "пользователь не найден",
			adminUID:  "admin-1",
			targetUID: "ghost",
			setupMocks: func(r *RepoMock) {
				r.On("DeleteUserAsAdmin", mock.Anything, "admin-1", "ghost").
					Return(models.ErrNotFound).Once()
			},
			wantErr: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, newNoopLogger())
			err := svc.DeleteUser(context.Background(), tt.adminUID, tt.targetUID)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_ChangeRole(t *testing.T) {
	tests := []struct {
		name       string
		adminUID   string
		targetUID  string
		newRole    string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:      "повышение до администратора",
			adminUID:  "admin-1",
			targetUID: "user-1",
			newRole:   models.RoleAdmin,
			setupMocks: func(r *RepoMock) {
				r.On("ChangeUserRoleAsAdmin", mock.Anything, "admin-1", "user-1", models.RoleAdmin).
					Return(nil).Once()
			},
		},
		{
			name:      "понижение до пользователя",
			adminUID:  "admin-1",
			targetUID: "admin-2",
			newRole:   models.RoleUser,
			setupMocks: func(r *RepoMock) {
				r.On("ChangeUserRoleAsAdmin", mock.Anything, "admin-1", "admin-2", models.RoleUser).
					Return(nil).Once()
			},
		},
		{
			name:       "администратор не может менять свою роль",
			adminUID:   "admin-1",
			targetUID:  "admin-1",
			newRole:    models.RoleUser,
			setupMocks: func(_ *RepoMock) {},
			wantErr:    models.ErrSelfActionForbidden,
		},
		{
			name:       "неизвестная роль",
			adminUID:   "admin-1",
			targetUID:  "user-1",
			newRole:    "superuser",
			setupMocks: func(_ *RepoMock) {},
			wantErr:    nil, // произвольная ошибка, не сентинель
		},
		{
			name:      "вызывающий не администратор",
			adminUID:  "user-2",
			targetUID: "user-1",
			newRole:   models.RoleAdmin,
			setupMocks: func(r *RepoMock) {
				r.On("ChangeUserRoleAsAdmin", mock.Anything, "user-2", "user-1", models.RoleAdmin).
					Return(models.ErrNotAuthorized).Once()
			},
			wantErr: models.ErrNotAuthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, newNoopLogger())
			err := svc.ChangeRole(context.Background(), tt.adminUID, tt.targetUID, tt.newRole)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.name == "неизвестная роль":
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}
