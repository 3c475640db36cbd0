package tagregistry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/resource-library/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateTag(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListTags(ctx context.Context) ([]*models.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tag), args.Error(1)
}

func (m *RepoMock) DeleteTag(ctx context.Context, tagID int) error {
	return m.Called(ctx, tagID).Error(0)
}

func (m *RepoMock) RenameTag(ctx context.Context, tagID int, newName string) error {
	return m.Called(ctx, tagID, newName).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		tagName    string
		setupMocks func(r *RepoMock)
		wantID     int
		wantErr    error
	}{
		{
			name:    "успешное создание",
			tagName: "golang",
			setupMocks: func(r *RepoMock) {
				r.On("CreateTag", mock.Anything, "golang").Return(7, nil).Once()
			},
			wantID: 7,
		},
		{
			name:    "имя уже занято",
			tagName: "golang",
			setupMocks: func(r *RepoMock) {
				r.On("CreateTag", mock.Anything, "golang").Return(0, models.ErrDuplicateName).Once()
			},
			wantErr: models.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, newNoopLogger())
			gotID, err := svc.Create(context.Background(), tt.tagName)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Delete(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		check      func(t *testing.T, err error)
	}{
		{
			name: "успешное удаление неиспользуемого тега",
			setupMocks: func(r *RepoMock) {
				r.On("DeleteTag", mock.Anything, 3).Return(nil).Once()
			},
			check: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name: "тег используется ресурсами",
			setupMocks: func(r *RepoMock) {
				r.On("DeleteTag", mock.Anything, 3).
					Return(&models.TagInUseError{Count: 2}).Once()
			},
			check: func(t *testing.T, err error) {
				inUse, ok := models.AsTagInUse(err)
				require.True(t, ok)
				assert.Equal(t, 2, inUse.Count)
			},
		},
		{
			name: "тег не найден",
			setupMocks: func(r *RepoMock) {
				r.On("DeleteTag", mock.Anything, 3).Return(models.ErrNotFound).Once()
			},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, models.ErrNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMocks(repo)

			svc := New(repo, newNoopLogger())
			err := svc.Delete(context.Background(), 3)

			tt.check(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Rename(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name: "успешное переименование",
			setupMocks: func(r *RepoMock) {
				r.On("RenameTag", mock.Anything, 5, "backend").Return(nil).Once()
			},
		},
		{
			name: "новое имя занято",
			setupMocks: func(r *RepoMock) {
				r.On("RenameTag", mock.Anything, 5, "backend").
					Return(models.ErrDuplicateName).Once()
			},
			wantErr: models.ErrDuplicateName,
		},
		{
			name: "тег не найден",
			setupMocks: func(r *RepoMock) {
				r.On("RenameTag", mock.Anything, 5, "backend").
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
			err := svc.Rename(context.Background(), 5, "backend")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_List(t *testing.T) {
	tags := []*models.Tag{
		{ID: 1, Name: "golang"},
		{ID: 2, Name: "postgres"},
	}

	repo := new(RepoMock)
	repo.On("ListTags", mock.Anything).Return(tags, nil).Once()

	svc := New(repo, newNoopLogger())
	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tags, got)

	repo.On("ListTags", mock.Anything).Return(nil, errors.New("db error")).Once()
	_, err = svc.List(context.Background())
	require.Error(t, err)

	repo.AssertExpectations(t)
}
