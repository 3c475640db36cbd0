package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/resource-library/internal/models"
)

func TestStorage_ActivatePremium(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "testuser", "test@example.com", "hashedpassword", "user")

	first := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	firstExpiry := first.Add(30 * 24 * time.Hour)

	err := storage.ActivatePremium(context.Background(), uid, models.KindMonthly, first, firstExpiry)
	require.NoError(t, err)

	user, err := storage.GetUser(context.Background(), uid)
	require.NoError(t, err)
	assert.True(t, user.Premium)
	require.NotNil(t, user.PremiumExpiresAt)
	assert.True(t, user.PremiumExpiresAt.Equal(firstExpiry))
	require.NotNil(t, user.SubscriptionKind)
	assert.Equal(t, models.KindMonthly, *user.SubscriptionKind)

	// Повторная активация перезаписывает срок, но журнал только пополняется.
	second := first.Add(10 * 24 * time.Hour)
	secondExpiry := second.Add(90 * 24 * time.Hour)
	err = storage.ActivatePremium(context.Background(), uid, models.KindQuarterly, second, secondExpiry)
	require.NoError(t, err)

	user, err = storage.GetUser(context.Background(), uid)
	require.NoError(t, err)
	assert.True(t, user.PremiumExpiresAt.Equal(secondExpiry))

	events, err := storage.ListSubscriptionEvents(context.Background(), uid)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Новые записи первыми.
	assert.Equal(t, models.KindQuarterly, events[0].Kind)
	assert.Equal(t, models.KindMonthly, events[1].Kind)
}

func TestStorage_ActivatePremium_UnknownUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	now := time.Now().UTC()
	err := storage.ActivatePremium(context.Background(),
		uuid.New().String(), models.KindMonthly, now, now.Add(24*time.Hour))
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_ClearPremium(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "testuser", "test@example.com", "hashedpassword", "user")

	now := time.Now().UTC()
	require.NoError(t, storage.ActivatePremium(context.Background(), uid, models.KindYearly, now, now.Add(365*24*time.Hour)))
	require.NoError(t, storage.ClearPremium(context.Background(), uid))

	user, err := storage.GetUser(context.Background(), uid)
	require.NoError(t, err)
	assert.False(t, user.Premium)
	assert.Nil(t, user.PremiumExpiresAt)
	assert.Nil(t, user.SubscriptionKind)

	// Журнал активаций отмена не трогает.
	events, err := storage.ListSubscriptionEvents(context.Background(), uid)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestStorage_RegisterUser_DuplicateUsername(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	user := models.User{
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
	}

	_, err := storage.RegisterUser(context.Background(), user)
	require.NoError(t, err)

	_, err = storage.RegisterUser(context.Background(), user)
	require.ErrorIs(t, err, models.ErrDuplicateName)
}

func TestStorage_DeleteTag_Guard(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tagID := factory.CreateTag(t, "golang")
	firstID := factory.CreateResource(t, "Introduction to Go", models.VisibilityOpen, []string{"golang"})
	secondID := factory.CreateResource(t, "Go Concurrency Patterns", models.VisibilityRestricted, []string{"golang"})

	// Тег используется двумя неудалёнными ресурсами: в ошибке — точное число.
	err := storage.DeleteTag(context.Background(), tagID)
	inUse, ok := models.AsTagInUse(err)
	require.True(t, ok)
	assert.Equal(t, 2, inUse.Count)

	// Мягко удалённые ресурсы в подсчёте не участвуют.
	require.NoError(t, storage.SoftDeleteResource(context.Background(), firstID))
	err = storage.DeleteTag(context.Background(), tagID)
	inUse, ok = models.AsTagInUse(err)
	require.True(t, ok)
	assert.Equal(t, 1, inUse.Count)

	require.NoError(t, storage.SoftDeleteResource(context.Background(), secondID))
	require.NoError(t, storage.DeleteTag(context.Background(), tagID))

	verification := NewTestVerification(storage)
	verification.VerifyTagDeleted(t, tagID)
}

// Гонка двух одновременных удалений тега вокруг перехода счётчика
// использований 1 → 0. Блокировка строки тега сериализует транзакции:
// опоздавшая перечитывает состояние после коммита соперницы и получает
// либо актуальный счётчик, либо «не найден» — успешным оказывается
// ровно одно удаление.
func TestStorage_DeleteTag_ConcurrentDelete(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tagID := factory.CreateTag(t, "golang")
	resourceID := factory.CreateResource(t, "Introduction to Go", models.VisibilityOpen, []string{"golang"})

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := storage.SoftDeleteResource(context.Background(), resourceID); err != nil {
			errs[0] = err
			return
		}
		errs[0] = storage.DeleteTag(context.Background(), tagID)
	}()
	go func() {
		defer wg.Done()
		errs[1] = storage.DeleteTag(context.Background(), tagID)
	}()
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		_, inUse := models.AsTagInUse(err)
		require.True(t, inUse || errors.Is(err, models.ErrNotFound),
			"unexpected error: %v", err)
	}
	require.Equal(t, 1, successes)

	verification := NewTestVerification(storage)
	verification.VerifyTagDeleted(t, tagID)
}

func TestStorage_DeleteTag_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	err := storage.DeleteTag(context.Background(), 9999)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_RenameTag_KeepsResourceStrings(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	tagID := factory.CreateTag(t, "golang")
	resourceID := factory.CreateResource(t, "Introduction to Go", models.VisibilityOpen, []string{"golang"})

	require.NoError(t, storage.RenameTag(context.Background(), tagID, "go-lang"))

	// Строки тегов на ресурсах остаются прежними.
	res, err := storage.ReadResource(context.Background(), resourceID)
	require.NoError(t, err)
	assert.Equal(t, []string{"golang"}, res.Tags)

	// Осиротевшая строка больше не блокирует удаление записи реестра.
	require.NoError(t, storage.DeleteTag(context.Background(), tagID))
}

func TestStorage_RenameTag_DuplicateName(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateTag(t, "golang")
	tagID := factory.CreateTag(t, "postgres")

	err := storage.RenameTag(context.Background(), tagID, "golang")
	require.ErrorIs(t, err, models.ErrDuplicateName)
}

func TestStorage_MissingTags(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateTag(t, "golang")

	missing, err := storage.MissingTags(context.Background(), []string{"golang", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, missing)
}

func TestStorage_SoftDeleteResource(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	resourceID := factory.CreateResource(t, "Introduction to Go", models.VisibilityOpen, nil)

	require.NoError(t, storage.SoftDeleteResource(context.Background(), resourceID))

	// Удалённый ресурс исключается из чтения и листинга.
	_, err := storage.ReadResource(context.Background(), resourceID)
	require.ErrorIs(t, err, models.ErrNotFound)

	list, err := storage.ListResources(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Повторное удаление — не найден.
	err = storage.SoftDeleteResource(context.Background(), resourceID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_UpdateResource(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	factory.CreateTag(t, "golang")
	factory.CreateTag(t, "postgres")
	resourceID := factory.CreateResource(t, "Introduction to Go", models.VisibilityOpen, []string{"golang"})

	err := storage.UpdateResource(context.Background(), resourceID, models.Resource{
		Title:      "Advanced Go",
		Visibility: models.VisibilityRestricted,
		Tags:       []string{"postgres"},
	})
	require.NoError(t, err)

	res, err := storage.ReadResource(context.Background(), resourceID)
	require.NoError(t, err)
	assert.Equal(t, "Advanced Go", res.Title)
	assert.Equal(t, models.VisibilityRestricted, res.Visibility)
	assert.Equal(t, []string{"postgres"}, res.Tags)
}

func TestStorage_DeleteUserAsAdmin(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	adminUID := factory.CreateUser(t, "admin", "admin@example.com", "hashedpassword", "admin")
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "hashedpassword", "user")

	require.NoError(t, storage.DeleteUserAsAdmin(context.Background(), adminUID, userUID))

	verification := NewTestVerification(storage)
	verification.VerifyUserDeleted(t, userUID)
}

// Роль вызывающего перечитывается из базы при каждом вызове: устаревший
// токен администратора не даёт права на мутацию.
func TestStorage_DeleteUserAsAdmin_DemotedCaller(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	callerUID := factory.CreateUser(t, "demoted", "demoted@example.com", "hashedpassword", "user")
	targetUID := factory.CreateUser(t, "testuser", "test@example.com", "hashedpassword", "user")

	err := storage.DeleteUserAsAdmin(context.Background(), callerUID, targetUID)
	require.ErrorIs(t, err, models.ErrNotAuthorized)

	_, err = storage.GetUser(context.Background(), targetUID)
	require.NoError(t, err)
}

func TestStorage_ChangeUserRoleAsAdmin(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	adminUID := factory.CreateUser(t, "admin", "admin@example.com", "hashedpassword", "admin")
	userUID := factory.CreateUser(t, "testuser", "test@example.com", "hashedpassword", "user")

	require.NoError(t, storage.ChangeUserRoleAsAdmin(context.Background(), adminUID, userUID, models.RoleAdmin))

	verification := NewTestVerification(storage)
	verification.VerifyUserRole(t, userUID, models.RoleAdmin)

	err := storage.ChangeUserRoleAsAdmin(context.Background(), userUID,
		uuid.New().String(), models.RoleUser)
	require.ErrorIs(t, err, models.ErrNotFound)
}
