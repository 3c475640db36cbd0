// Package premium содержит бизнес-логику жизненного цикла премиум-подписки:
// активацию, немедленную отмену и вычисление действующего статуса.
package premium

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/resource-library/internal/lib/sl"
	"github.com/magabrotheeeer/resource-library/internal/models"
)

// Длительности подписок фиксированы в днях, без календарной арифметики.
const (
	durationMonthly   = 30 * 24 * time.Hour
	durationQuarterly = 90 * 24 * time.Hour
	durationYearly    = 365 * 24 * time.Hour
)

// UserRepository описывает методы хранилища, нужные жизненному циклу подписки.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ActivatePremium записывает премиум-поля и добавляет запись журнала
	// в одной транзакции.
	ActivatePremium(ctx context.Context, userUID, kind string, activatedAt, expiresAt time.Time) error
	// ClearPremium очищает премиум-поля пользователя.
	ClearPremium(ctx context.Context, userUID string) error
	// ListSubscriptionEvents возвращает журнал активаций пользователя.
	ListSubscriptionEvents(ctx context.Context, userUID string) ([]*models.SubscriptionEvent, error)
}

// EventPublisher публикует события жизненного цикла во внешнюю очередь.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// LifecycleEvent — сообщение о событии жизненного цикла для очереди уведомлений.
type LifecycleEvent struct {
	UserUID   string     `json:"user_uid"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Kind      string     `json:"kind,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Service реализует операции жизненного цикла премиум-подписки.
type Service struct {
	users     UserRepository
	publisher EventPublisher
	log       *slog.Logger
}

// New создает новый экземпляр Service. publisher может быть nil —
// тогда события не публикуются.
func New(users UserRepository, publisher EventPublisher, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		publisher: publisher,
		log:       log,
	}
}

// Duration возвращает длительность подписки заданного вида.
func Duration(kind string) (time.Duration, error) {
	switch kind {
	case models.KindMonthly:
		return durationMonthly, nil
	case models.KindQuarterly:
		return durationQuarterly, nil
	case models.KindYearly:
		return durationYearly, nil
	default:
		return 0, fmt.Errorf("unknown subscription kind: %q", kind)
	}
}

// Activate включает премиум-подписку вида kind с момента now и возвращает
// момент её истечения. Повторная активация до истечения срока не
// продлевает остаток, а отсчитывает срок заново от now — наблюдаемое
// поведение исходной системы, продуктовое решение не подтверждено.
// Запись премиум-полей и добавление в журнал атомарны.
func (s *Service) Activate(ctx context.Context, userUID, kind string, now time.Time) (time.Time, error) {
	d, err := Duration(kind)
	if err != nil {
		return time.Time{}, err
	}
	expiresAt := now.Add(d)

	if err := s.users.ActivatePremium(ctx, userUID, kind, now, expiresAt); err != nil {
		return time.Time{}, err
	}
	s.log.Info("premium activated",
		slog.String("user_uid", userUID),
		slog.String("kind", kind),
		slog.Time("expires_at", expiresAt))

	s.publishEvent(ctx, "activated", userUID, kind, &expiresAt)
	return expiresAt, nil
}

// Cancel немедленно отключает премиум-подписку независимо от оставшегося
// времени. Частичных возвратов нет.
func (s *Service) Cancel(ctx context.Context, userUID string) error {
	if err := s.users.ClearPremium(ctx, userUID); err != nil {
		return err
	}
	s.log.Info("premium cancelled", slog.String("user_uid", userUID))

	s.publishEvent(ctx, "cancelled", userUID, "", nil)
	return nil
}

// Effective возвращает признак действующей премиум-подписки на момент now.
// Предикат вычисляется при каждом обращении: фонового процесса, сбрасывающего
// флаг по истечении срока, не существует, поэтому сырой флаг Premium сам по
// себе ничего не гарантирует.
func Effective(u *models.User, now time.Time) bool {
	if u == nil || !u.Premium || u.PremiumExpiresAt == nil {
		return false
	}
	return u.PremiumExpiresAt.After(now)
}

// History возвращает журнал активаций пользователя.
func (s *Service) History(ctx context.Context, userUID string) ([]*models.SubscriptionEvent, error) {
	return s.users.ListSubscriptionEvents(ctx, userUID)
}

// publishEvent отправляет событие в очередь уведомлений. Публикация
// выполняется по принципу best-effort: недоступность брокера логируется,
// но не отменяет уже совершённую мутацию.
func (s *Service) publishEvent(ctx context.Context, routingKey, userUID, kind string, expiresAt *time.Time) {
	if s.publisher == nil {
		return
	}
	event := LifecycleEvent{UserUID: userUID, Kind: kind, ExpiresAt: expiresAt}
	if u, err := s.users.GetUser(ctx, userUID); err == nil {
		event.Email = u.Email
		event.Username = u.Username
	}
	if err := s.publisher.Publish(routingKey, event); err != nil {
		s.log.Warn("failed to publish premium event",
			slog.String("routing_key", routingKey), sl.Err(err))
	}
}
