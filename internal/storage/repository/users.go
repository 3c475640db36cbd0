package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/resource-library/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, models.ErrDuplicateName)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	return s.getUser(ctx, op, `SELECT uid, email, username, password_hash, role, premium,
			      premium_expires_at, subscription_kind, created_at
			  FROM users
			  WHERE username = $1`, username)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	return s.getUser(ctx, op, `SELECT uid, email, username, password_hash, role, premium,
			      premium_expires_at, subscription_kind, created_at
			  FROM users
			  WHERE uid = $1`, userUID)
}

func (s *Storage) getUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, arg)

	var premiumExpiresAt sql.NullTime
	var subscriptionKind sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.Premium, &premiumExpiresAt, &subscriptionKind, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if premiumExpiresAt.Valid {
		u.PremiumExpiresAt = &premiumExpiresAt.Time
	}
	if subscriptionKind.Valid {
		u.SubscriptionKind = &subscriptionKind.String
	}
	return u, nil
}

// ActivatePremium записывает премиум-статус пользователя и добавляет
// запись в журнал активаций. Обе записи выполняются в одной транзакции:
// повторная активация перезаписывает срок, журнал только пополняется.
func (s *Storage) ActivatePremium(ctx context.Context, userUID, kind string, activatedAt, expiresAt time.Time) error {
	const op = "storage.ActivatePremium"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `UPDATE users
			  SET premium = TRUE,
			      premium_expires_at = $1,
			      subscription_kind = $2
			  WHERE uid = $3`, expiresAt, kind, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO subscription_events (user_uid, kind, activated_at, expires_at)
			  VALUES ($1, $2, $3, $4)`, userUID, kind, activatedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearPremium немедленно снимает премиум-статус: флаг, срок и вид
// подписки очищаются независимо от оставшегося времени.
func (s *Storage) ClearPremium(ctx context.Context, userUID string) error {
	const op = "storage.ClearPremium"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users
			  SET premium = FALSE,
			      premium_expires_at = NULL,
			      subscription_kind = NULL
			  WHERE uid = $1`, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// DeleteUserAsAdmin удаляет учётную запись targetUID от имени adminUID.
// Роль вызывающего перечитывается внутри транзакции с блокировкой его
// строки, чтобы параллельная смена роли не могла проскочить между
// проверкой и удалением.
func (s *Storage) DeleteUserAsAdmin(ctx context.Context, adminUID, targetUID string) error {
	const op = "storage.DeleteUserAsAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var callerRole string
	err = tx.QueryRowContext(ctx,
		`SELECT role FROM users WHERE uid = $1 FOR UPDATE`, adminUID).Scan(&callerRole)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if callerRole != models.RoleAdmin {
		return fmt.Errorf("%s: %w", op, models.ErrNotAuthorized)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, targetUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChangeUserRoleAsAdmin меняет роль targetUID от имени adminUID.
// Проверка роли вызывающего выполняется так же, как в DeleteUserAsAdmin.
func (s *Storage) ChangeUserRoleAsAdmin(ctx context.Context, adminUID, targetUID, newRole string) error {
	const op = "storage.ChangeUserRoleAsAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var callerRole string
	err = tx.QueryRowContext(ctx,
		`SELECT role FROM users WHERE uid = $1 FOR UPDATE`, adminUID).Scan(&callerRole)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if callerRole != models.RoleAdmin {
		return fmt.Errorf("%s: %w", op, models.ErrNotAuthorized)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET role = $1 WHERE uid = $2`, newRole, targetUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSubscriptionEvents возвращает журнал активаций пользователя,
// новые записи первыми.
func (s *Storage) ListSubscriptionEvents(ctx context.Context, userUID string) ([]*models.SubscriptionEvent, error) {
	const op = "storage.ListSubscriptionEvents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, user_uid, kind, activated_at, expires_at
			  FROM subscription_events
			  WHERE user_uid = $1
			  ORDER BY activated_at DESC`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionEvent
	for rows.Next() {
		var e models.SubscriptionEvent
		if err = rows.Scan(&e.ID, &e.UserUID, &e.Kind, &e.ActivatedAt, &e.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
