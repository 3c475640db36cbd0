package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/resource-library/internal/models"
)

// CreateTag добавляет тег в реестр и возвращает его ID.
func (s *Storage) CreateTag(ctx context.Context, name string) (int, error) {
	const op = "storage.CreateTag"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO tags (name) VALUES ($1) RETURNING id`, name).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, models.ErrDuplicateName)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListTags возвращает все теги реестра в алфавитном порядке.
func (s *Storage) ListTags(ctx context.Context) ([]*models.Tag, error) {
	const op = "storage.ListTags"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Tag
	for rows.Next() {
		var t models.Tag
		if err = rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteTag удаляет тег, если на него не ссылается ни один неудалённый
// ресурс. Подсчёт использований и удаление выполняются в одной транзакции
// с блокировкой строки тега: из двух одновременных вызовов успешным
// будет не более одного. Сопоставление идёт по текущему значению имени.
func (s *Storage) DeleteTag(ctx context.Context, tagID int) error {
	const op = "storage.DeleteTag"
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

	var name string
	err = tx.QueryRowContext(ctx,
		`SELECT name FROM tags WHERE id = $1 FOR UPDATE`, tagID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var usage int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT rt.resource_id)
		 FROM resource_tags rt
		 JOIN resources r ON r.id = rt.resource_id
		 WHERE rt.tag_name = $1 AND NOT r.deleted`, name).Scan(&usage)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if usage > 0 {
		return fmt.Errorf("%s: %w", op, &models.TagInUseError{Count: usage})
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, tagID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RenameTag меняет имя тега в реестре. Строки тегов на ресурсах не
// переписываются. Возвращает ErrDuplicateName, если имя уже занято.
func (s *Storage) RenameTag(ctx context.Context, tagID int, newName string) error {
	const op = "storage.RenameTag"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE tags SET name = $1 WHERE id = $2`, newName, tagID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, models.ErrDuplicateName)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// MissingTags возвращает имена из списка, отсутствующие в реестре тегов.
func (s *Storage) MissingTags(ctx context.Context, names []string) ([]string, error) {
	const op = "storage.MissingTags"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var missing []string
	for _, name := range names {
		var exists bool
		err := s.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1)`, name).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
