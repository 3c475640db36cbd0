package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/resource-library/internal/models"
)

// CreateResource вставляет новый ресурс вместе с его тегами и категориями
// и возвращает его ID.
func (s *Storage) CreateResource(ctx context.Context, res models.Resource) (int, error) {
	const op = "storage.CreateResource"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var newID int
	err = tx.QueryRowContext(ctx, `INSERT INTO resources (title, visibility)
			  VALUES ($1, $2)
			  RETURNING id`, res.Title, res.Visibility).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = insertResourceRefs(ctx, tx, newID, res.Tags, res.Categories); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadResource возвращает неудалённый ресурс по ID вместе с тегами
// и категориями. Удалённые ресурсы неотличимы от отсутствующих.
func (s *Storage) ReadResource(ctx context.Context, id int) (*models.Resource, error) {
	const op = "storage.ReadResource"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res := &models.Resource{}
	row := s.DB.QueryRowContext(ctx, `SELECT id, title, visibility, deleted, created_at, updated_at
			  FROM resources
			  WHERE id = $1 AND NOT deleted`, id)
	if err := row.Scan(&res.ID, &res.Title, &res.Visibility, &res.Deleted,
		&res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.fillResourceRefs(ctx, res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateResource обновляет ресурс и полностью заменяет его теги и категории.
func (s *Storage) UpdateResource(ctx context.Context, id int, res models.Resource) error {
	const op = "storage.UpdateResource"
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

	result, err := tx.ExecContext(ctx, `UPDATE resources
			  SET title = $1, visibility = $2, updated_at = NOW()
			  WHERE id = $3 AND NOT deleted`, res.Title, res.Visibility, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM resource_tags WHERE resource_id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM resource_categories WHERE resource_id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = insertResourceRefs(ctx, tx, id, res.Tags, res.Categories); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SoftDeleteResource помечает ресурс удалённым. Запись сохраняется,
// но исключается из чтения и подсчёта использования тегов.
func (s *Storage) SoftDeleteResource(ctx context.Context, id int) error {
	const op = "storage.SoftDeleteResource"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE resources
			  SET deleted = TRUE, updated_at = NOW()
			  WHERE id = $1 AND NOT deleted`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// ListResources возвращает неудалённые ресурсы с пагинацией.
func (s *Storage) ListResources(ctx context.Context, limit, offset int) ([]*models.Resource, error) {
	const op = "storage.ListResources"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, title, visibility, deleted, created_at, updated_at
			  FROM resources
			  WHERE NOT deleted
			  ORDER BY id
			  LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Resource
	for rows.Next() {
		var r models.Resource
		if err = rows.Scan(&r.ID, &r.Title, &r.Visibility, &r.Deleted,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, r := range result {
		if err = s.fillResourceRefs(ctx, r); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return result, nil
}

func insertResourceRefs(ctx context.Context, tx *sql.Tx, resourceID int, tags []string, categories []int64) error {
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resource_tags (resource_id, tag_name) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, resourceID, tag); err != nil {
			return err
		}
	}
	for _, cat := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resource_categories (resource_id, category_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`, resourceID, cat); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) fillResourceRefs(ctx context.Context, res *models.Resource) error {
	tagRows, err := s.DB.QueryContext(ctx,
		`SELECT tag_name FROM resource_tags WHERE resource_id = $1 ORDER BY tag_name`, res.ID)
	if err != nil {
		return err
	}
	defer func() {
		_ = tagRows.Close()
	}()
	for tagRows.Next() {
		var tag string
		if err = tagRows.Scan(&tag); err != nil {
			return err
		}
		res.Tags = append(res.Tags, tag)
	}
	if err = tagRows.Err(); err != nil {
		return err
	}

	catRows, err := s.DB.QueryContext(ctx,
		`SELECT category_id FROM resource_categories WHERE resource_id = $1 ORDER BY category_id`, res.ID)
	if err != nil {
		return err
	}
	defer func() {
		_ = catRows.Close()
	}()
	for catRows.Next() {
		var cat int64
		if err = catRows.Scan(&cat); err != nil {
			return err
		}
		res.Categories = append(res.Categories, cat)
	}
	return catRows.Err()
}
