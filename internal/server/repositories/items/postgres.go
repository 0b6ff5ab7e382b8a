package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akapustin/itemhub/internal/common"
	"github.com/akapustin/itemhub/internal/dbx"
	"github.com/akapustin/itemhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {

	query :=
		`INSERT INTO items (id, title, description, owner_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.Title, item.Description, item.OwnerID).
		Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	query :=
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM items
		 WHERE id = $1
		 `

	item := &models.Item{}
	var description sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&item.ID, &item.Title, &description, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	item.Description = description.String
	return item, nil
}

func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]*models.Item, error) {
	query :=
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM items
		 ORDER BY created_at
		 OFFSET $1 LIMIT $2
		 `

	return r.queryItems(ctx, query, offset, limit)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*models.Item, error) {
	query :=
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM items
		 WHERE owner_id = $1
		 ORDER BY created_at
		 OFFSET $2 LIMIT $3
		 `

	return r.queryItems(ctx, query, ownerID, offset, limit)
}

func (r *PostgresRepository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	query :=
		`UPDATE items
		 SET title = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, item.ID, item.Title, item.Description).
		Scan(&item.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM items WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		var description sql.NullString
		if err := rows.Scan(&item.ID, &item.Title, &description, &item.OwnerID,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		item.Description = description.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}
