package services

import (
	"context"
	"database/sql"

	"github.com/akapustin/itemhub/internal/common"
	"github.com/akapustin/itemhub/internal/dbx"
	"github.com/akapustin/itemhub/internal/server/models"
	"github.com/akapustin/itemhub/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// UpdateItemInput carries a partial update: nil fields keep their prior values.
// OwnerID is immutable and therefore absent here.
type UpdateItemInput struct {
	Title       *string
	Description *string
}

// ItemService provides CRUD over items with the ownership gate applied
// uniformly: a non-superuser may only touch items they own.
type ItemService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewItemService(db *sql.DB, m repomanager.RepositoryManager) *ItemService {
	return &ItemService{db: db, repomanager: m}
}

// CanAccessItem is the authorization predicate for ownership-gated item
// operations. Superusers bypass the ownership check.
func CanAccessItem(principal *models.User, item *models.Item) bool {
	if principal.IsSuperuser {
		return true
	}
	return item.OwnerID == principal.ID
}

// Create stores a new item owned by the principal. The owner is fixed at
// creation and never changes.
func (s *ItemService) Create(ctx context.Context, principal *models.User, title, description string) (*models.Item, error) {
	item := &models.Item{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		OwnerID:     principal.ID,
	}

	return s.repomanager.Items(s.db).Create(ctx, item)
}

// Get returns the item if the principal may access it; otherwise ErrForbidden.
func (s *ItemService) Get(ctx context.Context, principal *models.User, id string) (*models.Item, error) {
	item, err := s.repomanager.Items(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanAccessItem(principal, item) {
		return nil, common.ErrForbidden
	}

	return item, nil
}

// List returns items visible to the principal: all of them for a superuser,
// only owned ones otherwise. The filter is applied at the query level.
func (s *ItemService) List(ctx context.Context, principal *models.User, offset, limit int) ([]*models.Item, error) {
	repo := s.repomanager.Items(s.db)

	if principal.IsSuperuser {
		return repo.List(ctx, offset, limit)
	}
	return repo.ListByOwner(ctx, principal.ID, offset, limit)
}

// Update applies a partial update to an item the principal may access.
// The read-modify-write runs in a single transaction.
func (s *ItemService) Update(ctx context.Context, principal *models.User, id string, in UpdateItemInput) (*models.Item, error) {
	var updated *models.Item

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Items(tx)

		item, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !CanAccessItem(principal, item) {
			return common.ErrForbidden
		}

		if in.Title != nil {
			item.Title = *in.Title
		}
		if in.Description != nil {
			item.Description = *in.Description
		}

		updated, err = repo.Update(ctx, item)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes an item the principal may access. Deleting an already
// deleted item yields ErrNotFound.
func (s *ItemService) Delete(ctx context.Context, principal *models.User, id string) error {
	repo := s.repomanager.Items(s.db)

	item, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanAccessItem(principal, item) {
		return common.ErrForbidden
	}

	return repo.Delete(ctx, item.ID)
}
