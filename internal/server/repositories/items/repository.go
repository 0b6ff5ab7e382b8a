package items

import (
	"context"

	"github.com/akapustin/itemhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	List(ctx context.Context, offset, limit int) ([]*models.Item, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*models.Item, error)
	Update(ctx context.Context, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id string) error
}
