package repository

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
// FindByID devuelve también categorías inactivas; nil, nil si no existe.
type CategoryRepository interface {
	FindActive(ctx context.Context) ([]*entity.Category, error)
	FindByID(ctx context.Context, id string) (*entity.Category, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Category, error)
	// FindChildren lista hijos activos; parentID nil lista las raíces activas.
	FindChildren(ctx context.Context, parentID *string) ([]*entity.Category, error)
	Save(ctx context.Context, category *entity.Category) error
}
