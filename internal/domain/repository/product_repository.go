package repository

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// ProductRepository contador de referencias de productos hacia categorías.
// Sólo cuentan productos activos; category y subcategory se suman en un único total por id.
type ProductRepository interface {
	CountActiveByCategoryRef(ctx context.Context) (map[string]int, error)
	ExistsActiveByCategoryRef(ctx context.Context, categoryID string) (bool, error)
	Create(ctx context.Context, product *entity.Product) error
}
