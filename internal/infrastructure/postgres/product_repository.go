package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo contador de referencias de productos sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// CountActiveByCategoryRef une las agrupaciones por category_id y subcategory_id de
// productos activos y suma por id.
func (r *ProductRepo) CountActiveByCategoryRef(ctx context.Context) (map[string]int, error) {
	const query = `
	SELECT ref::text, SUM(cnt)::int
	FROM (
	    SELECT category_id AS ref, COUNT(*) AS cnt
	    FROM products
	    WHERE is_active AND category_id IS NOT NULL
	    GROUP BY category_id
	    UNION ALL
	    SELECT subcategory_id AS ref, COUNT(*) AS cnt
	    FROM products
	    WHERE is_active AND subcategory_id IS NOT NULL
	    GROUP BY subcategory_id
	) refs
	GROUP BY ref`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("products.CountActiveByCategoryRef: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// ExistsActiveByCategoryRef indica si algún producto activo referencia la categoría.
func (r *ProductRepo) ExistsActiveByCategoryRef(ctx context.Context, categoryID string) (bool, error) {
	if !validUUID(categoryID) {
		return false, nil
	}
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM products
			WHERE is_active AND (category_id = $1 OR subcategory_id = $1)
		)`, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("products.ExistsActiveByCategoryRef: %w", err)
	}
	return exists, nil
}

// Create persiste un producto (fixtures / seed).
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, price, category_id, subcategory_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.Price, p.CategoryID, p.SubcategoryID, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("insert product %s: SKU duplicado", p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}
