package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `id::text, name, slug, parent_id::text, is_active, meta, created_at, updated_at`

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL (usable con pool o tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	var meta []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.IsActive, &meta, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &c.Meta); err != nil {
			return nil, fmt.Errorf("decode meta de categoría %s: %w", c.ID, err)
		}
	}
	return &c, nil
}

func (r *CategoryRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// FindActive lista todas las categorías activas.
func (r *CategoryRepo) FindActive(ctx context.Context) ([]*entity.Category, error) {
	return r.list(ctx, "list active categories",
		`SELECT `+categoryColumns+` FROM categories WHERE is_active ORDER BY created_at, id`)
}

// FindByID obtiene una categoría por ID (activa o no). nil, nil si no existe.
func (r *CategoryRepo) FindByID(ctx context.Context, id string) (*entity.Category, error) {
	if !validUUID(id) {
		return nil, nil
	}
	c, err := scanCategory(r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// FindBySlug obtiene una categoría por slug. nil, nil si no existe.
func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return c, nil
}

// FindChildren lista hijos activos de parentID; nil lista las raíces activas.
func (r *CategoryRepo) FindChildren(ctx context.Context, parentID *string) ([]*entity.Category, error) {
	if parentID == nil {
		return r.list(ctx, "list root categories",
			`SELECT `+categoryColumns+` FROM categories WHERE is_active AND parent_id IS NULL ORDER BY created_at, id`)
	}
	if !validUUID(*parentID) {
		return nil, nil
	}
	return r.list(ctx, "list child categories",
		`SELECT `+categoryColumns+` FROM categories WHERE is_active AND parent_id = $1 ORDER BY created_at, id`, *parentID)
}

// Save inserta o actualiza. El slug sólo se escribe al insertar.
func (r *CategoryRepo) Save(ctx context.Context, c *entity.Category) error {
	meta, err := json.Marshal(c.Meta)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	query := `
		INSERT INTO categories (id, name, slug, parent_id, is_active, meta, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			parent_id = EXCLUDED.parent_id,
			is_active = EXCLUDED.is_active,
			meta = EXCLUDED.meta,
			updated_at = EXCLUDED.updated_at`
	_, err = r.q.Exec(ctx, query, c.ID, c.Name, c.Slug, c.ParentID, c.IsActive, meta, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == "uq_categories_active_sibling_name" {
				return domain.ErrDuplicateSibling
			}
			return fmt.Errorf("%w: %s duplicado", domain.ErrValidation, constraint)
		}
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}
