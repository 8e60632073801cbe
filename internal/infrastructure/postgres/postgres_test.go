// Pruebas de integración de los adaptadores PostgreSQL. Se omiten si TEST_DATABASE_URL
// no está definido o la base no responde.
package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Catalogo-api/pkg/config"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("skipping integration test: TEST_DATABASE_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 4})
	if err != nil {
		t.Skipf("skipping integration test: DB no disponible: %v", err)
	}
	require.NoError(t, postgres.Migrate(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

// cleanup borra físicamente lo creado por la prueba (sólo en tests).
func cleanup(t *testing.T, pool *pgxpool.Pool, productIDs, categoryIDs *[]string) {
	t.Cleanup(func() {
		ctx := context.Background()
		for _, id := range *productIDs {
			_, _ = pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		}
		for i := len(*categoryIDs) - 1; i >= 0; i-- {
			_, _ = pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, (*categoryIDs)[i])
		}
	})
}

func TestPostgres_FlujoCompleto(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	var productIDs, categoryIDs []string
	cleanup(t, pool, &productIDs, &categoryIDs)

	cats := postgres.NewCategoryRepository(pool)
	products := postgres.NewProductRepository(pool)
	uc := usecase.NewCategoryUseCase(cats, products, postgres.NewTxRunner(pool), logger.Nop(), nil)

	suffix := uuid.NewString()[:8]
	a, err := uc.Create(ctx, dto.CreateCategoryRequest{Name: "Raíz " + suffix})
	require.NoError(t, err)
	categoryIDs = append(categoryIDs, a.ID)
	b, err := uc.Create(ctx, dto.CreateCategoryRequest{Name: "Hija", ParentID: &a.ID})
	require.NoError(t, err)
	categoryIDs = append(categoryIDs, b.ID)

	_, err = uc.Create(ctx, dto.CreateCategoryRequest{Name: "HIJA", ParentID: &a.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicateSibling)

	_, err = uc.Update(ctx, a.ID, dto.UpdateCategoryRequest{ParentID: dto.OptionalID{Set: true, Value: &b.ID}})
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	now := time.Now()
	p := &entity.Product{
		ID: uuid.NewString(), SKU: "SKU-" + suffix, Name: "Producto", Price: decimal.RequireFromString("19.90"),
		SubcategoryID: &b.ID, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, products.Create(ctx, p))
	productIDs = append(productIDs, p.ID)

	counts, err := products.CountActiveByCategoryRef(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[b.ID])

	res, err := uc.Delete(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrDeleteBlocked)
	assert.Equal(t, "HAS_PRODUCTS", res.Reason)

	_, err = pool.Exec(ctx, `UPDATE products SET is_active = false WHERE id = $1`, p.ID)
	require.NoError(t, err)
	res, err = uc.Delete(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, res.Applied)

	stored, err := cats.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsActive)

	missing, err := cats.FindByID(ctx, "no-es-uuid")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCategoryRepo_IndiceDeHermanos(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	var productIDs, categoryIDs []string
	cleanup(t, pool, &productIDs, &categoryIDs)

	repo := postgres.NewCategoryRepository(pool)
	name := "Índice " + uuid.NewString()[:8]
	now := time.Now()
	first := &entity.Category{ID: uuid.NewString(), Name: name, Slug: "s1-" + uuid.NewString(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Save(ctx, first))
	categoryIDs = append(categoryIDs, first.ID)

	// Un guardado que saltara la validación de la app choca con el índice parcial.
	dup := &entity.Category{ID: uuid.NewString(), Name: name, Slug: "s2-" + uuid.NewString(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	assert.ErrorIs(t, repo.Save(ctx, dup), domain.ErrDuplicateSibling)

	got, err := repo.FindBySlug(ctx, first.Slug)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.Nil(t, got.ParentID)
}
