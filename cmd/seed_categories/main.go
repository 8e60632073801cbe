// seed_categories carga una taxonomía de categorías (y productos de ejemplo) desde YAML,
// creándola a través del caso de uso para que cada alta pase por las mismas validaciones que la API.
//
// Uso: go run ./cmd/seed_categories [ruta/taxonomia.yaml]
// Por defecto lee cmd/seed_categories/taxonomy.yaml. Usa la configuración de pkg/config (DATABASE_URL, DB_*).
package main

import (
	"context"
	"os"

	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Catalogo-api/pkg/config"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

func main() {
	path := "cmd/seed_categories/taxonomy.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("abrir taxonomía")
	}
	defer f.Close()

	tax, err := parseTaxonomy(f)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("leer taxonomía")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	productRepo := postgres.NewProductRepository(pool)
	uc := usecase.NewCategoryUseCase(
		postgres.NewCategoryRepository(pool), productRepo, postgres.NewTxRunner(pool), log, nil,
	)

	s := &seeder{uc: uc, products: productRepo, log: log.Component("seed")}
	res, err := s.apply(ctx, tax)
	if err != nil {
		log.Fatal().Err(err).Msg("seed de categorías")
	}
	log.Info().
		Int("created", res.Created).
		Int("reused", res.Reused).
		Int("products", res.Products).
		Msg("seed de categorías completado")
}
