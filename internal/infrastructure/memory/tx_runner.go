package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ usecase.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las escrituras y restaura las categorías si fn falla.
type TxRunner struct {
	mu         sync.Mutex
	categories *CategoryStore
	products   *ProductStore
}

// NewTxRunner construye el runner sobre los almacenes dados.
func NewTxRunner(categories *CategoryStore, products *ProductStore) *TxRunner {
	return &TxRunner{categories: categories, products: products}
}

// Run ejecuta fn con los almacenes; ante error deja las categorías como estaban.
func (r *TxRunner) Run(ctx context.Context, fn func(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := r.categories.snapshot()
	if err := fn(r.categories, r.products); err != nil {
		r.categories.restore(snap)
		return err
	}
	return nil
}
