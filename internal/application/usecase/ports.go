package usecase

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
// Las escrituras de la jerarquía validan y escriben dentro de un único Run; si fn
// devuelve error no queda nada escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		categories repository.CategoryRepository,
		products repository.ProductRepository,
	) error) error
}
