package taxonomy

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// LookupFunc obtiene una categoría del almacén vivo (activa o no); nil si no existe.
type LookupFunc func(ctx context.Context, id string) (*entity.Category, error)

// CheckAncestors recorre la cadena de ancestros de newParentID releyendo cada eslabón
// con lookup. Devuelve domain.ErrCycleDetected si aparece id o si la cadena ya contenía
// un ciclo; los errores de lookup se propagan sin cambios.
func CheckAncestors(ctx context.Context, id, newParentID string, lookup LookupFunc) error {
	seen := make(map[string]struct{})
	cur := newParentID
	for cur != "" {
		if cur == id {
			return domain.ErrCycleDetected
		}
		if _, ok := seen[cur]; ok {
			return domain.ErrCycleDetected
		}
		seen[cur] = struct{}{}
		c, err := lookup(ctx, cur)
		if err != nil {
			return err
		}
		if c == nil {
			return nil
		}
		cur = c.ParentKey()
	}
	return nil
}
