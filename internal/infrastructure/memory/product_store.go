package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductStore)(nil)

// ProductStore productos en memoria; sólo lo que el contador de referencias necesita.
type ProductStore struct {
	mu       sync.RWMutex
	products []*entity.Product
}

// NewProductStore construye el almacén vacío.
func NewProductStore() *ProductStore {
	return &ProductStore{}
}

// Create agrega un producto.
func (s *ProductStore) Create(_ context.Context, product *entity.Product) error {
	cp := *product
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, &cp)
	return nil
}

// SetActive cambia la vigencia de un producto (pruebas y fixtures).
func (s *ProductStore) SetActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			p.IsActive = active
		}
	}
}

// CountActiveByCategoryRef suma por id las referencias como categoría y como subcategoría.
func (s *ProductStore) CountActiveByCategoryRef(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if p.CategoryID != nil {
			counts[*p.CategoryID]++
		}
		if p.SubcategoryID != nil {
			counts[*p.SubcategoryID]++
		}
	}
	return counts, nil
}

// ExistsActiveByCategoryRef indica si algún producto activo referencia la categoría.
func (s *ProductStore) ExistsActiveByCategoryRef(_ context.Context, categoryID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.IsActive && p.References(categoryID) {
			return true, nil
		}
	}
	return false, nil
}
