// Package memory adaptadores en memoria de los puertos de persistencia
// (STORE_DRIVER=memory y pruebas). Devuelven copias: nadie comparte punteros con el almacén.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryStore)(nil)

// CategoryStore almacén de categorías en memoria; conserva el orden de inserción.
type CategoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*entity.Category
	order []string
}

// NewCategoryStore construye el almacén vacío.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{byID: make(map[string]*entity.Category)}
}

// FindActive lista las categorías activas.
func (s *CategoryStore) FindActive(_ context.Context) ([]*entity.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*entity.Category, 0, len(s.order))
	for _, id := range s.order {
		if c := s.byID[id]; c.IsActive {
			list = append(list, c.Clone())
		}
	}
	return list, nil
}

// FindByID obtiene una categoría (activa o no); nil si no existe.
func (s *CategoryStore) FindByID(_ context.Context, id string) (*entity.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id].Clone(), nil
}

// FindBySlug obtiene una categoría por slug; nil si no existe.
func (s *CategoryStore) FindBySlug(_ context.Context, slug string) (*entity.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if c := s.byID[id]; c.Slug == slug {
			return c.Clone(), nil
		}
	}
	return nil, nil
}

// FindChildren lista hijos activos de parentID (raíces si es nil).
func (s *CategoryStore) FindChildren(_ context.Context, parentID *string) ([]*entity.Category, error) {
	key := ""
	if parentID != nil {
		key = *parentID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*entity.Category
	for _, id := range s.order {
		c := s.byID[id]
		if c.IsActive && c.ParentKey() == key {
			list = append(list, c.Clone())
		}
	}
	return list, nil
}

// Save inserta o reemplaza la categoría.
func (s *CategoryStore) Save(_ context.Context, category *entity.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[category.ID]; !ok {
		s.order = append(s.order, category.ID)
	}
	s.byID[category.ID] = category.Clone()
	return nil
}

type categorySnapshot struct {
	byID  map[string]*entity.Category
	order []string
}

func (s *CategoryStore) snapshot() categorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := categorySnapshot{byID: make(map[string]*entity.Category, len(s.byID)), order: append([]string(nil), s.order...)}
	for id, c := range s.byID {
		snap.byID[id] = c.Clone()
	}
	return snap
}

func (s *CategoryStore) restore(snap categorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = snap.byID
	s.order = snap.order
}
