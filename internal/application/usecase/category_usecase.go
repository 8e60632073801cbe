package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	"github.com/jhoicas/Catalogo-api/internal/domain/taxonomy"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
	"github.com/jhoicas/Catalogo-api/pkg/metrics"
	"github.com/jhoicas/Catalogo-api/pkg/slug"
)

// CategoryUseCase lecturas (lista plana / árbol con conteos) y escrituras validadas de la
// jerarquía de categorías. Cada lectura recalcula desde el almacén; no hay caché.
type CategoryUseCase struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	tx         TxRunner
	log        *logger.Logger
	metrics    *metrics.Collector
	now        func() time.Time
}

// NewCategoryUseCase construye el caso de uso. m puede ser nil.
func NewCategoryUseCase(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	tx TxRunner,
	log *logger.Logger,
	m *metrics.Collector,
) *CategoryUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CategoryUseCase{
		categories: categories,
		products:   products,
		tx:         tx,
		log:        log.Component("categories"),
		metrics:    m,
		now:        time.Now,
	}
}

// ListFlat lista las categorías activas ordenadas por (meta.sort, nombre).
func (uc *CategoryUseCase) ListFlat(ctx context.Context, withCounts bool) (*dto.CategoryFlatResponse, error) {
	start := time.Now()
	cats, counts, err := uc.load(ctx, withCounts)
	if err != nil {
		return nil, err
	}
	items := taxonomy.BuildFlat(cats, counts)
	uc.metrics.ObserveRead("flat", time.Since(start), len(items))

	out := make([]dto.CategoryFlatItem, 0, len(items))
	for _, it := range items {
		out = append(out, toFlatItem(it))
	}
	return &dto.CategoryFlatResponse{Categories: out}, nil
}

// ListTree arma el árbol anidado; con withCounts agrega conteos directos y de subárbol.
func (uc *CategoryUseCase) ListTree(ctx context.Context, withCounts bool) (*dto.CategoryTreeResponse, error) {
	start := time.Now()
	cats, counts, err := uc.load(ctx, withCounts)
	if err != nil {
		return nil, err
	}
	tree := taxonomy.BuildTree(cats, counts)
	uc.reportDegraded(tree)
	uc.metrics.ObserveRead("tree", time.Since(start), len(cats))

	return &dto.CategoryTreeResponse{Tree: toNodes(tree.Roots)}, nil
}

// ListChildren lista los hijos activos directos de parentID.
func (uc *CategoryUseCase) ListChildren(ctx context.Context, parentID string) (*dto.CategoryFlatResponse, error) {
	start := time.Now()
	children, err := uc.categories.FindChildren(ctx, &parentID)
	if err != nil {
		return nil, err
	}
	taxonomy.SortCategories(children)
	uc.metrics.ObserveRead("children", time.Since(start), len(children))

	out := make([]dto.CategoryFlatItem, 0, len(children))
	for _, c := range children {
		out = append(out, dto.CategoryFlatItem{CategoryResponse: *toCategoryResponse(c)})
	}
	return &dto.CategoryFlatResponse{Categories: out}, nil
}

// GetByID obtiene una categoría activa.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsActive {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(c), nil
}

func (uc *CategoryUseCase) load(ctx context.Context, withCounts bool) ([]*entity.Category, map[string]int, error) {
	cats, err := uc.categories.FindActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !withCounts {
		return cats, nil, nil
	}
	counts, err := uc.products.CountActiveByCategoryRef(ctx)
	if err != nil {
		return nil, nil, err
	}
	if counts == nil {
		counts = map[string]int{}
	}
	return cats, counts, nil
}

func (uc *CategoryUseCase) reportDegraded(tree *taxonomy.Tree) {
	if len(tree.Orphans) > 0 {
		uc.log.Warn().Strs("category_ids", tree.Orphans).
			Msg("categorías con padre inexistente o inactivo tratadas como raíz")
		uc.metrics.AddDegraded("orphan", len(tree.Orphans))
	}
	if len(tree.CycleBreaks) > 0 {
		uc.log.Error().Strs("category_ids", tree.CycleBreaks).
			Msg("ciclo persistido en la jerarquía; categorías promovidas a raíz")
		uc.metrics.AddDegraded("cycle", len(tree.CycleBreaks))
	}
}

// Create crea una categoría activa. El padre, si viene, debe existir y estar activo;
// el nombre (recortado) no puede repetirse entre hermanos activos sin distinguir mayúsculas.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es requerido", domain.ErrValidation)
	}
	parentID := normalizeID(in.ParentID)

	var created *entity.Category
	err := uc.tx.Run(ctx, func(cats repository.CategoryRepository, _ repository.ProductRepository) error {
		if parentID != nil {
			parent, err := cats.FindByID(ctx, *parentID)
			if err != nil {
				return err
			}
			if parent == nil || !parent.IsActive {
				return domain.ErrInvalidParent
			}
		}
		if err := ensureUniqueSibling(ctx, cats, parentID, name, ""); err != nil {
			return err
		}

		id := uuid.New().String()
		s, err := uniqueSlug(ctx, cats, name, id)
		if err != nil {
			return err
		}
		now := uc.now()
		c := &entity.Category{
			ID:        id,
			Name:      name,
			Slug:      s,
			ParentID:  parentID,
			IsActive:  true,
			Meta:      mergeMeta(entity.CategoryMeta{}, in.Meta),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := cats.Save(ctx, c); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.IncWrite("create")
	uc.log.Info().Str("category_id", created.ID).Str("name", created.Name).Msg("categoría creada")
	return toCategoryResponse(created), nil
}

// Update aplica un parche validado contra el conjunto vivo. Un cambio de padre recorre
// los ancestros del nuevo padre releyendo cada uno; renombrar o mover vuelve a exigir
// unicidad entre hermanos. is_active=false pasa por la misma compuerta que Delete.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	var name *string
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return nil, fmt.Errorf("%w: el nombre no puede quedar vacío", domain.ErrValidation)
		}
		name = &n
	}
	var newParent *string
	if in.ParentID.Set {
		newParent = normalizeID(in.ParentID.Value)
		if newParent != nil && *newParent == id {
			return nil, domain.ErrSelfParent
		}
	}
	deactivate := in.IsActive != nil && !*in.IsActive

	var updated *entity.Category
	err := uc.tx.Run(ctx, func(cats repository.CategoryRepository, products repository.ProductRepository) error {
		found, err := cats.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if found == nil || !found.IsActive {
			return domain.ErrNotFound
		}

		targetParent := found.ParentID
		if in.ParentID.Set {
			targetParent = newParent
			if newParent != nil {
				parent, err := cats.FindByID(ctx, *newParent)
				if err != nil {
					return err
				}
				if parent == nil || !parent.IsActive {
					return domain.ErrInvalidParent
				}
				if err := taxonomy.CheckAncestors(ctx, id, *newParent, cats.FindByID); err != nil {
					return err
				}
			}
		}
		targetName := found.Name
		if name != nil {
			targetName = *name
		}
		if name != nil || in.ParentID.Set {
			if err := ensureUniqueSibling(ctx, cats, targetParent, targetName, id); err != nil {
				return err
			}
		}
		if deactivate {
			if err := checkDeletable(ctx, cats, products, id); err != nil {
				return err
			}
		}

		found.Name = targetName
		found.ParentID = targetParent
		found.Meta = mergeMeta(found.Meta, in.Meta)
		if deactivate {
			found.IsActive = false
		}
		found.UpdatedAt = uc.now()
		if err := cats.Save(ctx, found); err != nil {
			return err
		}
		updated = found
		return nil
	})
	if err != nil {
		uc.recordBlocked(err)
		return nil, err
	}

	uc.metrics.IncWrite("update")
	uc.log.Info().Str("category_id", id).Bool("is_active", updated.IsActive).Msg("categoría actualizada")
	return toCategoryResponse(updated), nil
}

// Delete baja lógica con compuerta: Requested → Blocked(HAS_CHILDREN) | Blocked(HAS_PRODUCTS) | Applied.
// En los casos rechazados devuelve la respuesta con el motivo y también el error
// (domain.ErrNotFound o *domain.DeleteBlockedError).
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) (*dto.DeleteCategoryResponse, error) {
	err := uc.tx.Run(ctx, func(cats repository.CategoryRepository, products repository.ProductRepository) error {
		found, err := cats.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if found == nil || !found.IsActive {
			return domain.ErrNotFound
		}
		if err := checkDeletable(ctx, cats, products, id); err != nil {
			return err
		}
		found.IsActive = false
		found.UpdatedAt = uc.now()
		return cats.Save(ctx, found)
	})

	var blocked *domain.DeleteBlockedError
	switch {
	case err == nil:
		uc.metrics.IncWrite("delete")
		uc.log.Info().Str("category_id", id).Msg("categoría desactivada")
		return &dto.DeleteCategoryResponse{Applied: true, Message: "categoría desactivada"}, nil
	case errors.As(err, &blocked):
		uc.recordBlocked(err)
		return &dto.DeleteCategoryResponse{Reason: string(blocked.Reason), Message: blockedMessage(blocked.Reason)}, err
	case errors.Is(err, domain.ErrNotFound):
		return &dto.DeleteCategoryResponse{Reason: string(domain.ReasonNotFound), Message: "categoría no encontrada"}, err
	default:
		return nil, err
	}
}

func (uc *CategoryUseCase) recordBlocked(err error) {
	var blocked *domain.DeleteBlockedError
	if !errors.As(err, &blocked) {
		return
	}
	uc.metrics.IncDeleteBlocked(string(blocked.Reason))
	uc.log.Info().Str("category_id", blocked.CategoryID).Str("reason", string(blocked.Reason)).
		Msg("baja de categoría bloqueada")
}

// checkDeletable se evalúa dentro de la transacción de escritura, justo antes de guardar.
func checkDeletable(ctx context.Context, cats repository.CategoryRepository, products repository.ProductRepository, id string) error {
	children, err := cats.FindChildren(ctx, &id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return &domain.DeleteBlockedError{CategoryID: id, Reason: domain.ReasonHasChildren}
	}
	used, err := products.ExistsActiveByCategoryRef(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return &domain.DeleteBlockedError{CategoryID: id, Reason: domain.ReasonHasProducts}
	}
	return nil
}

func ensureUniqueSibling(ctx context.Context, cats repository.CategoryRepository, parentID *string, name, selfID string) error {
	siblings, err := cats.FindChildren(ctx, parentID)
	if err != nil {
		return err
	}
	key := taxonomy.NameKey(name)
	for _, s := range siblings {
		if s.ID != selfID && taxonomy.NameKey(s.Name) == key {
			return domain.ErrDuplicateSibling
		}
	}
	return nil
}

func uniqueSlug(ctx context.Context, cats repository.CategoryRepository, name, id string) (string, error) {
	s := slug.Generate(name)
	if s == "" {
		return slug.WithSuffix("", id), nil
	}
	existing, err := cats.FindBySlug(ctx, s)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return slug.WithSuffix(s, id), nil
	}
	return s, nil
}

func blockedMessage(reason domain.DeleteBlockReason) string {
	switch reason {
	case domain.ReasonHasChildren:
		return "no se puede eliminar: la categoría tiene subcategorías activas"
	case domain.ReasonHasProducts:
		return "no se puede eliminar: hay productos asociados a la categoría"
	default:
		return "no se puede eliminar la categoría"
	}
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}

func mergeMeta(base entity.CategoryMeta, in *dto.MetaRequest) entity.CategoryMeta {
	if in == nil {
		return base
	}
	if in.Sort != nil {
		base.Sort = *in.Sort
	}
	if in.Icon != nil {
		base.Icon = *in.Icon
	}
	return base
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		ParentID:  c.ParentID,
		IsActive:  c.IsActive,
		Meta:      dto.CategoryMeta{Sort: c.Meta.Sort, Icon: c.Meta.Icon},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toFlatItem(it *taxonomy.FlatItem) dto.CategoryFlatItem {
	out := dto.CategoryFlatItem{CategoryResponse: *toCategoryResponse(it.Category)}
	if it.Counts != nil {
		out.Counts = &dto.DirectCounts{Direct: it.Counts.Direct}
	}
	return out
}

func toNodes(nodes []*taxonomy.Node) []dto.CategoryNode {
	out := make([]dto.CategoryNode, 0, len(nodes))
	for _, n := range nodes {
		node := dto.CategoryNode{
			CategoryResponse: *toCategoryResponse(n.Category),
			Children:         toNodes(n.Children),
		}
		if n.Counts != nil {
			node.Counts = &dto.NodeCounts{Direct: n.Counts.Direct, Subtree: n.Counts.Subtree}
		}
		out = append(out, node)
	}
	return out
}
