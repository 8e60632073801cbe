package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/memory"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
	"github.com/jhoicas/Catalogo-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc       *usecase.CategoryUseCase
	cats     *memory.CategoryStore
	products *memory.ProductStore
	metrics  *metrics.Collector
}

func newFixture() *fixture {
	cats := memory.NewCategoryStore()
	products := memory.NewProductStore()
	m := metrics.NewCollector("test")
	uc := usecase.NewCategoryUseCase(cats, products, memory.NewTxRunner(cats, products), logger.Nop(), m)
	return &fixture{uc: uc, cats: cats, products: products, metrics: m}
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }
func boolp(b bool) *bool    { return &b }

func (f *fixture) create(t *testing.T, name string, parent *string) string {
	t.Helper()
	out, err := f.uc.Create(context.Background(), dto.CreateCategoryRequest{Name: name, ParentID: parent})
	require.NoError(t, err, "crear %q", name)
	return out.ID
}

func (f *fixture) product(t *testing.T, id string, category, subcategory *string) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), &entity.Product{
		ID: id, Name: id, SKU: id, CategoryID: category, SubcategoryID: subcategory, IsActive: true,
	}))
}

func moveTo(parent *string) dto.UpdateCategoryRequest {
	return dto.UpdateCategoryRequest{ParentID: dto.OptionalID{Set: true, Value: parent}}
}

func findNode(nodes []dto.CategoryNode, id string) *dto.CategoryNode {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
		if n := findNode(nodes[i].Children, id); n != nil {
			return n
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_RaizEHijo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	root, err := f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "  Electrónica ", Meta: &dto.MetaRequest{Sort: intp(3), Icon: strp("bolt")}})
	require.NoError(t, err)
	assert.NotEmpty(t, root.ID)
	assert.Equal(t, "Electrónica", root.Name, "el nombre se guarda recortado")
	assert.Equal(t, "electronica", root.Slug)
	assert.True(t, root.IsActive)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, dto.CategoryMeta{Sort: 3, Icon: "bolt"}, root.Meta)

	child, err := f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "Audio", ParentID: &root.ID})
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)
	assert.Equal(t, 0, child.Meta.Sort)
}

func TestCreate_NombreVacio(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Create(context.Background(), dto.CreateCategoryRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreate_HermanoDuplicadoSinDistinguirMayusculas(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "Ropa", nil)
	f.create(t, "Calzado", &a)

	_, err := f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "CALZADO ", ParentID: &a})
	assert.ErrorIs(t, err, domain.ErrDuplicateSibling)

	_, err = f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "ropa"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSibling, "también entre raíces")

	// Mismo nombre con otro padre sí se permite.
	_, err = f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "Calzado"})
	assert.NoError(t, err)
}

func TestCreate_HermanoInactivoNoBloquea(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.create(t, "Temporada", nil)
	_, err := f.uc.Delete(ctx, id)
	require.NoError(t, err)

	again, err := f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "Temporada"})
	require.NoError(t, err)
	assert.NotEqual(t, "temporada", again.Slug, "el slug repetido se desambigua")
	assert.Contains(t, again.Slug, "temporada-")
}

func TestCreate_PadreInvalido(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "X", ParentID: strp("no-existe")})
	assert.ErrorIs(t, err, domain.ErrInvalidParent)

	p := f.create(t, "Padre", nil)
	_, err = f.uc.Delete(ctx, p)
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "X", ParentID: &p})
	assert.ErrorIs(t, err, domain.ErrInvalidParent, "un padre inactivo no es válido")

	empty := ""
	out, err := f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "X", ParentID: &empty})
	require.NoError(t, err)
	assert.Nil(t, out.ParentID, "parent_id vacío equivale a raíz")
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdate_PropioPadre(t *testing.T) {
	f := newFixture()
	a := f.create(t, "A", nil)
	_, err := f.uc.Update(context.Background(), a, moveTo(&a))
	assert.ErrorIs(t, err, domain.ErrSelfParent)
}

func TestUpdate_CicloDetectado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)
	b := f.create(t, "B", &a)
	c := f.create(t, "C", &b)

	_, err := f.uc.Update(ctx, a, moveTo(&c))
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
	_, err = f.uc.Update(ctx, a, moveTo(&b))
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	stored, _ := f.cats.FindByID(ctx, a)
	assert.Nil(t, stored.ParentID, "nada se escribe ante un rechazo")

	// Mover hacia abajo en otra rama sí es válido.
	d := f.create(t, "D", nil)
	moved, err := f.uc.Update(ctx, c, moveTo(&d))
	require.NoError(t, err)
	assert.Equal(t, d, *moved.ParentID)
}

func TestUpdate_CadenaSiempreTerminaEnRaiz(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ids := []string{f.create(t, "N0", nil)}
	for i := 1; i < 6; i++ {
		ids = append(ids, f.create(t, "N"+string(rune('0'+i)), &ids[i-1]))
	}
	// Intentar cerrar el ciclo desde cualquier ancestro hacia cualquier descendiente.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			_, err := f.uc.Update(ctx, ids[i], moveTo(&ids[j]))
			assert.ErrorIs(t, err, domain.ErrCycleDetected)
		}
	}

	all, err := f.cats.FindActive(ctx)
	require.NoError(t, err)
	byID := map[string]*entity.Category{}
	for _, c := range all {
		byID[c.ID] = c
	}
	for _, c := range all {
		steps := 0
		for cur := c; cur.ParentID != nil; cur = byID[*cur.ParentID] {
			steps++
			require.LessOrEqual(t, steps, len(all))
		}
	}
}

func TestUpdate_MoverARaiz(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)
	b := f.create(t, "B", &a)

	out, err := f.uc.Update(ctx, b, moveTo(nil))
	require.NoError(t, err)
	assert.Nil(t, out.ParentID)

	// Sin parent_id en el parche el padre no cambia.
	c := f.create(t, "C", &a)
	out, err = f.uc.Update(ctx, c, dto.UpdateCategoryRequest{Name: strp("C2")})
	require.NoError(t, err)
	require.NotNil(t, out.ParentID)
	assert.Equal(t, a, *out.ParentID)
}

func TestUpdate_RenombrarReexigeUnicidad(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)
	x := f.create(t, "Camisas", &a)
	y := f.create(t, "Pantalones", &a)

	_, err := f.uc.Update(ctx, y, dto.UpdateCategoryRequest{Name: strp("camisas")})
	assert.ErrorIs(t, err, domain.ErrDuplicateSibling)

	// Cambiar sólo mayúsculas de sí misma no choca consigo misma.
	out, err := f.uc.Update(ctx, x, dto.UpdateCategoryRequest{Name: strp("CAMISAS")})
	require.NoError(t, err)
	assert.Equal(t, "CAMISAS", out.Name)
	assert.Equal(t, "camisas", out.Slug, "el slug no se re-deriva")

	_, err = f.uc.Update(ctx, y, dto.UpdateCategoryRequest{Name: strp("  ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdate_MoverReexigeUnicidad(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)
	b := f.create(t, "B", nil)
	f.create(t, "Ofertas", &a)
	o := f.create(t, "Ofertas", &b)

	_, err := f.uc.Update(ctx, o, moveTo(&a))
	assert.ErrorIs(t, err, domain.ErrDuplicateSibling)
}

func TestUpdate_PadreInvalidoYNoEncontrado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)

	_, err := f.uc.Update(ctx, a, moveTo(strp("fantasma")))
	assert.ErrorIs(t, err, domain.ErrInvalidParent)

	_, err = f.uc.Update(ctx, "fantasma", dto.UpdateCategoryRequest{Name: strp("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_MetaSeMezclaSuperficialmente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	out, err := f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "A", Meta: &dto.MetaRequest{Sort: intp(4), Icon: strp("star")}})
	require.NoError(t, err)

	upd, err := f.uc.Update(ctx, out.ID, dto.UpdateCategoryRequest{Meta: &dto.MetaRequest{Sort: intp(9)}})
	require.NoError(t, err)
	assert.Equal(t, dto.CategoryMeta{Sort: 9, Icon: "star"}, upd.Meta)
}

func TestUpdate_DesactivarPasaPorLaCompuerta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)
	b := f.create(t, "B", &a)

	_, err := f.uc.Update(ctx, a, dto.UpdateCategoryRequest{IsActive: boolp(false)})
	var blocked *domain.DeleteBlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, domain.ReasonHasChildren, blocked.Reason)

	out, err := f.uc.Update(ctx, b, dto.UpdateCategoryRequest{IsActive: boolp(false)})
	require.NoError(t, err)
	assert.False(t, out.IsActive)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────────────────────

func TestDelete_Estados(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)
	b := f.create(t, "B", &a)
	c := f.create(t, "C", &b)
	f.product(t, "p1", &b, nil)
	f.product(t, "p2", &a, &b)
	f.product(t, "p3", nil, &c)

	// B tiene hijos y productos: gana HAS_CHILDREN.
	res, err := f.uc.Delete(ctx, b)
	assert.ErrorIs(t, err, domain.ErrDeleteBlocked)
	require.NotNil(t, res)
	assert.False(t, res.Applied)
	assert.Equal(t, "HAS_CHILDREN", res.Reason)
	stored, _ := f.cats.FindByID(ctx, b)
	assert.True(t, stored.IsActive)

	// C sin hijos pero con producto.
	res, err = f.uc.Delete(ctx, c)
	assert.ErrorIs(t, err, domain.ErrDeleteBlocked)
	assert.Equal(t, "HAS_PRODUCTS", res.Reason)

	// Al desactivar el producto, C se puede dar de baja.
	f.products.SetActive("p3", false)
	res, err = f.uc.Delete(ctx, c)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	stored, _ = f.cats.FindByID(ctx, c)
	require.NotNil(t, stored, "la baja es lógica")
	assert.False(t, stored.IsActive)

	// Una segunda baja ya no encuentra la categoría.
	res, err = f.uc.Delete(ctx, c)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "NOT_FOUND", res.Reason)
}

func TestDelete_NoEncontrada(t *testing.T) {
	f := newFixture()
	res, err := f.uc.Delete(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, errors.Is(err, domain.ErrDeleteBlocked))
	assert.Equal(t, "NOT_FOUND", res.Reason)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestListTree_EscenarioABC(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)
	b := f.create(t, "B", &a)
	c := f.create(t, "C", &b)
	f.product(t, "p1", &b, nil)
	f.product(t, "p2", nil, &b)
	f.product(t, "p3", &c, nil)

	out, err := f.uc.ListTree(ctx, true)
	require.NoError(t, err)
	require.Len(t, out.Tree, 1)

	assert.Equal(t, dto.NodeCounts{Direct: 0, Subtree: 3}, *findNode(out.Tree, a).Counts)
	assert.Equal(t, dto.NodeCounts{Direct: 2, Subtree: 3}, *findNode(out.Tree, b).Counts)
	assert.Equal(t, dto.NodeCounts{Direct: 1, Subtree: 1}, *findNode(out.Tree, c).Counts)

	res, err := f.uc.Delete(ctx, b)
	assert.ErrorIs(t, err, domain.ErrDeleteBlocked)
	assert.Equal(t, "HAS_CHILDREN", res.Reason)

	plain, err := f.uc.ListTree(ctx, false)
	require.NoError(t, err)
	assert.Nil(t, plain.Tree[0].Counts)
}

func TestListTree_BajaInvisibleYHijosComoRaiz(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)
	b := f.create(t, "B", &a)

	// Forzar el estado heredado: padre inactivo con hijo activo.
	stored, _ := f.cats.FindByID(ctx, a)
	stored.IsActive = false
	require.NoError(t, f.cats.Save(ctx, stored))

	tree, err := f.uc.ListTree(ctx, true)
	require.NoError(t, err)
	require.Len(t, tree.Tree, 1)
	assert.Equal(t, b, tree.Tree[0].ID)
	assert.Nil(t, findNode(tree.Tree, a))

	flat, err := f.uc.ListFlat(ctx, false)
	require.NoError(t, err)
	require.Len(t, flat.Categories, 1)
	assert.Equal(t, b, flat.Categories[0].ID)
}

func TestListFlat_ConConteosDirectos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "Zeta", nil)
	b := f.create(t, "Alfa", nil)
	f.product(t, "p1", &a, nil)

	out, err := f.uc.ListFlat(ctx, true)
	require.NoError(t, err)
	require.Len(t, out.Categories, 2)
	assert.Equal(t, b, out.Categories[0].ID)
	assert.Equal(t, 0, out.Categories[0].Counts.Direct)
	assert.Equal(t, 1, out.Categories[1].Counts.Direct)
}

func TestListChildren_Ordenados(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)
	f.create(t, "b", &a)
	_, err := f.uc.Create(ctx, dto.CreateCategoryRequest{Name: "Primero", ParentID: &a, Meta: &dto.MetaRequest{Sort: intp(-1)}})
	require.NoError(t, err)
	f.create(t, "a", &a)

	out, err := f.uc.ListChildren(ctx, a)
	require.NoError(t, err)
	var names []string
	for _, c := range out.Categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Primero", "a", "b"}, names)
}

func TestGetByID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "A", nil)

	out, err := f.uc.GetByID(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "A", out.Name)

	_, err = f.uc.GetByID(ctx, "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
