package taxonomy

import (
	"slices"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// Counts conteos de productos de un nodo. Direct viene del contador de referencias;
// Subtree = Direct + suma de Subtree de los hijos.
type Counts struct {
	Direct  int `json:"direct"`
	Subtree int `json:"subtree"`
}

// Node categoría con sus hijos ya enlazados y ordenados.
type Node struct {
	Category *entity.Category
	Children []*Node
	Counts   *Counts // nil si no se pidieron conteos
}

// FlatItem categoría de la lista plana; Counts sólo lleva Direct.
type FlatItem struct {
	Category *entity.Category
	Counts   *Counts
}

// Tree resultado de BuildTree. Orphans y CycleBreaks registran los ids que se
// degradaron a raíz (padre inexistente/inactivo o ciclo persistido).
type Tree struct {
	Roots       []*Node
	Orphans     []string
	CycleBreaks []string
}

// Size número de nodos del árbol.
func (t *Tree) Size() int {
	n := 0
	Walk(t.Roots, func(*Node, int) { n++ })
	return n
}

// BuildFlat proyecta las categorías activas ordenadas por (meta.sort, nombre).
// Con counts != nil cada ítem lleva Counts.Direct (0 si no hay entrada).
func BuildFlat(categories []*entity.Category, counts map[string]int) []*FlatItem {
	ord := newOrdering()
	items := make([]*FlatItem, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c == nil || !c.IsActive {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		it := &FlatItem{Category: c}
		if counts != nil {
			it.Counts = &Counts{Direct: counts[c.ID]}
		}
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b *FlatItem) int {
		return ord.compare(a.Category, b.Category)
	})
	return items
}

// BuildTree reconstruye el árbol anidado a partir del conjunto plano de categorías activas.
// Un padre que no resuelve en el índice convierte al nodo en raíz en vez de ocultar su subárbol.
// Con counts != nil agrega los conteos de subárbol en post-orden, después de enlazar y ordenar todo.
func BuildTree(categories []*entity.Category, counts map[string]int) *Tree {
	ord := newOrdering()
	withCounts := counts != nil

	index := make(map[string]*Node, len(categories))
	nodes := make([]*Node, 0, len(categories))
	for _, c := range categories {
		if c == nil || !c.IsActive {
			continue
		}
		if _, dup := index[c.ID]; dup {
			continue
		}
		n := &Node{Category: c, Children: []*Node{}}
		if withCounts {
			n.Counts = &Counts{Direct: counts[c.ID]}
		}
		index[c.ID] = n
		nodes = append(nodes, n)
	}
	// El enlace no debe depender del orden en que llegó la consulta.
	slices.SortFunc(nodes, ord.compareNodes)

	tree := &Tree{Roots: []*Node{}}
	parentOf := make(map[*Node]*Node, len(nodes))
	for _, n := range nodes {
		if n.Category.ParentID == nil {
			tree.Roots = append(tree.Roots, n)
			continue
		}
		p, ok := index[*n.Category.ParentID]
		if !ok {
			tree.Roots = append(tree.Roots, n)
			tree.Orphans = append(tree.Orphans, n.Category.ID)
			continue
		}
		if p == n {
			tree.Roots = append(tree.Roots, n)
			tree.CycleBreaks = append(tree.CycleBreaks, n.Category.ID)
			continue
		}
		p.Children = append(p.Children, n)
		parentOf[n] = p
	}

	breakCycles(tree, nodes, parentOf, ord)

	sortNodes(tree.Roots, ord)
	if withCounts {
		for _, r := range tree.Roots {
			aggregate(r)
		}
	}
	return tree
}

// breakCycles promueve a raíz un miembro de cada ciclo persistido para que todo nodo
// activo aparezca exactamente una vez y los recorridos terminen.
func breakCycles(tree *Tree, nodes []*Node, parentOf map[*Node]*Node, ord *ordering) {
	reached := make(map[*Node]bool, len(nodes))
	for _, r := range tree.Roots {
		markReached(r, reached)
	}
	if len(reached) == len(nodes) {
		return
	}
	for _, n := range nodes {
		if reached[n] {
			continue
		}
		// Subir hasta repetir un nodo: ese nodo está en el ciclo.
		seen := map[*Node]bool{}
		cur := n
		for !seen[cur] {
			seen[cur] = true
			cur = parentOf[cur]
		}
		member := cur
		for c := parentOf[cur]; c != cur; c = parentOf[c] {
			if ord.compareNodes(c, member) < 0 {
				member = c
			}
		}
		p := parentOf[member]
		p.Children = slices.DeleteFunc(p.Children, func(x *Node) bool { return x == member })
		delete(parentOf, member)
		tree.Roots = append(tree.Roots, member)
		tree.CycleBreaks = append(tree.CycleBreaks, member.Category.ID)
		markReached(member, reached)
	}
}

func markReached(root *Node, reached map[*Node]bool) {
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reached[n] {
			continue
		}
		reached[n] = true
		stack = append(stack, n.Children...)
	}
}

func sortNodes(list []*Node, ord *ordering) {
	slices.SortFunc(list, ord.compareNodes)
	for _, n := range list {
		sortNodes(n.Children, ord)
	}
}

// aggregate post-orden: primero los hijos, luego el nodo.
func aggregate(n *Node) int {
	sum := n.Counts.Direct
	for _, c := range n.Children {
		sum += aggregate(c)
	}
	n.Counts.Subtree = sum
	return sum
}

// Walk recorre el árbol en pre-orden indicando la profundidad (raíces = 0).
func Walk(roots []*Node, fn func(n *Node, depth int)) {
	var visit func(list []*Node, depth int)
	visit = func(list []*Node, depth int) {
		for _, n := range list {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(roots, 0)
}

// SortCategories ordena en sitio con el mismo comparador del árbol.
func SortCategories(list []*entity.Category) {
	ord := newOrdering()
	slices.SortFunc(list, ord.compare)
}
