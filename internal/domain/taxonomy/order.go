package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// ordering comparador (meta.sort, nombre) con desempates hasta el id para que el orden sea total.
// collate.Collator no es seguro entre goroutines: crear uno por construcción.
type ordering struct {
	col *collate.Collator
}

func newOrdering() *ordering {
	return &ordering{col: collate.New(language.Und)}
}

func (o *ordering) compare(a, b *entity.Category) int {
	if a.Meta.Sort != b.Meta.Sort {
		if a.Meta.Sort < b.Meta.Sort {
			return -1
		}
		return 1
	}
	if c := o.col.CompareString(a.Name, b.Name); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func (o *ordering) compareNodes(a, b *Node) int {
	return o.compare(a.Category, b.Category)
}

// NameKey clave de unicidad entre hermanos: nombre sin espacios laterales y con
// plegado de mayúsculas Unicode ("Calzado" y "CALZADO" colisionan).
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}
