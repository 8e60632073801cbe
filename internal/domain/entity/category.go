package entity

import "time"

// Category nodo de la taxonomía de productos. Se persiste plano (ParentID) y el árbol
// se reconstruye en cada lectura.
type Category struct {
	ID        string
	Name      string
	Slug      string  // se deriva una sola vez al crear
	ParentID  *string // nil si es raíz
	IsActive  bool    // false = baja lógica
	Meta      CategoryMeta
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryMeta datos de presentación. Sort ordena entre hermanos (0 por defecto).
type CategoryMeta struct {
	Sort int    `json:"sort"`
	Icon string `json:"icon,omitempty"`
}

// IsRoot indica si la categoría no tiene padre.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// ParentKey devuelve el id del padre o "" para raíces (útil como clave de mapa).
func (c *Category) ParentKey() string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}

// Clone copia profunda para que los adaptadores en memoria no compartan punteros.
func (c *Category) Clone() *Category {
	if c == nil {
		return nil
	}
	cp := *c
	if c.ParentID != nil {
		p := *c.ParentID
		cp.ParentID = &p
	}
	return &cp
}
