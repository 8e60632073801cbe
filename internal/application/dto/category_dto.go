package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

// CategoryMeta metadatos de presentación de una categoría.
type CategoryMeta struct {
	Sort int    `json:"sort"`
	Icon string `json:"icon,omitempty"`
}

// MetaRequest parche de metadatos; sólo se reemplazan las claves presentes.
type MetaRequest struct {
	Sort *int    `json:"sort"`
	Icon *string `json:"icon" validate:"omitempty,max=64"`
}

// CreateCategoryRequest entrada para crear una categoría (raíz si ParentID es nil).
type CreateCategoryRequest struct {
	Name     string       `json:"name" validate:"required,max=120"`
	ParentID *string      `json:"parent_id" validate:"omitempty,uuid"`
	Meta     *MetaRequest `json:"meta"`
}

// OptionalID distingue entre clave ausente (Set=false) y null explícito (Set=true, Value=nil).
type OptionalID struct {
	Set   bool
	Value *string
}

// UnmarshalJSON sólo se invoca si la clave viene en el cuerpo.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// UpdateCategoryRequest parche de categoría. parent_id: null mueve a raíz; ausente no cambia.
type UpdateCategoryRequest struct {
	Name     *string      `json:"name" validate:"omitempty,max=120"`
	ParentID OptionalID   `json:"parent_id"`
	Meta     *MetaRequest `json:"meta"`
	IsActive *bool        `json:"is_active"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	ParentID  *string      `json:"parent_id"`
	IsActive  bool         `json:"is_active"`
	Meta      CategoryMeta `json:"meta"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// DirectCounts conteo directo en la lista plana.
type DirectCounts struct {
	Direct int `json:"direct"`
}

// NodeCounts conteos de un nodo del árbol.
type NodeCounts struct {
	Direct  int `json:"direct"`
	Subtree int `json:"subtree"`
}

// CategoryFlatItem categoría de la lista plana, con conteo directo opcional.
type CategoryFlatItem struct {
	CategoryResponse
	Counts *DirectCounts `json:"counts,omitempty"`
}

// CategoryNode nodo del árbol anidado.
type CategoryNode struct {
	CategoryResponse
	Children []CategoryNode `json:"children"`
	Counts   *NodeCounts    `json:"counts,omitempty"`
}

// CategoryFlatResponse lista plana (?flat=true y /children/:parentId).
type CategoryFlatResponse struct {
	Categories []CategoryFlatItem `json:"categories"`
}

// CategoryTreeResponse árbol anidado desde las raíces.
type CategoryTreeResponse struct {
	Tree []CategoryNode `json:"tree"`
}

// DeleteCategoryResponse resultado de la compuerta de baja.
type DeleteCategoryResponse struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}
