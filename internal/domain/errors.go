package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio de la jerarquía de categorías (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrValidation       = errors.New("entrada inválida")
	ErrDuplicateSibling = errors.New("ya existe una categoría con el mismo nombre en este nivel")
	ErrInvalidParent    = errors.New("la categoría padre no existe o está inactiva")
	ErrSelfParent       = errors.New("una categoría no puede ser su propio padre")
	ErrCycleDetected    = errors.New("jerarquía circular no permitida")
	ErrDeleteBlocked    = errors.New("no se puede eliminar la categoría")
)

// DeleteBlockReason código del motivo por el que se bloquea una baja.
type DeleteBlockReason string

const (
	ReasonHasChildren DeleteBlockReason = "HAS_CHILDREN"
	ReasonHasProducts DeleteBlockReason = "HAS_PRODUCTS"
	ReasonNotFound    DeleteBlockReason = "NOT_FOUND"
)

// DeleteBlockedError indica que la compuerta de baja rechazó la operación.
// errors.Is(err, ErrDeleteBlocked) es verdadero para cualquier motivo.
type DeleteBlockedError struct {
	CategoryID string
	Reason     DeleteBlockReason
}

func (e *DeleteBlockedError) Error() string {
	switch e.Reason {
	case ReasonHasChildren:
		return fmt.Sprintf("%s %s: tiene subcategorías activas", ErrDeleteBlocked.Error(), e.CategoryID)
	case ReasonHasProducts:
		return fmt.Sprintf("%s %s: hay productos asociados", ErrDeleteBlocked.Error(), e.CategoryID)
	default:
		return fmt.Sprintf("%s %s: %s", ErrDeleteBlocked.Error(), e.CategoryID, e.Reason)
	}
}

func (e *DeleteBlockedError) Unwrap() error { return ErrDeleteBlocked }
