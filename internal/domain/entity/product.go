package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product referencia externa de producto. La jerarquía sólo consume CategoryID,
// SubcategoryID e IsActive para conteos y para la compuerta de baja.
type Product struct {
	ID            string
	SKU           string
	Name          string
	Price         decimal.Decimal
	CategoryID    *string
	SubcategoryID *string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// References indica si el producto apunta a la categoría como categoría o subcategoría.
func (p *Product) References(categoryID string) bool {
	return (p.CategoryID != nil && *p.CategoryID == categoryID) ||
		(p.SubcategoryID != nil && *p.SubcategoryID == categoryID)
}
