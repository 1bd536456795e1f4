package entity

import "github.com/shopspring/decimal"

// Monedas soportadas para los precios de producto (conjunto fijo).
const (
	CurrencyCOP = "COP"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// Currencies en el orden en que se muestran en formularios y tablas.
var Currencies = []string{CurrencyCOP, CurrencyUSD, CurrencyEUR}

// Price precio de un producto en una moneda.
type Price struct {
	ID     int64           `json:"id,omitempty"`
	Moneda string          `json:"moneda"`
	Precio decimal.Decimal `json:"precio"`
}

// Product (producto) identificado por su código, único e inmutable después de creado.
type Product struct {
	Codigo          string    `json:"codigo"`
	Nombre          string    `json:"nombre"`
	Caracteristicas string    `json:"caracteristicas"`
	Empresa         string    `json:"empresa,omitempty"` // NIT de la empresa propietaria, si aplica
	EmpresaNombre   string    `json:"empresa_nombre,omitempty"`
	Precios         []Price   `json:"precios"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       Timestamp `json:"created_at"`
	UpdatedAt       Timestamp `json:"updated_at"`
}

// ProductKey clave del producto en colecciones locales.
func ProductKey(p Product) string { return p.Codigo }

// PriceIn devuelve el precio en la moneda indicada, si existe.
func (p Product) PriceIn(moneda string) (decimal.Decimal, bool) {
	for _, pr := range p.Precios {
		if pr.Moneda == moneda {
			return pr.Precio, true
		}
	}
	return decimal.Zero, false
}
