package dto

import "strings"

// ProductForm entrada del formulario de producto. Los precios llegan como texto por moneda;
// vacío significa "sin precio en esa moneda".
type ProductForm struct {
	Codigo          string `form:"codigo" json:"codigo"`
	Nombre          string `form:"nombre" json:"nombre"`
	Caracteristicas string `form:"caracteristicas" json:"caracteristicas"`
	PrecioCOP       string `form:"precio_COP" json:"precio_COP"`
	PrecioUSD       string `form:"precio_USD" json:"precio_USD"`
	PrecioEUR       string `form:"precio_EUR" json:"precio_EUR"`
}

// Prices texto de precio por moneda, en el orden fijo COP, USD, EUR.
func (f ProductForm) Prices() []PriceInput {
	return []PriceInput{
		{Moneda: "COP", Precio: strings.TrimSpace(f.PrecioCOP)},
		{Moneda: "USD", Precio: strings.TrimSpace(f.PrecioUSD)},
		{Moneda: "EUR", Precio: strings.TrimSpace(f.PrecioEUR)},
	}
}

// PriceInput precio sin interpretar de una moneda.
type PriceInput struct {
	Moneda string
	Precio string
}

// Normalize recorta espacios de los bordes en todos los campos.
func (f ProductForm) Normalize() ProductForm {
	return ProductForm{
		Codigo:          strings.TrimSpace(f.Codigo),
		Nombre:          strings.TrimSpace(f.Nombre),
		Caracteristicas: strings.TrimSpace(f.Caracteristicas),
		PrecioCOP:       strings.TrimSpace(f.PrecioCOP),
		PrecioUSD:       strings.TrimSpace(f.PrecioUSD),
		PrecioEUR:       strings.TrimSpace(f.PrecioEUR),
	}
}
