package dto

import "strings"

// InventoryForm entrada del formulario de inventario. Cantidad se recibe como texto para
// distinguir "0" de un campo vacío.
type InventoryForm struct {
	Empresa  string `form:"empresa" json:"empresa"`
	Producto string `form:"producto" json:"producto"`
	Cantidad string `form:"cantidad" json:"cantidad"`
}

// Normalize recorta espacios de los bordes.
func (f InventoryForm) Normalize() InventoryForm {
	return InventoryForm{
		Empresa:  strings.TrimSpace(f.Empresa),
		Producto: strings.TrimSpace(f.Producto),
		Cantidad: strings.TrimSpace(f.Cantidad),
	}
}

// InventoryFilter filtros de la tabla de inventario: búsqueda libre y empresa exacta (NIT).
type InventoryFilter struct {
	Search  string `query:"q"`
	Empresa string `query:"empresa"`
}

// EmailForm destinatario del PDF de inventario y filtro opcional por empresa.
type EmailForm struct {
	Email   string `form:"email" json:"email"`
	Empresa string `form:"empresa" json:"empresa,omitempty"`
}
