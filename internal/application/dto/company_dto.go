package dto

import "strings"

// CompanyForm entrada del formulario de empresa (crear / editar).
type CompanyForm struct {
	NIT       string `form:"nit" json:"nit"`
	Nombre    string `form:"nombre" json:"nombre"`
	Direccion string `form:"direccion" json:"direccion"`
	Telefono  string `form:"telefono" json:"telefono"`
}

// Normalize recorta espacios de los bordes.
func (f CompanyForm) Normalize() CompanyForm {
	return CompanyForm{
		NIT:       strings.TrimSpace(f.NIT),
		Nombre:    strings.TrimSpace(f.Nombre),
		Direccion: strings.TrimSpace(f.Direccion),
		Telefono:  strings.TrimSpace(f.Telefono),
	}
}
