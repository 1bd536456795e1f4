package entity

// Company (empresa) identificada por su NIT, único e inmutable después de creada.
type Company struct {
	NIT       string    `json:"nit"`
	Nombre    string    `json:"nombre"`
	Direccion string    `json:"direccion"`
	Telefono  string    `json:"telefono"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// CompanyKey clave de la empresa en colecciones locales.
func CompanyKey(c Company) string { return c.NIT }
