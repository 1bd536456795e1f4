package dto

// ErrorResponse cuerpo de error HTTP para los endpoints JSON de la consola.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Flash aviso de una sola lectura mostrado como banner en la siguiente página.
type Flash struct {
	Kind    string `json:"kind"` // success | error | info
	Message string `json:"message"`
}
