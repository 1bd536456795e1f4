package listing

import (
	"strings"

	"golang.org/x/text/cases"
)

// AnyContains true si algún campo contiene la búsqueda. Búsqueda vacía coincide con todo.
func AnyContains(query string, fields ...string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	fold := cases.Fold()
	q := fold.String(query)
	for _, f := range fields {
		if strings.Contains(fold.String(f), q) {
			return true
		}
	}
	return false
}
