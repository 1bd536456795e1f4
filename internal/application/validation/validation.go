// Package validation contiene los validadores de formularios de la consola.
// Son funciones puras: devuelven un domain.FieldErrors vacío cuando la entrada es válida
// y el llamador no debe contactar al backend si el mapa trae algún error.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

var (
	nitPattern   = regexp.MustCompile(`^\d{9,10}$`)
	phonePattern = regexp.MustCompile(`^\d{7,10}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	minNameLen     = 3
	minPasswordLen = 8
)

// ── Empresa ──────────────────────────────────────────────────────────────────

// ValidateCompany aplica las reglas de empresa: NIT de 9-10 dígitos, nombre de al menos
// 3 caracteres, dirección no vacía y teléfono de 7-10 dígitos.
func ValidateCompany(f dto.CompanyForm) domain.FieldErrors {
	errs := domain.FieldErrors{}

	switch {
	case f.NIT == "":
		errs.Add("nit", "El NIT es requerido")
	case !nitPattern.MatchString(f.NIT):
		errs.Add("nit", "El NIT debe tener 9 o 10 dígitos")
	}

	switch {
	case f.Nombre == "":
		errs.Add("nombre", "El nombre es requerido")
	case utf8.RuneCountInString(f.Nombre) < minNameLen:
		errs.Add("nombre", "El nombre debe tener al menos 3 caracteres")
	}

	if strings.TrimSpace(f.Direccion) == "" {
		errs.Add("direccion", "La dirección es requerida")
	}

	switch {
	case f.Telefono == "":
		errs.Add("telefono", "El teléfono es requerido")
	case !phonePattern.MatchString(f.Telefono):
		errs.Add("telefono", "El teléfono debe tener entre 7 y 10 dígitos")
	}
	return errs
}

// ── Producto ─────────────────────────────────────────────────────────────────

// PriceField clave del error de precio para una moneda (precio_COP, precio_USD, precio_EUR).
func PriceField(moneda string) string { return "precio_" + moneda }

// ValidateProduct aplica las reglas de producto. Un precio presente pero ilegible o <= 0
// produce su propio error por moneda, independiente de la regla "al menos un precio".
func ValidateProduct(f dto.ProductForm) domain.FieldErrors {
	errs := domain.FieldErrors{}

	switch {
	case f.Codigo == "":
		errs.Add("codigo", "El código es requerido")
	case utf8.RuneCountInString(f.Codigo) < minNameLen:
		errs.Add("codigo", "El código debe tener al menos 3 caracteres")
	}

	switch {
	case f.Nombre == "":
		errs.Add("nombre", "El nombre es requerido")
	case utf8.RuneCountInString(f.Nombre) < minNameLen:
		errs.Add("nombre", "El nombre debe tener al menos 3 caracteres")
	}

	if strings.TrimSpace(f.Caracteristicas) == "" {
		errs.Add("caracteristicas", "Las características son requeridas")
	}

	valid := 0
	for _, p := range f.Prices() {
		if p.Precio == "" {
			continue
		}
		if _, ok := parsePrice(p.Precio); !ok {
			errs.Add(PriceField(p.Moneda), "Precio inválido")
			continue
		}
		valid++
	}
	if valid == 0 {
		errs.Add("precios", "Debe ingresar al menos un precio")
	}
	return errs
}

// ProductPrices convierte los precios presentes y válidos del formulario. Solo tiene sentido
// después de ValidateProduct sin errores.
func ProductPrices(f dto.ProductForm) []entity.Price {
	out := make([]entity.Price, 0, len(entity.Currencies))
	for _, p := range f.Prices() {
		if d, ok := parsePrice(p.Precio); ok {
			out = append(out, entity.Price{Moneda: p.Moneda, Precio: d})
		}
	}
	return out
}

func parsePrice(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// ── Inventario ───────────────────────────────────────────────────────────────

// ValidateInventory exige empresa, producto y una cantidad entera no negativa.
// "0" es una cantidad válida; solo el campo vacío cuenta como ausente.
func ValidateInventory(f dto.InventoryForm) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if f.Empresa == "" {
		errs.Add("empresa", "La empresa es requerida")
	}
	if f.Producto == "" {
		errs.Add("producto", "El producto es requerido")
	}
	if f.Cantidad == "" {
		errs.Add("cantidad", "La cantidad es requerida")
		return errs
	}
	n, err := strconv.Atoi(f.Cantidad)
	switch {
	case err != nil:
		errs.Add("cantidad", "La cantidad debe ser un número entero")
	case n < 0:
		errs.Add("cantidad", "La cantidad no puede ser negativa")
	}
	return errs
}

// Quantity cantidad ya validada del formulario.
func Quantity(f dto.InventoryForm) int {
	n, _ := strconv.Atoi(f.Cantidad)
	return n
}

// ── Autenticación ────────────────────────────────────────────────────────────

func validateEmail(errs domain.FieldErrors, field, email string) {
	switch {
	case email == "":
		errs.Add(field, "El email es requerido")
	case !emailPattern.MatchString(email):
		errs.Add(field, "Email inválido")
	}
}

// ValidateLogin email con forma local@dominio y contraseña no vacía.
func ValidateLogin(f dto.LoginForm) domain.FieldErrors {
	errs := domain.FieldErrors{}
	validateEmail(errs, "email", strings.TrimSpace(f.Email))
	if f.Password == "" {
		errs.Add("password", "La contraseña es requerida")
	}
	return errs
}

// ValidateRegister reglas del formulario de registro.
func ValidateRegister(f dto.RegisterForm) domain.FieldErrors {
	errs := domain.FieldErrors{}
	validateEmail(errs, "email", strings.TrimSpace(f.Email))

	switch {
	case f.Username == "":
		errs.Add("username", "El nombre de usuario es requerido")
	case utf8.RuneCountInString(f.Username) < minNameLen:
		errs.Add("username", "Mínimo 3 caracteres")
	}

	switch {
	case f.Password == "":
		errs.Add("password", "La contraseña es requerida")
	case utf8.RuneCountInString(f.Password) < minPasswordLen:
		errs.Add("password", "Mínimo 8 caracteres")
	}

	if f.Password != f.ConfirmPassword {
		errs.Add("confirm_password", "Las contraseñas no coinciden")
	}
	if strings.TrimSpace(f.FirstName) == "" {
		errs.Add("first_name", "El nombre es requerido")
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs.Add("last_name", "El apellido es requerido")
	}
	return errs
}

// ValidateEmailRecipient destinatario del envío de PDF de inventario.
func ValidateEmailRecipient(f dto.EmailForm) domain.FieldErrors {
	errs := domain.FieldErrors{}
	email := strings.TrimSpace(f.Email)
	if email == "" {
		errs.Add("email", "Por favor ingrese un email")
		return errs
	}
	validateEmail(errs, "email", email)
	return errs
}
