package usecase

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

var displayLocale = language.MustParse("es-CO")

// currencySymbol símbolo con el que se muestra cada moneda en las tablas.
var currencySymbol = map[string]string{
	entity.CurrencyCOP: "$",
	entity.CurrencyUSD: "$",
	entity.CurrencyEUR: "€",
}

// FormatAmount formatea un importe con separadores es-CO y dos decimales.
func FormatAmount(d decimal.Decimal) string {
	p := message.NewPrinter(displayLocale)
	return p.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// FormatPrice precio de un producto en una moneda, o "-" si no lo tiene.
func FormatPrice(p entity.Product, moneda string) string {
	d, ok := p.PriceIn(moneda)
	if !ok {
		return "-"
	}
	return currencySymbol[moneda] + FormatAmount(d)
}

// FormatCount entero con separadores de miles es-CO.
func FormatCount(n int64) string {
	return message.NewPrinter(displayLocale).Sprintf("%d", n)
}
