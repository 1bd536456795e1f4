package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/validation"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
)

// companyRow fila de empresas.csv.
type companyRow struct {
	NIT       string `csv:"nit"`
	Nombre    string `csv:"nombre"`
	Direccion string `csv:"direccion"`
	Telefono  string `csv:"telefono"`
}

// productRow fila de productos.csv. Los precios vacíos se omiten.
type productRow struct {
	Codigo          string `csv:"codigo"`
	Nombre          string `csv:"nombre"`
	Caracteristicas string `csv:"caracteristicas"`
	PrecioCOP       string `csv:"precio_cop"`
	PrecioUSD       string `csv:"precio_usd"`
	PrecioEUR       string `csv:"precio_eur"`
}

// failedRow fila rechazada; Row es 1-based contando el encabezado.
type failedRow struct {
	Row   int
	Key   string
	Error string
}

// result resumen de una carga.
type result struct {
	Created int
	Failed  []failedRow
}

// decodeRows lee el CSV completo. encoding "latin1" convierte desde ISO-8859-1.
func decodeRows[T any](r io.Reader, encoding string) ([]T, error) {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8":
	case "latin1", "iso-8859-1", "iso8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}
	var rows []T
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	return rows, nil
}

// loadCompanies valida cada fila con las reglas del formulario y crea las válidas.
func loadCompanies(ctx context.Context, repo repository.CompanyRepository, token string, rows []companyRow) result {
	var res result
	for i, r := range rows {
		f := dto.CompanyForm{NIT: r.NIT, Nombre: r.Nombre, Direccion: r.Direccion, Telefono: r.Telefono}.Normalize()
		if fe := validation.ValidateCompany(f); !fe.Empty() {
			res.Failed = append(res.Failed, failedRow{Row: i + 2, Key: f.NIT, Error: fe.Error()})
			continue
		}
		e := entity.Company{NIT: f.NIT, Nombre: f.Nombre, Direccion: f.Direccion, Telefono: f.Telefono}
		if _, err := repo.Create(ctx, token, e); err != nil {
			res.Failed = append(res.Failed, failedRow{Row: i + 2, Key: f.NIT, Error: describe(err)})
			continue
		}
		res.Created++
	}
	return res
}

// loadProducts igual que loadCompanies para productos.
func loadProducts(ctx context.Context, repo repository.ProductRepository, token string, rows []productRow) result {
	var res result
	for i, r := range rows {
		f := dto.ProductForm{
			Codigo: r.Codigo, Nombre: r.Nombre, Caracteristicas: r.Caracteristicas,
			PrecioCOP: r.PrecioCOP, PrecioUSD: r.PrecioUSD, PrecioEUR: r.PrecioEUR,
		}.Normalize()
		if fe := validation.ValidateProduct(f); !fe.Empty() {
			res.Failed = append(res.Failed, failedRow{Row: i + 2, Key: f.Codigo, Error: fe.Error()})
			continue
		}
		p := entity.Product{
			Codigo: f.Codigo, Nombre: f.Nombre, Caracteristicas: f.Caracteristicas,
			Precios: validation.ProductPrices(f),
		}
		if _, err := repo.Create(ctx, token, p); err != nil {
			res.Failed = append(res.Failed, failedRow{Row: i + 2, Key: f.Codigo, Error: describe(err)})
			continue
		}
		res.Created++
	}
	return res
}

func describe(err error) string {
	if fe, ok := domain.AsFieldErrors(err); ok {
		return fe.Error()
	}
	return domain.MessageOr(err, err.Error())
}
