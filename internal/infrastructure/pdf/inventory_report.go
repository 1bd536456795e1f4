// Package pdf genera localmente el reporte de inventario de la vista filtrada actual.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                │  Fecha de generación        │
//	│  Filtro aplicado + usuario                                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Empresa | Código | Producto | Cantidad | Estado      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Total de registros / Unidades / Agotados           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 176, Green: 0, Blue: 32}
	colorWarning = &props.Color{Red: 191, Green: 110, Blue: 0}
)

var levelLabel = map[entity.StockLevel]string{
	entity.StockDepleted: "Agotado",
	entity.StockLow:      "Bajo",
	entity.StockNormal:   "Normal",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// InventoryReportGenerator implementa usecase.ReportGenerator usando Maroto v2.
type InventoryReportGenerator struct {
	author string
}

// NewInventoryReportGenerator construye el generador; author queda en los metadatos del PDF.
func NewInventoryReportGenerator(author string) *InventoryReportGenerator {
	return &InventoryReportGenerator{author: author}
}

// InventoryReport genera el PDF y devuelve sus bytes.
func (g *InventoryReportGenerator) InventoryReport(ctx context.Context, r usecase.InventoryReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(r.Title, true)
	if g.author != "" {
		b = b.WithAuthor(g.author, true)
	}
	m := maroto.New(b.Build())

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(tableRows(r.Records)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(r.Records))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(r usecase.InventoryReport) core.Row {
	by := ""
	if r.GeneratedBy != "" {
		by = "   |   Generado por: " + r.GeneratedBy
	}
	return row.New(20).Add(
		col.New(8).Add(
			text.New(r.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Filtro: "+nonEmpty(r.Filter, "Sin filtros")+by, props.Text{
				Size: 8, Top: 10, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Fecha de generación", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Empresa", 3, align.Left),
		h("Código", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Cantidad", 2, align.Right),
		h("Estado", 2, align.Center),
	)
}

// tableRows una fila por registro; sin registros, una fila con el aviso.
func tableRows(records []entity.InventoryRecord) []core.Row {
	if len(records) == 0 {
		return []core.Row{row.New(10).Add(col.New(12).Add(
			text.New("No hay registros para el filtro aplicado", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		))}
	}
	out := make([]core.Row, 0, len(records))
	for _, rec := range records {
		level := rec.Level()
		levelText := props.Text{Size: 8, Align: align.Center, Top: 1}
		switch level {
		case entity.StockDepleted:
			levelText.Color, levelText.Style = colorDanger, fontstyle.Bold
		case entity.StockLow:
			levelText.Color = colorWarning
		}
		out = append(out, row.New(7).Add(
			col.New(3).Add(text.New(nonEmpty(rec.EmpresaNombre, rec.Empresa), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(rec.ProductoCodigo, rec.Producto), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(nonEmpty(rec.ProductoNombre, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatThousands(int64(rec.Cantidad)), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(levelLabel[level], levelText)),
		))
	}
	return out
}

func summaryRow(records []entity.InventoryRecord) core.Row {
	var units int64
	depleted := 0
	for _, rec := range records {
		units += int64(rec.Cantidad)
		if rec.Level() == entity.StockDepleted {
			depleted++
		}
	}
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(4).Add(
			label("Total de registros:", 1),
			label("Unidades totales:", 7),
			label("Registros agotados:", 13),
		),
		col.New(2).Add(
			value(strconv.Itoa(len(records)), 1),
			value(formatThousands(units), 7),
			value(strconv.Itoa(depleted), 13),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatThousands inserta puntos de miles. Ej: 25000 → "25.000", -1000000 → "-1.000.000".
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	l := len(s)
	if l <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, l+l/3)
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
