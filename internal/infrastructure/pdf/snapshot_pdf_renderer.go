// Package pdf genera la versión imprimible del snapshot de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título                   │  Generado: fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Bodega | SKU | Producto | Cantidad                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: filas / unidades                                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

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

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/report"
)

var _ report.SnapshotRenderer = (*SnapshotRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// SnapshotRenderer implementa report.SnapshotRenderer usando Maroto v2.
type SnapshotRenderer struct {
	author string
}

// NewSnapshotRenderer construye el generador. author se graba en los metadatos del PDF.
func NewSnapshotRenderer(author string) *SnapshotRenderer {
	return &SnapshotRenderer{author: author}
}

// RenderSnapshot genera el PDF y devuelve sus bytes.
func (g *SnapshotRenderer) RenderSnapshot(
	_ context.Context,
	title string,
	generatedAt time.Time,
	rows []dto.SnapshotRowDTO,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(nonEmpty(g.author, "stock-ledger"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(rows) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, generatedAt time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.UTC().Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
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
		h("Bodega", 2, align.Left),
		h("SKU", 3, align.Left),
		h("Producto", 5, align.Left),
		h("Cantidad", 2, align.Right),
	)
}

// tableDetailRows: una fila por (bodega, variante). En vista agregada la bodega se muestra como "Todas".
func tableDetailRows(rows []dto.SnapshotRowDTO) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(r.WarehouseCode, "Todas"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(r.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(5).Add(text.New(r.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatQuantity(r.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(rows []dto.SnapshotRowDTO) core.Row {
	var units int64
	for _, r := range rows {
		units += r.Quantity
	}
	return row.New(10).Add(
		col.New(6),
		col.New(6).Add(
			text.New(fmt.Sprintf("Filas: %d   |   Unidades: %s", len(rows), formatQuantity(units)), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
			}),
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

// formatQuantity inserta puntos de miles. Ej: 25000 → "25.000", -1500 → "-1.500".
func formatQuantity(q int64) string {
	s := strconv.FormatInt(q, 10)
	sign := ""
	if q < 0 {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
