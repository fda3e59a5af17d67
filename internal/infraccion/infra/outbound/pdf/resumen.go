// Adaptador outbound de generación de PDFs: el resumen tabular del lote y
// el combinado de actas individuales.
package pdf

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/seguridadvial/actas/internal/infraccion/domain"
)

// Página A4 en puntos.
const (
	anchoPagina  = 595.28
	altoPagina   = 841.89
	margen       = 40.0
	tamTitulo    = 14.0
	tamTexto     = 10.0
	altoFila     = 18.0
	altoCabecera = 20.0
	separacion   = 6.0
)

// Columnas: Nro de acta | Fecha de labrado | Dominio | Nombre del titular | DNI
// (suman ~515, el ancho útil de la página)
var anchosCol = [5]float64{95, 95, 85, 175, 65}

var cabeceras = [5]string{
	"Nro de acta",
	"Fecha de labrado",
	"Dominio",
	"Nombre del titular",
	"DNI",
}

// GeneradorResumenPDF genera el PDF resumen de un lote de actas notificadas.
type GeneradorResumenPDF struct{}

// Verificación estática
var _ domain.GeneradorResumen = GeneradorResumenPDF{}

func NewGeneradorResumen() GeneradorResumenPDF {
	return GeneradorResumenPDF{}
}

// Generar escribe en ruta un documento paginado: título, subtítulo con la
// fecha de notificación, línea informativa, total y la tabla de actas.
// Cuando una fila (o la cabecera más la primera fila) no entra por encima
// del margen inferior se abre una página nueva y se redibuja la cabecera.
func (GeneradorResumenPDF) Generar(filas []domain.FilaResumen, ruta string, opts domain.OpcionesResumen) error {
	doc := gofpdf.New("P", "pt", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetAutoPageBreak(false, 0)
	doc.SetTextColor(0, 0, 0)
	doc.AddPage()

	y := margen

	texto := func(s string, x, yBase float64, negrita bool, tam float64) {
		estilo := ""
		if negrita {
			estilo = "B"
		}
		doc.SetFont("Helvetica", estilo, tam)
		doc.Text(x, yBase, tr(s))
	}

	// Título y subtítulo
	y += tamTitulo
	texto("Resumen de Actas Notificadas", margen, y, true, tamTitulo)
	y += separacion + tamTexto
	texto(fmt.Sprintf("Resumen de actas por exceso de velocidad notificadas el día %s", aFechaISO(opts.FechaNotificacion)), margen, y, false, tamTexto)
	y += separacion + tamTexto

	// Textos informativos
	texto("Puede observar cada acta detallada en el PDF COMBINADO.", margen, y, false, tamTexto)
	y += 2 + tamTexto
	texto(fmt.Sprintf("Total de actas notificadas: %d", len(filas)), margen, y, true, tamTexto)
	y += separacion + 4

	dibujarCabecera := func() {
		// Si no entran cabecera + al menos una fila, salto de página
		if y+altoCabecera+altoFila > altoPagina-margen {
			doc.AddPage()
			y = margen
		}
		x := margen
		for i, h := range cabeceras {
			texto(truncarConElipsis(doc, tr, h, anchosCol[i]), x+2, y+12, true, tamTexto)
			x += anchosCol[i]
		}
		y += altoCabecera
	}

	dibujarFila := func(cols [5]string) {
		// Evita cortar filas contra el margen inferior
		if y+altoFila > altoPagina-margen {
			doc.AddPage()
			y = margen
			dibujarCabecera()
		}
		x := margen
		for i, c := range cols {
			texto(truncarConElipsis(doc, tr, c, anchosCol[i]), x+2, y+12, false, tamTexto)
			x += anchosCol[i]
		}
		y += altoFila
	}

	dibujarCabecera()

	for _, f := range filas {
		dibujarFila([5]string{
			f.NroActa,
			aFechaISO(f.FechaLabrado),
			f.Dominio,
			f.Titular,
			f.DNI,
		})
	}

	return doc.OutputFileAndClose(ruta)
}

const elipsis = "…"

// truncarConElipsis recorta el texto de a un caracter hasta que, junto con
// la elipsis, entre en el ancho de columna (con 4pt de aire). En el caso
// patológico en que ni un caracter entra, colapsa a la elipsis sola.
func truncarConElipsis(doc *gofpdf.Fpdf, tr func(string) string, s string, anchoCol float64) string {
	doc.SetFont("Helvetica", "", tamTexto)
	if doc.GetStringWidth(tr(s)) <= anchoCol-4 {
		return s
	}
	runas := []rune(s)
	for len(runas) > 0 && doc.GetStringWidth(tr(string(runas)+elipsis)) > anchoCol-4 {
		runas = runas[:len(runas)-1]
	}
	return string(runas) + elipsis
}

// aFechaISO normaliza fechas a la forma YYYY-MM-DD, venga un time.Time o un
// string. Lo que no se puede interpretar cae a los primeros 10 caracteres
// del valor como texto, nunca a un error.
func aFechaISO(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02")
	case string:
		if t == "" {
			return ""
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if d, err := time.Parse(layout, t); err == nil {
				return d.UTC().Format("2006-01-02")
			}
		}
		if len(t) > 10 {
			return t[:10]
		}
		return t
	default:
		s := fmt.Sprint(v)
		if len(s) > 10 {
			return s[:10]
		}
		return s
	}
}
