package pdf

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/seguridadvial/actas/internal/infraccion/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filaDePrueba(i int) domain.FilaResumen {
	return domain.FilaResumen{
		NroActa:      fmt.Sprintf("A-%07d", i),
		FechaLabrado: time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC),
		Dominio:      "AB123CD",
		Titular:      "Juan Pérez",
		DNI:          "30123456",
	}
}

func TestGenerar_SinFilas(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "resumen.pdf")

	err := NewGeneradorResumen().Generar(nil, ruta, domain.OpcionesResumen{FechaNotificacion: "2024-06-01"})
	require.NoError(t, err)

	// Con cero filas igual sale el documento con encabezado y "Total: 0"
	paginas, err := api.PageCountFile(ruta)
	require.NoError(t, err)
	assert.Equal(t, 1, paginas)
}

func TestGenerar_DesbordeDePagina(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "resumen.pdf")

	// Suficientes filas para pasar de largo el margen inferior de la primera
	// página; la cabecera se redibuja en la segunda.
	var filas []domain.FilaResumen
	for i := 1; i <= 60; i++ {
		filas = append(filas, filaDePrueba(i))
	}

	err := NewGeneradorResumen().Generar(filas, ruta, domain.OpcionesResumen{FechaNotificacion: "2024-06-01"})
	require.NoError(t, err)

	paginas, err := api.PageCountFile(ruta)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, paginas, 2)
}

func TestTruncarConElipsis(t *testing.T) {
	doc := gofpdf.New("P", "pt", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	const anchoCol = 85.0

	// Un valor que entra queda intacto
	assert.Equal(t, "AB123CD", truncarConElipsis(doc, tr, "AB123CD", anchoCol))

	// Un valor más ancho que la columna termina en elipsis y respeta el
	// presupuesto de ancho
	largo := strings.Repeat("Titular con nombre larguísimo ", 5)
	recortado := truncarConElipsis(doc, tr, largo, anchoCol)
	assert.True(t, strings.HasSuffix(recortado, elipsis))
	assert.Less(t, len(recortado), len(largo))

	doc.SetFont("Helvetica", "", tamTexto)
	assert.LessOrEqual(t, doc.GetStringWidth(tr(recortado)), anchoCol-4)
}

func TestAFechaISO(t *testing.T) {
	assert.Equal(t, "2024-05-10", aFechaISO(time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-10", aFechaISO("2024-05-10T23:00:00Z"))
	assert.Equal(t, "2024-05-10", aFechaISO("2024-05-10"))
	assert.Equal(t, "", aFechaISO(""))
	assert.Equal(t, "", aFechaISO(nil))

	// Lo no parseable cae a los primeros 10 caracteres, sin error
	assert.Equal(t, "10/05/2024", aFechaISO("10/05/2024 23:00:00"))
}
