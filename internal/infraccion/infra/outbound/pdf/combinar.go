package pdf

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/seguridadvial/actas/internal/infraccion/domain"
)

// CombinadorPDF concatena PDFs existentes en un único documento, página por
// página y en el orden de entrada. La existencia de los archivos la verifica
// antes el orquestador; acá un faltante es un error de I/O.
type CombinadorPDF struct{}

// Verificación estática
var _ domain.CombinadorActas = CombinadorPDF{}

func NewCombinador() CombinadorPDF {
	return CombinadorPDF{}
}

func (CombinadorPDF) Combinar(rutas []string, destino string) error {
	if err := api.MergeCreateFile(rutas, destino, false, nil); err != nil {
		return fmt.Errorf("combinando %d PDFs en %s: %w", len(rutas), destino, err)
	}
	return nil
}
