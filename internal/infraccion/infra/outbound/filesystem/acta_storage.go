// Adaptador outbound que resuelve el layout de archivos del servicio:
// PDFs individuales de actas, artefactos de lote y fotos subidas.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seguridadvial/actas/internal/infraccion/domain"
)

// ActaStorage resuelve rutas dentro del directorio de datos.
//
//	{dataDir}/pdfs/ACTA-{nro}.pdf       PDF individual de cada acta
//	{dataDir}/lotes/LOTE-{stamp}-*.pdf  artefactos generados por lote
//	{dataDir}/uploads/{fileId}          fotos asociadas a infracciones
type ActaStorage struct {
	dataDir string
}

// Verificación estática
var _ domain.ArchivoActas = (*ActaStorage)(nil)

func NewActaStorage(dataDir string) *ActaStorage {
	return &ActaStorage{dataDir: dataDir}
}

// RutaActa devuelve la ruta determinística del PDF individual del acta.
func (s *ActaStorage) RutaActa(nro domain.NroActa) string {
	return filepath.Join(s.dataDir, "pdfs", fmt.Sprintf("ACTA-%s.pdf", nro))
}

// ExisteActa devuelve la ruta del PDF del acta o ErrActaPdfFaltante.
func (s *ActaStorage) ExisteActa(nro domain.NroActa) (string, error) {
	ruta := s.RutaActa(nro)
	if _, err := os.Stat(ruta); err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrActaPdfFaltante{Nro: nro}
		}
		return "", err
	}
	return ruta, nil
}

// RutasLote crea el directorio de lotes si no existe y devuelve las rutas
// del resumen y del combinado para el timestamp dado.
func (s *ActaStorage) RutasLote(stamp string) (string, string, error) {
	dir := filepath.Join(s.dataDir, "lotes")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return filepath.Join(dir, fmt.Sprintf("LOTE-%s-RESUMEN.pdf", stamp)),
		filepath.Join(dir, fmt.Sprintf("LOTE-%s-COMBINADO.pdf", stamp)),
		nil
}

// RutaFoto resuelve la foto de un fileId dentro de uploads. El fileId se
// reduce a su nombre base para evitar path traversal. Devuelve la ruta y el
// content type según la extensión, o ErrFotoNoEncontrada.
func (s *ActaStorage) RutaFoto(fileID string) (string, string, error) {
	seguro := filepath.Base(fileID)
	ruta := filepath.Join(s.dataDir, "uploads", seguro)

	if _, err := os.Stat(ruta); err != nil {
		if os.IsNotExist(err) {
			return "", "", domain.ErrFotoNoEncontrada
		}
		return "", "", err
	}

	var ct string
	switch strings.ToLower(filepath.Ext(ruta)) {
	case ".png":
		ct = "image/png"
	case ".jpg", ".jpeg":
		ct = "image/jpeg"
	default:
		ct = "application/octet-stream"
	}
	return ruta, ct, nil
}
