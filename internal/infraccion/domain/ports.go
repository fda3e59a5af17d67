package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	sharedDomain "github.com/seguridadvial/actas/internal/shared/domain"
)

// ---------- Errores de dominio ----------
var (
	ErrNroActaInvalido        = errors.New("formato de nro_acta inválido")
	ErrRangoSeries            = errors.New("el rango de actas debe ser de la misma serie")
	ErrPeriodoInvalido        = errors.New("período inválido, usar fechas YYYY-MM-DD")
	ErrSeleccionVacia         = errors.New("selección vacía")
	ErrSinCriterio            = errors.New("debe indicar periodo, rango o selección")
	ErrInfraccionNoEncontrada = errors.New("infracción no encontrada")
	ErrFotoNoEncontrada       = errors.New("foto no encontrada")
)

// ErrActaPdfFaltante indica que el PDF individual de un acta no existe en el
// directorio de datos. Se mapea a 409: el operador debe generar el PDF antes
// de notificar.
type ErrActaPdfFaltante struct {
	Nro NroActa
}

func (e ErrActaPdfFaltante) Error() string {
	return fmt.Sprintf("PDF de acta %s no existe. Primero generá/creá ACTA-%s.pdf en el directorio de pdfs", e.Nro, e.Nro)
}

// ---------- Interfaces (Ports) ----------

// InfraccionRepository define las operaciones persistentes sobre infracciones
// y su auditoría de notificaciones.
type InfraccionRepository interface {
	// Listar devuelve infracciones enriquecidas con titular según criterios,
	// paginación y orden. Para el listado el orden por defecto es serie ASC,
	// correlativo DESC (lo más nuevo primero dentro de cada serie).
	Listar(ctx context.Context, criteria sharedDomain.Criteria, pag sharedDomain.Pagination, sort sharedDomain.Sort) ([]*Infraccion, error)

	// Debe devolver ErrInfraccionNoEncontrada si no existe.
	GetByID(ctx context.Context, id int64) (*Infraccion, error)

	// ListarNoNotificadas resuelve una selección de lote sobre las
	// infracciones con notificado = FALSE, ordenadas serie ASC,
	// correlativo ASC (orden cronológico de procesamiento).
	ListarNoNotificadas(ctx context.Context, sel SeleccionLote) ([]*Infraccion, error)

	// MarcarNotificadas setea notificado, fecha_notificacion y estado
	// 'notificada' para todos los ids en una sola sentencia. Devuelve la
	// cantidad de filas afectadas.
	MarcarNotificadas(ctx context.Context, ids []int64, fecha time.Time) (int64, error)

	// RegistrarNotificacion inserta un registro de auditoría. Nunca
	// actualiza filas existentes.
	RegistrarNotificacion(ctx context.Context, n *Notificacion) error
}

// InfraccionCache cachea lecturas puntuales de infracciones.
type InfraccionCache interface {
	// Get intenta poblar dest (puntero) con el valor asociado a la key.
	// Devuelve (true, nil) si hay hit y dest fue rellenado.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set serializa y guarda el valor con TTL en segundos.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error

	// Delete elimina la key del cache.
	Delete(ctx context.Context, key string) error
}

// ArchivoActas resuelve las rutas de los PDFs de actas y de los artefactos
// de lote dentro del directorio de datos.
type ArchivoActas interface {
	// RutaActa devuelve la ruta determinística del PDF individual del acta.
	RutaActa(nro NroActa) string

	// ExisteActa devuelve la ruta si el PDF existe, o ErrActaPdfFaltante.
	ExisteActa(nro NroActa) (string, error)

	// RutasLote crea el directorio de lotes si hace falta y devuelve las
	// rutas del resumen y del combinado para el timestamp dado.
	RutasLote(stamp string) (resumen string, combinado string, err error)
}

// FilaResumen es la proyección de una infracción en el PDF resumen.
// FechaLabrado admite time.Time o string; se normaliza a YYYY-MM-DD.
type FilaResumen struct {
	NroActa      string
	FechaLabrado interface{}
	Dominio      string
	Titular      string
	DNI          string
}

// OpcionesResumen parametriza el encabezado del PDF resumen.
type OpcionesResumen struct {
	FechaNotificacion string // YYYY-MM-DD
}

// GeneradorResumen genera el PDF tabular de resumen de un lote.
type GeneradorResumen interface {
	Generar(filas []FilaResumen, ruta string, opts OpcionesResumen) error
}

// CombinadorActas concatena los PDFs individuales de un lote en uno solo,
// en el orden de entrada.
type CombinadorActas interface {
	Combinar(rutas []string, destino string) error
}

// Adjunto es un archivo a adjuntar en un mail de notificación.
type Adjunto struct {
	Nombre string
	Ruta   string
}

// Notificador envía el mail de notificación con sus adjuntos.
type Notificador interface {
	Enviar(ctx context.Context, to, asunto, cuerpo string, adjuntos []Adjunto) error
}

// EventPublisher publica eventos de integración. La semántica del topic y el
// formato del payload los decide el adapter.
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// ---------- Helpers comunes (cache keys, etc.) ----------

// CacheKeyByID forma una key consistente para cache usando el ID.
func CacheKeyByID(id int64) string {
	return fmt.Sprintf("infraccion:id:%d", id)
}
