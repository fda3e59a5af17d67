package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Estados del ciclo de vida de una infracción.
const (
	EstadoPendiente  = "pendiente"
	EstadoNotificada = "notificada"
)

// ---------------- NroActa ----------------

// Una letra de serie seguida de hasta 7 dígitos, guión opcional.
var nroActaRe = regexp.MustCompile(`^([A-Z])-?(\d{1,7})$`)

// NroActa identifica un acta: serie (una letra A-Z) + correlativo (1..9999999).
// Dos números de acta solo son comparables dentro de la misma serie.
type NroActa struct {
	Serie       string `json:"serie"`
	Correlativo int    `json:"correlativo"`
}

// ParseNroActa acepta las formas "A1234567" o "A-1234567", sin distinguir
// mayúsculas y tolerando espacios. Devuelve ErrNroActaInvalido si no matchea.
func ParseNroActa(s string) (NroActa, error) {
	limpio := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	m := nroActaRe.FindStringSubmatch(limpio)
	if m == nil {
		return NroActa{}, ErrNroActaInvalido
	}
	correlativo, err := strconv.Atoi(m[2])
	if err != nil {
		return NroActa{}, ErrNroActaInvalido
	}
	return NroActa{Serie: m[1], Correlativo: correlativo}, nil
}

// String devuelve la forma canónica "A-0000001" (correlativo a 7 dígitos).
func (n NroActa) String() string {
	return fmt.Sprintf("%s-%07d", n.Serie, n.Correlativo)
}

// ---------------- Infraccion ----------------

// Infraccion representa un acta de infracción de tránsito, enriquecida con
// los datos del titular del dominio cuando existen (LEFT JOIN con titulares).
type Infraccion struct {
	ID             int64     `json:"id"`
	Serie          string    `json:"serie"`
	NroCorrelativo int       `json:"nro_correlativo"`
	FechaLabrado   time.Time `json:"fecha_labrado"`
	Dominio        string    `json:"dominio"`
	Lugar          string    `json:"lugar"`
	Arteria        string    `json:"arteria"`
	Velocidad      float64   `json:"velocidad"`
	VelocidadMax   float64   `json:"velocidad_maxima"`
	FotoFileID     string    `json:"foto_file_id"`

	// Estado de notificación. FechaNotificacion es no-nil si y solo si
	// Notificado es true.
	Notificado        bool       `json:"notificado"`
	FechaNotificacion *time.Time `json:"fecha_notificacion"`
	Estado            string     `json:"estado"`

	// Datos del titular (pueden faltar si el dominio no está registrado)
	TitularNombre *string `json:"titular_nombre"`
	TitularDNI    *string `json:"titular_dni"`
}

// Nro arma el número de acta a partir de serie y correlativo.
func (i *Infraccion) Nro() NroActa {
	return NroActa{Serie: i.Serie, Correlativo: i.NroCorrelativo}
}

// MarshalJSON agrega el campo derivado nro_acta en su forma canónica,
// como lo exponía la vista de consulta.
func (i Infraccion) MarshalJSON() ([]byte, error) {
	type alias Infraccion
	return json.Marshal(struct {
		alias
		NroActa string `json:"nro_acta"`
	}{alias(i), i.Nro().String()})
}
