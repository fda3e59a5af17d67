package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notificacion es el registro de auditoría de un envío: una fila por
// infracción por envío exitoso. Se inserta y nunca se modifica.
type Notificacion struct {
	ID           uuid.UUID `json:"id"`
	InfraccionID int64     `json:"infraccion_id"`
	PdfPath      string    `json:"pdf_path"`
	Estado       string    `json:"estado"` // "enviado"
	Email        string    `json:"email"`
	SentAt       time.Time `json:"sent_at"`
}

// NuevaNotificacion arma el registro de auditoría para una infracción.
// PdfPath apunta al PDF individual del acta, no al combinado del lote.
func NuevaNotificacion(infraccionID int64, pdfPath, email string) *Notificacion {
	return &Notificacion{
		ID:           uuid.New(),
		InfraccionID: infraccionID,
		PdfPath:      pdfPath,
		Estado:       "enviado",
		Email:        email,
		SentAt:       time.Now().UTC(),
	}
}

// ---------------- Eventos de integración ----------------

const TopicActas = "acta-events"

const EventoActaNotificada = "acta.notificada"

// ActaNotificada se publica después de cada notificación exitosa.
type ActaNotificada struct {
	EventoID          uuid.UUID `json:"evento_id"`
	InfraccionID      int64     `json:"infraccion_id"`
	NroActa           string    `json:"nro_acta"`
	Email             string    `json:"email"`
	FechaNotificacion string    `json:"fecha_notificacion"`
	Lote              bool      `json:"lote"`
}

// PartitionKey agrupa los eventos de una misma acta en la misma partición.
func (e ActaNotificada) PartitionKey() string {
	return e.NroActa
}
