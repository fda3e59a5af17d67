package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seguridadvial/actas/internal/infraccion/domain"
	"go.uber.org/zap"
)

// NotificacionService orquesta el envío de notificaciones de actas, de a una
// o por lote. La secuencia del lote es estrictamente ordenada y sin rollback:
// un fallo a mitad de camino aborta los pasos restantes y deja los efectos ya
// aplicados tal como están (limitación conocida, se resuelve a mano).
type NotificacionService struct {
	repo       domain.InfraccionRepository
	archivos   domain.ArchivoActas
	resumen    domain.GeneradorResumen
	combinador domain.CombinadorActas
	mailer     domain.Notificador
	events     domain.EventPublisher
	cache      domain.InfraccionCache

	emailPorDefecto string
	log             *zap.Logger
}

// NewNotificacionService constructor. events y cache pueden ser nil.
func NewNotificacionService(
	repo domain.InfraccionRepository,
	archivos domain.ArchivoActas,
	resumen domain.GeneradorResumen,
	combinador domain.CombinadorActas,
	mailer domain.Notificador,
	events domain.EventPublisher,
	cache domain.InfraccionCache,
	emailPorDefecto string,
	log *zap.Logger,
) *NotificacionService {
	return &NotificacionService{
		repo:            repo,
		archivos:        archivos,
		resumen:         resumen,
		combinador:      combinador,
		mailer:          mailer,
		events:          events,
		cache:           cache,
		emailPorDefecto: emailPorDefecto,
		log:             log,
	}
}

// ResultadoNotificacion es la respuesta del envío individual.
type ResultadoNotificacion struct {
	OK      bool   `json:"ok"`
	ID      int64  `json:"id"`
	NroActa string `json:"nro_acta"`
}

// ResultadoLote es la respuesta del envío por lote.
type ResultadoLote struct {
	OK           bool   `json:"ok"`
	Total        int    `json:"total"`
	ResumenPdf   string `json:"resumenPdf,omitempty"`
	CombinadoPdf string `json:"combinadoPdf,omitempty"`
}

// LoteRequest es el pedido de lote ya normalizado en el borde HTTP.
type LoteRequest struct {
	FechaNotificacion time.Time
	Email             string
	Seleccion         domain.SeleccionLote
}

// NotificarUna notifica una sola infracción: verifica que exista y que tenga
// su PDF individual, envía el mail, marca la infracción y registra la
// auditoría.
func (s *NotificacionService) NotificarUna(ctx context.Context, id int64, fecha time.Time, email string) (*ResultadoNotificacion, error) {
	if email == "" {
		email = s.emailPorDefecto
	}

	inf, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	nro := inf.Nro()
	pdfPath, err := s.archivos.ExisteActa(nro)
	if err != nil {
		return nil, err
	}

	fechaStr := fecha.Format("2006-01-02")
	cuerpo := fmt.Sprintf("Estimado, adjunto acta por exceso de velocidad nro %q, la cual fue debidamente notificada el %q al infractor.", nro, fechaStr)
	adjuntos := []domain.Adjunto{{Nombre: fmt.Sprintf("ACTA-%s.pdf", nro), Ruta: pdfPath}}

	if err := s.mailer.Enviar(ctx, email, "Notificacion de Acta", cuerpo, adjuntos); err != nil {
		return nil, fmt.Errorf("enviando mail de notificación: %w", err)
	}

	if _, err := s.repo.MarcarNotificadas(ctx, []int64{id}, fecha); err != nil {
		return nil, fmt.Errorf("marcando infracción notificada: %w", err)
	}
	s.invalidarCache(ctx, []int64{id})

	if err := s.repo.RegistrarNotificacion(ctx, domain.NuevaNotificacion(id, pdfPath, email)); err != nil {
		return nil, fmt.Errorf("registrando notificación: %w", err)
	}

	s.publicarNotificada(ctx, inf, email, fechaStr, false)

	return &ResultadoNotificacion{OK: true, ID: id, NroActa: nro.String()}, nil
}

// NotificarLote ejecuta la secuencia completa del lote:
//  1. resuelve destinatario, 2. resuelve la selección de no notificadas,
//  3. corta en cero con éxito, 4. verifica los PDFs individuales,
//  5. genera resumen y combinado, 6. envía el mail con ambos adjuntos,
//  7. marca todas las infracciones, 8. registra la auditoría por fila.
func (s *NotificacionService) NotificarLote(ctx context.Context, lote LoteRequest) (*ResultadoLote, error) {
	email := lote.Email
	if email == "" {
		email = s.emailPorDefecto
	}

	filas, err := s.repo.ListarNoNotificadas(ctx, lote.Seleccion)
	if err != nil {
		return nil, err
	}
	if len(filas) == 0 {
		return &ResultadoLote{OK: true, Total: 0}, nil
	}

	// Con un solo PDF faltante se aborta el lote entero antes de cualquier
	// efecto: no hay lotes parciales.
	pdfPaths := make([]string, 0, len(filas))
	for _, inf := range filas {
		p, err := s.archivos.ExisteActa(inf.Nro())
		if err != nil {
			return nil, err
		}
		pdfPaths = append(pdfPaths, p)
	}

	stamp := time.Now().UTC().Format("20060102150405")
	resumenPdf, combinadoPdf, err := s.archivos.RutasLote(stamp)
	if err != nil {
		return nil, fmt.Errorf("preparando directorio de lotes: %w", err)
	}

	fechaStr := lote.FechaNotificacion.Format("2006-01-02")

	filasResumen := make([]domain.FilaResumen, 0, len(filas))
	for _, inf := range filas {
		filasResumen = append(filasResumen, domain.FilaResumen{
			NroActa:      inf.Nro().String(),
			FechaLabrado: inf.FechaLabrado,
			Dominio:      inf.Dominio,
			Titular:      strValue(inf.TitularNombre),
			DNI:          strValue(inf.TitularDNI),
		})
	}

	if err := s.resumen.Generar(filasResumen, resumenPdf, domain.OpcionesResumen{FechaNotificacion: fechaStr}); err != nil {
		return nil, fmt.Errorf("generando PDF resumen: %w", err)
	}

	if err := s.combinador.Combinar(pdfPaths, combinadoPdf); err != nil {
		return nil, fmt.Errorf("combinando PDFs del lote: %w", err)
	}

	cuerpo := fmt.Sprintf("Estimado, adjunto lote de actas por exceso de velocidad que fueron debidamente notificadas el dia %s a los infractores correspondientes.", fechaStr)
	adjuntos := []domain.Adjunto{
		{Nombre: fmt.Sprintf("LOTE-%s-RESUMEN.pdf", stamp), Ruta: resumenPdf},
		{Nombre: fmt.Sprintf("LOTE-%s-COMBINADO.pdf", stamp), Ruta: combinadoPdf},
	}
	if err := s.mailer.Enviar(ctx, email, "Notificacion de actas", cuerpo, adjuntos); err != nil {
		return nil, fmt.Errorf("enviando mail de lote: %w", err)
	}

	ids := make([]int64, 0, len(filas))
	for _, inf := range filas {
		ids = append(ids, inf.ID)
	}
	if _, err := s.repo.MarcarNotificadas(ctx, ids, lote.FechaNotificacion); err != nil {
		return nil, fmt.Errorf("marcando lote notificado: %w", err)
	}
	s.invalidarCache(ctx, ids)

	// La auditoría referencia el PDF individual de cada acta, no el
	// combinado. Un fallo acá deja filas ya marcadas con auditoría
	// incompleta; no se revierte.
	for i, inf := range filas {
		if err := s.repo.RegistrarNotificacion(ctx, domain.NuevaNotificacion(inf.ID, pdfPaths[i], email)); err != nil {
			return nil, fmt.Errorf("registrando notificación de acta %s: %w", inf.Nro(), err)
		}
	}

	for _, inf := range filas {
		s.publicarNotificada(ctx, inf, email, fechaStr, true)
	}

	return &ResultadoLote{
		OK:           true,
		Total:        len(filas),
		ResumenPdf:   resumenPdf,
		CombinadoPdf: combinadoPdf,
	}, nil
}

// publicarNotificada publica el evento de integración. El envío es best
// effort: si falla se loguea y la operación sigue considerándose exitosa.
func (s *NotificacionService) publicarNotificada(ctx context.Context, inf *domain.Infraccion, email, fecha string, lote bool) {
	if s.events == nil {
		return
	}
	evt := domain.ActaNotificada{
		EventoID:          uuid.New(),
		InfraccionID:      inf.ID,
		NroActa:           inf.Nro().String(),
		Email:             email,
		FechaNotificacion: fecha,
		Lote:              lote,
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("no se pudo publicar el evento de notificación",
			zap.String("nro_acta", evt.NroActa),
			zap.Error(err),
		)
	}
}

func (s *NotificacionService) invalidarCache(ctx context.Context, ids []int64) {
	if s.cache == nil {
		return
	}
	for _, id := range ids {
		if err := s.cache.Delete(ctx, domain.CacheKeyByID(id)); err != nil {
			s.log.Warn("no se pudo invalidar el cache", zap.Int64("id", id), zap.Error(err))
		}
	}
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
