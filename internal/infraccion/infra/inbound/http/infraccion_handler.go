package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seguridadvial/actas/internal/infraccion/application"
	"github.com/seguridadvial/actas/internal/infraccion/domain"
	sharedDomain "github.com/seguridadvial/actas/internal/shared/domain"
	"github.com/seguridadvial/actas/pkg/utils"
)

// FotoResolver resuelve un fileId a una ruta en disco y su content type.
type FotoResolver interface {
	RutaFoto(fileID string) (string, string, error)
}

// ConsultaHandler encapsula los endpoints HTTP del contexto de consultas.
type ConsultaHandler struct {
	consultas      *application.ConsultaService
	notificaciones *application.NotificacionService
	fotos          FotoResolver
}

func NewConsultaHandler(consultas *application.ConsultaService, notificaciones *application.NotificacionService, fotos FotoResolver) *ConsultaHandler {
	return &ConsultaHandler{
		consultas:      consultas,
		notificaciones: notificaciones,
		fotos:          fotos,
	}
}

// ---------------- Handlers ----------------

// ListarInfracciones endpoint GET /api/consultas/infracciones
func (h *ConsultaHandler) ListarInfracciones(c *gin.Context) {
	var criterias []sharedDomain.Criteria

	// --- Filtros desde query params ---
	if nroStr := c.Query("nro_acta"); nroStr != "" {
		nro, err := domain.ParseNroActa(nroStr)
		if err != nil {
			utils.SendBadRequest(c, "nro_acta inválido, formato esperado: S-0001234")
			return
		}
		criterias = append(criterias, domain.ActaExactaCriteria{Nro: nro})
	} else if desdeStr, hastaStr := c.Query("nro_desde"), c.Query("nro_hasta"); desdeStr != "" && hastaStr != "" {
		desde, err := domain.ParseNroActa(desdeStr)
		if err != nil {
			utils.SendBadRequest(c, "nro_desde inválido")
			return
		}
		hasta, err := domain.ParseNroActa(hastaStr)
		if err != nil {
			utils.SendBadRequest(c, "nro_hasta inválido")
			return
		}
		rango, err := domain.NuevoRangoActas(desde, hasta)
		if err != nil {
			utils.SendBadRequest(c, "el rango debe ser de una misma serie")
			return
		}
		criterias = append(criterias, rango)
	}

	if desdeStr, hastaStr := c.Query("fecha_desde"), c.Query("fecha_hasta"); desdeStr != "" && hastaStr != "" {
		desde, errD := time.Parse("2006-01-02", desdeStr)
		hasta, errH := time.Parse("2006-01-02", hastaStr)
		if errD != nil || errH != nil {
			utils.SendBadRequest(c, "fechas inválidas, formato esperado: YYYY-MM-DD")
			return
		}
		criterias = append(criterias, domain.PeriodoCriteria{Desde: desde, Hasta: hasta})
	}

	switch c.DefaultQuery("estado", "todas") {
	case "notificadas":
		criterias = append(criterias, domain.EstadoCriteria{Notificado: true})
	case "no_notificadas":
		criterias = append(criterias, domain.EstadoCriteria{Notificado: false})
	}

	// --- Paginación ---
	pag := sharedDomain.Pagination{Limit: 100}
	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			pag.Limit = v
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil && v >= 0 {
			pag.Offset = v
		}
	}

	infracciones, err := h.consultas.Listar(c.Request.Context(), sharedDomain.And(criterias...), pag, sharedDomain.Sort{})
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, infracciones)
}

// NotificarUna endpoint POST /api/consultas/notificar/:id
func (h *ConsultaHandler) NotificarUna(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.SendBadRequest(c, "id inválido")
		return
	}

	var req struct {
		FechaNotificacion string `json:"fechaNotificacion" binding:"required"`
		Email             string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "fechaNotificacion es obligatoria")
		return
	}

	fecha, err := time.Parse("2006-01-02", req.FechaNotificacion)
	if err != nil {
		utils.SendBadRequest(c, "fechaNotificacion inválida, formato esperado: YYYY-MM-DD")
		return
	}

	resultado, err := h.notificaciones.NotificarUna(c.Request.Context(), id, fecha, req.Email)
	if err != nil {
		h.responderErrorNotificacion(c, err)
		return
	}

	c.JSON(http.StatusOK, resultado)
}

// NotificarLote endpoint POST /api/consultas/notificar-lote
func (h *ConsultaHandler) NotificarLote(c *gin.Context) {
	var req struct {
		FechaNotificacion string   `json:"fechaNotificacion" binding:"required"`
		Email             string   `json:"email"`
		Seleccion         []int64  `json:"seleccion"`
		Periodo           *periodo `json:"periodo"`
		Rango             *rango   `json:"rango"`
		RangoActas        *rango   `json:"rangoActas"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, "fechaNotificacion es obligatoria")
		return
	}

	fecha, err := time.Parse("2006-01-02", req.FechaNotificacion)
	if err != nil {
		utils.SendBadRequest(c, "fechaNotificacion inválida, formato esperado: YYYY-MM-DD")
		return
	}

	cruda := domain.SeleccionCruda{Seleccion: req.Seleccion}
	if req.Periodo != nil {
		cruda.Periodo = &domain.PeriodoCrudo{Desde: req.Periodo.Desde, Hasta: req.Periodo.Hasta}
	}
	// Se aceptan las dos formas históricas del rango; acá se unifican
	if r := req.Rango; r != nil {
		cruda.Rango = &domain.RangoCrudo{Desde: r.desde(), Hasta: r.hasta()}
	} else if r := req.RangoActas; r != nil {
		cruda.Rango = &domain.RangoCrudo{Desde: r.desde(), Hasta: r.hasta()}
	}

	seleccion, err := domain.NormalizarSeleccion(cruda)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	resultado, err := h.notificaciones.NotificarLote(c.Request.Context(), application.LoteRequest{
		FechaNotificacion: fecha,
		Email:             req.Email,
		Seleccion:         seleccion,
	})
	if err != nil {
		h.responderErrorNotificacion(c, err)
		return
	}

	c.JSON(http.StatusOK, resultado)
}

// ObtenerFoto endpoint GET /api/consultas/foto/:fileId
func (h *ConsultaHandler) ObtenerFoto(c *gin.Context) {
	ruta, contentType, err := h.fotos.RutaFoto(c.Param("fileId"))
	if err != nil {
		if errors.Is(err, domain.ErrFotoNoEncontrada) {
			utils.SendNotFound(c, "foto no encontrada")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	c.Header("Content-Type", contentType)
	c.File(ruta)
}

// ---------------- Helpers ----------------

// rango admite {nro_desde,nro_hasta} y {desde,hasta} indistintamente.
type rango struct {
	NroDesde string `json:"nro_desde"`
	NroHasta string `json:"nro_hasta"`
	Desde    string `json:"desde"`
	Hasta    string `json:"hasta"`
}

func (r *rango) desde() string {
	if r.NroDesde != "" {
		return r.NroDesde
	}
	return r.Desde
}

func (r *rango) hasta() string {
	if r.NroHasta != "" {
		return r.NroHasta
	}
	return r.Hasta
}

type periodo struct {
	Desde string `json:"desde"`
	Hasta string `json:"hasta"`
}

func (h *ConsultaHandler) responderErrorNotificacion(c *gin.Context, err error) {
	var pdfFaltante domain.ErrActaPdfFaltante
	switch {
	case errors.Is(err, domain.ErrInfraccionNoEncontrada):
		utils.SendNotFound(c, "infracción no encontrada")
	case errors.As(err, &pdfFaltante):
		utils.SendConflict(c, pdfFaltante.Error())
	default:
		utils.SendInternalServerError(c, err.Error())
	}
}
