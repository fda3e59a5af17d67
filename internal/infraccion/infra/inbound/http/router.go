package http

import "github.com/gin-gonic/gin"

func RegisterConsultaRoutes(r *gin.Engine, handler *ConsultaHandler) {
	consultas := r.Group("/api/consultas")
	{
		consultas.GET("/infracciones", handler.ListarInfracciones)
		consultas.POST("/notificar/:id", handler.NotificarUna)
		consultas.POST("/notificar-lote", handler.NotificarLote)
		consultas.GET("/foto/:fileId", handler.ObtenerFoto)
	}
}
