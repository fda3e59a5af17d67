package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seguridadvial/actas/internal/infraccion/domain"
	"github.com/seguridadvial/actas/tests/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type entornoLote struct {
	repo       *mocks.InMemoryInfraccionRepo
	archivos   *mocks.FakeArchivoActas
	resumen    *mocks.FakeGeneradorResumen
	combinador *mocks.FakeCombinador
	mailer     *mocks.DummyMailer
	events     *mocks.DummyPublisher
	cache      *mocks.DummyCache
	registro   *mocks.RegistroLlamadas
	service    *NotificacionService
}

func nuevoEntorno() *entornoLote {
	registro := &mocks.RegistroLlamadas{}
	repo := mocks.NewInMemoryInfraccionRepo()
	repo.Registro = registro
	archivos := mocks.NewFakeArchivoActas("/data")
	resumen := &mocks.FakeGeneradorResumen{Registro: registro}
	combinador := &mocks.FakeCombinador{Registro: registro}
	mailer := &mocks.DummyMailer{Registro: registro}
	events := &mocks.DummyPublisher{}
	cache := mocks.NewDummyCache()

	service := NewNotificacionService(
		repo, archivos, resumen, combinador, mailer, events, cache,
		"mailejemplo@gmail.com", zap.NewNop(),
	)
	return &entornoLote{
		repo: repo, archivos: archivos, resumen: resumen,
		combinador: combinador, mailer: mailer, events: events,
		cache: cache, registro: registro, service: service,
	}
}

func infraccionDePrueba(id int64, serie string, correlativo int) *domain.Infraccion {
	return &domain.Infraccion{
		ID:             id,
		Serie:          serie,
		NroCorrelativo: correlativo,
		FechaLabrado:   time.Date(2024, 5, int(id%28)+1, 10, 0, 0, 0, time.UTC),
		Dominio:        "AB123CD",
		Estado:         domain.EstadoPendiente,
	}
}

func (e *entornoLote) agregarConPdf(inf *domain.Infraccion) {
	e.repo.Agregar(inf)
	e.archivos.Existentes[inf.Nro().String()] = true
}

var fechaNotif = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// -------------------- NotificarUna --------------------

func TestNotificarUna_Exito(t *testing.T) {
	e := nuevoEntorno()
	e.agregarConPdf(infraccionDePrueba(1, "A", 123))

	res, err := e.service.NotificarUna(context.Background(), 1, fechaNotif, "destino@example.com")
	assert.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, "A-0000123", res.NroActa)

	// Mail con el PDF individual adjunto
	assert.Len(t, e.mailer.Enviados, 1)
	envio := e.mailer.Enviados[0]
	assert.Equal(t, "destino@example.com", envio.To)
	assert.Equal(t, "Notificacion de Acta", envio.Asunto)
	assert.Contains(t, envio.Cuerpo, "A-0000123")
	assert.Contains(t, envio.Cuerpo, "2024-06-01")
	assert.Equal(t, "ACTA-A-0000123.pdf", envio.Adjuntos[0].Nombre)

	// Infracción marcada
	inf, _ := e.repo.GetByID(context.Background(), 1)
	assert.True(t, inf.Notificado)
	assert.Equal(t, domain.EstadoNotificada, inf.Estado)
	assert.Equal(t, fechaNotif, *inf.FechaNotificacion)

	// Auditoría: una fila, con la ruta del PDF individual
	assert.Len(t, e.repo.Notificaciones, 1)
	assert.Equal(t, int64(1), e.repo.Notificaciones[0].InfraccionID)
	assert.Equal(t, e.archivos.RutaActa(inf.Nro()), e.repo.Notificaciones[0].PdfPath)
	assert.Equal(t, "enviado", e.repo.Notificaciones[0].Estado)

	// Evento publicado
	assert.Len(t, e.events.Eventos, 1)
	evt := e.events.Eventos[0].(domain.ActaNotificada)
	assert.Equal(t, "A-0000123", evt.NroActa)
	assert.False(t, evt.Lote)
}

func TestNotificarUna_EmailPorDefecto(t *testing.T) {
	e := nuevoEntorno()
	e.agregarConPdf(infraccionDePrueba(1, "A", 1))

	_, err := e.service.NotificarUna(context.Background(), 1, fechaNotif, "")
	assert.NoError(t, err)
	assert.Equal(t, "mailejemplo@gmail.com", e.mailer.Enviados[0].To)
}

func TestNotificarUna_NoEncontrada(t *testing.T) {
	e := nuevoEntorno()

	_, err := e.service.NotificarUna(context.Background(), 99, fechaNotif, "")
	assert.ErrorIs(t, err, domain.ErrInfraccionNoEncontrada)
	assert.Empty(t, e.mailer.Enviados)
}

func TestNotificarUna_PdfFaltante(t *testing.T) {
	e := nuevoEntorno()
	e.repo.Agregar(infraccionDePrueba(1, "A", 123)) // sin PDF

	_, err := e.service.NotificarUna(context.Background(), 1, fechaNotif, "")

	var faltante domain.ErrActaPdfFaltante
	assert.ErrorAs(t, err, &faltante)
	assert.Equal(t, "A-0000123", faltante.Nro.String())

	// Ningún efecto visible antes de la validación
	assert.Empty(t, e.mailer.Enviados)
	inf, _ := e.repo.GetByID(context.Background(), 1)
	assert.False(t, inf.Notificado)
	assert.Empty(t, e.repo.Notificaciones)
}

// -------------------- NotificarLote --------------------

func TestNotificarLote_PorRango_Exito(t *testing.T) {
	e := nuevoEntorno()
	e.agregarConPdf(infraccionDePrueba(1, "A", 30))
	e.agregarConPdf(infraccionDePrueba(2, "A", 10))
	e.agregarConPdf(infraccionDePrueba(3, "A", 20))
	e.agregarConPdf(infraccionDePrueba(4, "A", 99)) // fuera del rango

	res, err := e.service.NotificarLote(context.Background(), LoteRequest{
		FechaNotificacion: fechaNotif,
		Seleccion: domain.PorRango{
			Desde: domain.NroActa{Serie: "A", Correlativo: 1},
			Hasta: domain.NroActa{Serie: "A", Correlativo: 50},
		},
	})
	assert.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 3, res.Total)
	assert.Contains(t, res.ResumenPdf, "RESUMEN")
	assert.Contains(t, res.CombinadoPdf, "COMBINADO")

	// Orden de procesamiento: correlativo ascendente dentro de la serie
	assert.Equal(t, "A-0000010", e.resumen.Filas[0].NroActa)
	assert.Equal(t, "A-0000020", e.resumen.Filas[1].NroActa)
	assert.Equal(t, "A-0000030", e.resumen.Filas[2].NroActa)

	// Secuencia estricta: resumen, combinado, mail, marcar, auditoría
	assert.Equal(t, []string{"resumen", "combinar", "mail", "marcar", "registrar", "registrar", "registrar"},
		e.registro.Llamadas)

	// Mail con ambos artefactos
	assert.Len(t, e.mailer.Enviados, 1)
	assert.Len(t, e.mailer.Enviados[0].Adjuntos, 2)

	// Combinado sobre los PDFs individuales, en orden
	assert.Len(t, e.combinador.Rutas, 3)
	assert.Contains(t, e.combinador.Rutas[0], "ACTA-A-0000010")

	// Auditoría: una fila por acta, apuntando al PDF individual
	assert.Len(t, e.repo.Notificaciones, 3)
	for _, n := range e.repo.Notificaciones {
		assert.Contains(t, n.PdfPath, "ACTA-A-")
	}

	// Eventos de lote
	assert.Len(t, e.events.Eventos, 3)
	assert.True(t, e.events.Eventos[0].(domain.ActaNotificada).Lote)
}

func TestNotificarLote_VentanaVacia_CortaSinEfectos(t *testing.T) {
	e := nuevoEntorno()
	e.agregarConPdf(infraccionDePrueba(1, "A", 10))

	res, err := e.service.NotificarLote(context.Background(), LoteRequest{
		FechaNotificacion: fechaNotif,
		Seleccion: domain.PorPeriodo{
			Desde: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			Hasta: time.Date(1990, 12, 31, 23, 59, 59, 0, time.UTC),
		},
	})
	assert.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, res.ResumenPdf)

	// Cero efectos: ni PDFs, ni mail, ni updates
	assert.Empty(t, e.registro.Llamadas)
	assert.Empty(t, e.mailer.Enviados)
	assert.Empty(t, e.repo.Notificaciones)
}

func TestNotificarLote_PorIDs_DescartaYaNotificadas(t *testing.T) {
	e := nuevoEntorno()
	notificada := infraccionDePrueba(1, "A", 10)
	notificada.Notificado = true
	f := fechaNotif
	notificada.FechaNotificacion = &f
	notificada.Estado = domain.EstadoNotificada
	e.agregarConPdf(notificada)
	e.agregarConPdf(infraccionDePrueba(2, "A", 20))

	res, err := e.service.NotificarLote(context.Background(), LoteRequest{
		FechaNotificacion: fechaNotif,
		Seleccion:         domain.PorIDs{IDs: []int64{1, 2, 999}},
	})
	assert.NoError(t, err)

	// La ya notificada y la inexistente se descartan en silencio
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "A-0000020", e.resumen.Filas[0].NroActa)
}

func TestNotificarLote_PdfFaltante_AbortaLoteEntero(t *testing.T) {
	e := nuevoEntorno()
	e.agregarConPdf(infraccionDePrueba(1, "A", 10))
	e.repo.Agregar(infraccionDePrueba(2, "A", 20)) // sin PDF
	e.agregarConPdf(infraccionDePrueba(3, "A", 30))

	_, err := e.service.NotificarLote(context.Background(), LoteRequest{
		FechaNotificacion: fechaNotif,
		Seleccion: domain.PorRango{
			Desde: domain.NroActa{Serie: "A", Correlativo: 1},
			Hasta: domain.NroActa{Serie: "A", Correlativo: 50},
		},
	})

	var faltante domain.ErrActaPdfFaltante
	assert.ErrorAs(t, err, &faltante)
	assert.Equal(t, "A-0000020", faltante.Nro.String())

	// No avanza ningún lote parcial
	assert.Empty(t, e.registro.Llamadas)
	assert.Empty(t, e.mailer.Enviados)
	inf, _ := e.repo.GetByID(context.Background(), 1)
	assert.False(t, inf.Notificado)
}

func TestNotificarLote_FalloDeAuditoria_NoRevierteElMarcado(t *testing.T) {
	e := nuevoEntorno()
	e.agregarConPdf(infraccionDePrueba(1, "A", 10))
	e.repo.ErrRegistrar = errors.New("insert falló")

	_, err := e.service.NotificarLote(context.Background(), LoteRequest{
		FechaNotificacion: fechaNotif,
		Seleccion:         domain.PorIDs{IDs: []int64{1}},
	})
	assert.Error(t, err)

	// El mail ya salió y la infracción quedó marcada: estado intermedio
	// aceptado, sin rollback.
	assert.Len(t, e.mailer.Enviados, 1)
	inf, _ := e.repo.GetByID(context.Background(), 1)
	assert.True(t, inf.Notificado)
	assert.Empty(t, e.repo.Notificaciones)
}

func TestNotificarLote_FalloDeMail_NoMarcaNada(t *testing.T) {
	e := nuevoEntorno()
	e.agregarConPdf(infraccionDePrueba(1, "A", 10))
	e.mailer.Err = errors.New("smtp caído")

	_, err := e.service.NotificarLote(context.Background(), LoteRequest{
		FechaNotificacion: fechaNotif,
		Seleccion:         domain.PorIDs{IDs: []int64{1}},
	})
	assert.Error(t, err)

	// El update va después del envío: si el mail falla nada queda marcado
	inf, _ := e.repo.GetByID(context.Background(), 1)
	assert.False(t, inf.Notificado)
	assert.Empty(t, e.repo.Notificaciones)
}

func TestNotificarLote_InvalidaCacheDeLasMarcadas(t *testing.T) {
	e := nuevoEntorno()
	e.agregarConPdf(infraccionDePrueba(1, "A", 10))
	e.agregarConPdf(infraccionDePrueba(2, "A", 20))

	_, err := e.service.NotificarLote(context.Background(), LoteRequest{
		FechaNotificacion: fechaNotif,
		Seleccion:         domain.PorIDs{IDs: []int64{1, 2}},
	})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{
		domain.CacheKeyByID(1),
		domain.CacheKeyByID(2),
	}, e.cache.Eliminadas)
}

// La ventana entre el SELECT de no notificadas y el UPDATE no está protegida
// por una transacción: dos lotes concurrentes sobre los mismos IDs pueden
// pasar ambos el filtro y marcar dos veces. Secuencialmente el segundo lote
// ve el conjunto vacío; el test documenta la semántica, no asegura exclusión.
func TestNotificarLote_SegundoLoteSecuencialVeConjuntoVacio(t *testing.T) {
	e := nuevoEntorno()
	e.agregarConPdf(infraccionDePrueba(1, "A", 10))

	sel := domain.PorIDs{IDs: []int64{1}}

	res1, err := e.service.NotificarLote(context.Background(), LoteRequest{FechaNotificacion: fechaNotif, Seleccion: sel})
	assert.NoError(t, err)
	assert.Equal(t, 1, res1.Total)

	res2, err := e.service.NotificarLote(context.Background(), LoteRequest{FechaNotificacion: fechaNotif, Seleccion: sel})
	assert.NoError(t, err)
	assert.Equal(t, 0, res2.Total)
	assert.Len(t, e.mailer.Enviados, 1)
}
