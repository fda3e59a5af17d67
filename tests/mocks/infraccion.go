package mocks

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/seguridadvial/actas/internal/infraccion/domain"
	sharedDomain "github.com/seguridadvial/actas/internal/shared/domain"
)

// RegistroLlamadas acumula el orden en que los fakes fueron invocados, para
// poder asegurar la secuencia del orquestador en los tests.
type RegistroLlamadas struct {
	mu       sync.Mutex
	Llamadas []string
}

func (r *RegistroLlamadas) Agregar(nombre string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Llamadas = append(r.Llamadas, nombre)
}

// ---------------- Repositorio en memoria ----------------

type InMemoryInfraccionRepo struct {
	mu             sync.RWMutex
	Infracciones   map[int64]*domain.Infraccion
	Notificaciones []*domain.Notificacion

	// Inyección de fallos
	ErrMarcar    error
	ErrRegistrar error

	Registro *RegistroLlamadas
}

func NewInMemoryInfraccionRepo() *InMemoryInfraccionRepo {
	return &InMemoryInfraccionRepo{
		Infracciones: make(map[int64]*domain.Infraccion),
	}
}

func (r *InMemoryInfraccionRepo) Agregar(inf *domain.Infraccion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inf.Estado == "" {
		inf.Estado = domain.EstadoPendiente
	}
	r.Infracciones[inf.ID] = inf
}

func (r *InMemoryInfraccionRepo) GetByID(ctx context.Context, id int64) (*domain.Infraccion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inf, ok := r.Infracciones[id]
	if !ok {
		return nil, domain.ErrInfraccionNoEncontrada
	}
	copia := *inf
	return &copia, nil
}

// cumple interpreta las condiciones neutrales que usan los criterios del
// dominio (serie, correlativo, fecha de labrado, notificado).
func cumple(inf *domain.Infraccion, c sharedDomain.Criterion) bool {
	switch c.Field {
	case "i.serie":
		return inf.Serie == c.Value.(string)
	case "i.nro_correlativo":
		v := c.Value.(int)
		switch c.Op {
		case sharedDomain.OpEq:
			return inf.NroCorrelativo == v
		case sharedDomain.OpGte:
			return inf.NroCorrelativo >= v
		case sharedDomain.OpLte:
			return inf.NroCorrelativo <= v
		}
	case "i.fecha_labrado":
		v := c.Value.(time.Time)
		switch c.Op {
		case sharedDomain.OpGte:
			return !inf.FechaLabrado.Before(v)
		case sharedDomain.OpLte:
			return !inf.FechaLabrado.After(v)
		}
	case "i.notificado":
		return inf.Notificado == c.Value.(bool)
	}
	return false
}

func (r *InMemoryInfraccionRepo) Listar(ctx context.Context, criteria sharedDomain.Criteria, pag sharedDomain.Pagination, sortBy sharedDomain.Sort) ([]*domain.Infraccion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []*domain.Infraccion
	for _, inf := range r.Infracciones {
		ok := true
		for _, c := range criteria.ToConditions() {
			if !cumple(inf, c) {
				ok = false
				break
			}
		}
		if ok {
			copia := *inf
			res = append(res, &copia)
		}
	}

	// Orden de listado: serie ASC, correlativo DESC
	sort.Slice(res, func(a, b int) bool {
		if res[a].Serie != res[b].Serie {
			return res[a].Serie < res[b].Serie
		}
		return res[a].NroCorrelativo > res[b].NroCorrelativo
	})

	if pag.Offset >= len(res) {
		return nil, nil
	}
	res = res[pag.Offset:]
	if pag.Limit > 0 && pag.Limit < len(res) {
		res = res[:pag.Limit]
	}
	return res, nil
}

func (r *InMemoryInfraccionRepo) ListarNoNotificadas(ctx context.Context, sel domain.SeleccionLote) ([]*domain.Infraccion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []*domain.Infraccion
	for _, inf := range r.Infracciones {
		if inf.Notificado {
			continue
		}
		incluir := false
		switch s := sel.(type) {
		case domain.PorIDs:
			for _, id := range s.IDs {
				if inf.ID == id {
					incluir = true
					break
				}
			}
		case domain.PorPeriodo:
			incluir = !inf.FechaLabrado.Before(s.Desde) && !inf.FechaLabrado.After(s.Hasta)
		case domain.PorRango:
			incluir = inf.Serie == s.Desde.Serie &&
				inf.NroCorrelativo >= s.Desde.Correlativo &&
				inf.NroCorrelativo <= s.Hasta.Correlativo
		}
		if incluir {
			copia := *inf
			res = append(res, &copia)
		}
	}

	// Orden de lote: serie ASC, correlativo ASC
	sort.Slice(res, func(a, b int) bool {
		if res[a].Serie != res[b].Serie {
			return res[a].Serie < res[b].Serie
		}
		return res[a].NroCorrelativo < res[b].NroCorrelativo
	})
	return res, nil
}

func (r *InMemoryInfraccionRepo) MarcarNotificadas(ctx context.Context, ids []int64, fecha time.Time) (int64, error) {
	if r.ErrMarcar != nil {
		return 0, r.ErrMarcar
	}
	r.Registro.Agregar("marcar")

	r.mu.Lock()
	defer r.mu.Unlock()
	var afectadas int64
	for _, id := range ids {
		if inf, ok := r.Infracciones[id]; ok {
			f := fecha
			inf.Notificado = true
			inf.FechaNotificacion = &f
			inf.Estado = domain.EstadoNotificada
			afectadas++
		}
	}
	return afectadas, nil
}

func (r *InMemoryInfraccionRepo) RegistrarNotificacion(ctx context.Context, n *domain.Notificacion) error {
	if r.ErrRegistrar != nil {
		return r.ErrRegistrar
	}
	r.Registro.Agregar("registrar")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notificaciones = append(r.Notificaciones, n)
	return nil
}

// ---------------- Archivos fake ----------------

// FakeArchivoActas simula el layout de archivos sin tocar el disco.
type FakeArchivoActas struct {
	Dir        string
	Existentes map[string]bool // key: nro de acta canónico
}

func NewFakeArchivoActas(dir string) *FakeArchivoActas {
	return &FakeArchivoActas{Dir: dir, Existentes: make(map[string]bool)}
}

func (f *FakeArchivoActas) RutaActa(nro domain.NroActa) string {
	return filepath.Join(f.Dir, "pdfs", "ACTA-"+nro.String()+".pdf")
}

func (f *FakeArchivoActas) ExisteActa(nro domain.NroActa) (string, error) {
	if !f.Existentes[nro.String()] {
		return "", domain.ErrActaPdfFaltante{Nro: nro}
	}
	return f.RutaActa(nro), nil
}

func (f *FakeArchivoActas) RutasLote(stamp string) (string, string, error) {
	dir := filepath.Join(f.Dir, "lotes")
	return filepath.Join(dir, "LOTE-"+stamp+"-RESUMEN.pdf"),
		filepath.Join(dir, "LOTE-"+stamp+"-COMBINADO.pdf"),
		nil
}

// ---------------- PDF fakes ----------------

type FakeGeneradorResumen struct {
	Filas    []domain.FilaResumen
	Ruta     string
	Opts     domain.OpcionesResumen
	Err      error
	Registro *RegistroLlamadas
}

func (f *FakeGeneradorResumen) Generar(filas []domain.FilaResumen, ruta string, opts domain.OpcionesResumen) error {
	if f.Err != nil {
		return f.Err
	}
	f.Registro.Agregar("resumen")
	f.Filas = filas
	f.Ruta = ruta
	f.Opts = opts
	return nil
}

type FakeCombinador struct {
	Rutas    []string
	Destino  string
	Err      error
	Registro *RegistroLlamadas
}

func (f *FakeCombinador) Combinar(rutas []string, destino string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Registro.Agregar("combinar")
	f.Rutas = rutas
	f.Destino = destino
	return nil
}

// ---------------- Mailer fake ----------------

type EnvioRegistrado struct {
	To       string
	Asunto   string
	Cuerpo   string
	Adjuntos []domain.Adjunto
}

type DummyMailer struct {
	Enviados []EnvioRegistrado
	Err      error
	Registro *RegistroLlamadas
}

func (m *DummyMailer) Enviar(ctx context.Context, to, asunto, cuerpo string, adjuntos []domain.Adjunto) error {
	if m.Err != nil {
		return m.Err
	}
	m.Registro.Agregar("mail")
	m.Enviados = append(m.Enviados, EnvioRegistrado{To: to, Asunto: asunto, Cuerpo: cuerpo, Adjuntos: adjuntos})
	return nil
}

// ---------------- Publisher fake ----------------

type DummyPublisher struct {
	mu      sync.Mutex
	Eventos []interface{}
}

func (p *DummyPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Eventos = append(p.Eventos, event)
	return nil
}

// ---------------- Cache fake ----------------

type DummyCache struct {
	mu    sync.RWMutex
	datos map[string][]byte
	// Claves eliminadas, para verificar invalidación
	Eliminadas []string
}

func NewDummyCache() *DummyCache {
	return &DummyCache{datos: make(map[string][]byte)}
}

func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.datos[key]
	if !ok {
		return false, nil
	}
	return true, jsonUnmarshal(data, dest)
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	data, err := jsonMarshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.datos[key] = data
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.datos, key)
	c.Eliminadas = append(c.Eliminadas, key)
	return nil
}

// SetForTest inserta directamente un valor, para simular un hit.
func (c *DummyCache) SetForTest(key string, val interface{}) {
	_ = c.Set(context.Background(), key, val, 0)
}
