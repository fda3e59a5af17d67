package domain

import (
	"time"

	sharedDomain "github.com/seguridadvial/actas/internal/shared/domain"
)

// ---------------- Implementaciones concretas ----------------

// Filtrado por número de acta exacto
type ActaExactaCriteria struct {
	Nro NroActa
}

func (c ActaExactaCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{
		{Field: "i.serie", Op: sharedDomain.OpEq, Value: c.Nro.Serie},
		{Field: "i.nro_correlativo", Op: sharedDomain.OpEq, Value: c.Nro.Correlativo},
	}
}

// Filtrado por rango de números de acta. Ambos extremos deben ser de la
// misma serie; eso se valida en NuevoRangoActas, no acá.
type RangoActasCriteria struct {
	Desde NroActa
	Hasta NroActa
}

func (c RangoActasCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{
		{Field: "i.serie", Op: sharedDomain.OpEq, Value: c.Desde.Serie},
		{Field: "i.nro_correlativo", Op: sharedDomain.OpGte, Value: c.Desde.Correlativo},
		{Field: "i.nro_correlativo", Op: sharedDomain.OpLte, Value: c.Hasta.Correlativo},
	}
}

// NuevoRangoActas valida que ambos extremos pertenezcan a la misma serie.
func NuevoRangoActas(desde, hasta NroActa) (RangoActasCriteria, error) {
	if desde.Serie != hasta.Serie {
		return RangoActasCriteria{}, ErrRangoSeries
	}
	return RangoActasCriteria{Desde: desde, Hasta: hasta}, nil
}

// Filtrado por período de fecha de labrado, inclusivo. El extremo superior
// se extiende al final del día (23:59:59).
type PeriodoCriteria struct {
	Desde time.Time
	Hasta time.Time
}

func (c PeriodoCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{
		{Field: "i.fecha_labrado", Op: sharedDomain.OpGte, Value: c.Desde},
		{Field: "i.fecha_labrado", Op: sharedDomain.OpLte, Value: FinDeDia(c.Hasta)},
	}
}

// Filtrado por estado de notificación (notificadas / no notificadas).
type EstadoCriteria struct {
	Notificado bool
}

func (c EstadoCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{
		{Field: "i.notificado", Op: sharedDomain.OpEq, Value: c.Notificado},
	}
}

// FinDeDia lleva una fecha al último segundo de su día.
func FinDeDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
