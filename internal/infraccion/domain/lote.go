package domain

import (
	"time"
)

// ---------------- Selección de lote ----------------

// SeleccionLote es la unión de los tres modos de selección de un lote:
// por IDs explícitos, por período de fechas o por rango de números de acta.
// Se construye una sola vez en el borde HTTP; el resto del sistema trabaja
// con la forma ya normalizada.
type SeleccionLote interface {
	seleccionLote()
}

// PorIDs selecciona infracciones puntuales. Los IDs ya notificados o
// inexistentes se descartan silenciosamente en la consulta.
type PorIDs struct {
	IDs []int64
}

// PorPeriodo selecciona por fecha de labrado, ambos extremos inclusive.
type PorPeriodo struct {
	Desde time.Time
	Hasta time.Time
}

// PorRango selecciona por números de acta de una misma serie.
type PorRango struct {
	Desde NroActa
	Hasta NroActa
}

func (PorIDs) seleccionLote()     {}
func (PorPeriodo) seleccionLote() {}
func (PorRango) seleccionLote()   {}

// ---------------- Normalización del borde ----------------

// PeriodoCrudo y RangoCrudo son las formas tal cual llegan en el body.
// El endpoint acepta el rango como {nro_desde,nro_hasta} o {desde,hasta};
// el handler unifica ambas en RangoCrudo antes de llamar acá.
type PeriodoCrudo struct {
	Desde string
	Hasta string
}

type RangoCrudo struct {
	Desde string
	Hasta string
}

// SeleccionCruda agrupa los tres campos opcionales del request de lote.
type SeleccionCruda struct {
	Seleccion []int64
	Periodo   *PeriodoCrudo
	Rango     *RangoCrudo
}

// NormalizarSeleccion resuelve exactamente un modo de selección a partir del
// request. La precedencia es selección > período > rango. Si ninguno viene,
// devuelve ErrSinCriterio.
func NormalizarSeleccion(in SeleccionCruda) (SeleccionLote, error) {
	if len(in.Seleccion) > 0 {
		var ids []int64
		for _, id := range in.Seleccion {
			if id > 0 {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil, ErrSeleccionVacia
		}
		return PorIDs{IDs: ids}, nil
	}

	if in.Periodo != nil {
		desde, err := time.Parse("2006-01-02", in.Periodo.Desde)
		if err != nil {
			return nil, ErrPeriodoInvalido
		}
		hasta, err := time.Parse("2006-01-02", in.Periodo.Hasta)
		if err != nil {
			return nil, ErrPeriodoInvalido
		}
		return PorPeriodo{Desde: desde, Hasta: FinDeDia(hasta)}, nil
	}

	if in.Rango != nil {
		desde, err := ParseNroActa(in.Rango.Desde)
		if err != nil {
			return nil, err
		}
		hasta, err := ParseNroActa(in.Rango.Hasta)
		if err != nil {
			return nil, err
		}
		if desde.Serie != hasta.Serie {
			return nil, ErrRangoSeries
		}
		return PorRango{Desde: desde, Hasta: hasta}, nil
	}

	return nil, ErrSinCriterio
}
