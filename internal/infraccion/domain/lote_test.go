package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizarSeleccion_PorIDs(t *testing.T) {
	sel, err := NormalizarSeleccion(SeleccionCruda{Seleccion: []int64{3, 1, 2}})
	assert.NoError(t, err)

	porIDs, ok := sel.(PorIDs)
	assert.True(t, ok)
	assert.Equal(t, []int64{3, 1, 2}, porIDs.IDs)
}

func TestNormalizarSeleccion_PorIDs_FiltraInvalidos(t *testing.T) {
	sel, err := NormalizarSeleccion(SeleccionCruda{Seleccion: []int64{0, -5, 9}})
	assert.NoError(t, err)
	assert.Equal(t, PorIDs{IDs: []int64{9}}, sel)
}

func TestNormalizarSeleccion_SeleccionVacia(t *testing.T) {
	_, err := NormalizarSeleccion(SeleccionCruda{Seleccion: []int64{0, -1}})
	assert.ErrorIs(t, err, ErrSeleccionVacia)
}

func TestNormalizarSeleccion_PorPeriodo_ExtiendeFinDeDia(t *testing.T) {
	sel, err := NormalizarSeleccion(SeleccionCruda{
		Periodo: &PeriodoCrudo{Desde: "2024-03-01", Hasta: "2024-03-15"},
	})
	assert.NoError(t, err)

	porPeriodo, ok := sel.(PorPeriodo)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), porPeriodo.Desde)
	assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC), porPeriodo.Hasta)
}

func TestNormalizarSeleccion_PeriodoInvalido(t *testing.T) {
	_, err := NormalizarSeleccion(SeleccionCruda{
		Periodo: &PeriodoCrudo{Desde: "01/03/2024", Hasta: "2024-03-15"},
	})
	assert.ErrorIs(t, err, ErrPeriodoInvalido)
}

func TestNormalizarSeleccion_PorRango(t *testing.T) {
	sel, err := NormalizarSeleccion(SeleccionCruda{
		Rango: &RangoCrudo{Desde: "A-0000010", Hasta: "A-0000020"},
	})
	assert.NoError(t, err)

	porRango, ok := sel.(PorRango)
	assert.True(t, ok)
	assert.Equal(t, 10, porRango.Desde.Correlativo)
	assert.Equal(t, 20, porRango.Hasta.Correlativo)
}

func TestNormalizarSeleccion_RangoDeSeriesDistintas(t *testing.T) {
	// El rango entre series distintas es inválido sin importar los números.
	_, err := NormalizarSeleccion(SeleccionCruda{
		Rango: &RangoCrudo{Desde: "A-0000010", Hasta: "B-0000020"},
	})
	assert.ErrorIs(t, err, ErrRangoSeries)
}

func TestNormalizarSeleccion_SinCriterio(t *testing.T) {
	_, err := NormalizarSeleccion(SeleccionCruda{})
	assert.ErrorIs(t, err, ErrSinCriterio)
}

func TestNormalizarSeleccion_PrecedenciaSeleccionSobrePeriodo(t *testing.T) {
	sel, err := NormalizarSeleccion(SeleccionCruda{
		Seleccion: []int64{1},
		Periodo:   &PeriodoCrudo{Desde: "2024-01-01", Hasta: "2024-01-31"},
	})
	assert.NoError(t, err)
	assert.IsType(t, PorIDs{}, sel)
}
