package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNroActa_Validos(t *testing.T) {
	casos := []struct {
		entrada     string
		serie       string
		correlativo int
	}{
		{"A1234567", "A", 1234567},
		{"A-1234567", "A", 1234567},
		{"a-1234567", "A", 1234567},
		{"A-0000001", "A", 1},
		{"B42", "B", 42},
		{" C - 0000123 ", "C", 123},
	}

	for _, c := range casos {
		nro, err := ParseNroActa(c.entrada)
		assert.NoError(t, err, "entrada %q", c.entrada)
		assert.Equal(t, c.serie, nro.Serie)
		assert.Equal(t, c.correlativo, nro.Correlativo)
	}
}

func TestParseNroActa_Invalidos(t *testing.T) {
	casos := []string{
		"",
		"1234567",    // sin letra
		"A",          // sin dígitos
		"A-12345678", // más de 7 dígitos
		"AB-1234567", // dos letras
		"A-12B4",     // dígitos con letra intercalada
	}

	for _, c := range casos {
		_, err := ParseNroActa(c)
		assert.ErrorIs(t, err, ErrNroActaInvalido, "entrada %q", c)
	}
}

func TestNroActa_String_RellenaACieteDigitos(t *testing.T) {
	nro := NroActa{Serie: "A", Correlativo: 1}
	assert.Equal(t, "A-0000001", nro.String())

	nro = NroActa{Serie: "Z", Correlativo: 9999999}
	assert.Equal(t, "Z-9999999", nro.String())
}

func TestInfraccion_MarshalJSON_IncluyeNroActa(t *testing.T) {
	inf := Infraccion{ID: 7, Serie: "A", NroCorrelativo: 321, Dominio: "AB123CD"}

	data, err := json.Marshal(inf)
	assert.NoError(t, err)

	var m map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "A-0000321", m["nro_acta"])
	assert.Equal(t, "AB123CD", m["dominio"])
}
