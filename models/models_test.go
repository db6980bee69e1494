package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoice_UnmarshalSingle(t *testing.T) {
	raw := `{"noDocumento":"4521","idEvento":"7","monto":"150.00"}`

	var inv Invoice
	require.NoError(t, json.Unmarshal([]byte(raw), &inv))

	assert.Nil(t, inv.Batch)
	require.NotNil(t, inv.Single)
	assert.Equal(t, "4521", inv.Single.NoDocumento)
	assert.Equal(t, 1, inv.Count())
	assert.Equal(t, "7", inv.EventID())
	assert.Equal(t, "150", inv.First().Monto.String())
}

func TestInvoice_UnmarshalBatch(t *testing.T) {
	raw := `[
		{"noDocumento":"4521","idEvento":"7","monto":50},
		{"noDocumento":"4521","idEvento":"7","monto":50},
		{"noDocumento":"4521","idEvento":"7","monto":50}
	]`

	var inv Invoice
	require.NoError(t, json.Unmarshal([]byte(raw), &inv))

	assert.Nil(t, inv.Single)
	assert.Equal(t, 3, inv.Count())
	assert.Equal(t, "7", inv.EventID())
}

func TestInvoice_EmptyBatch(t *testing.T) {
	var inv Invoice
	require.NoError(t, json.Unmarshal([]byte(`[]`), &inv))

	assert.Equal(t, 0, inv.Count())
	assert.Nil(t, inv.First())
	assert.Equal(t, "", inv.EventID())
}

func TestFlexInt_QuotedAndBare(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
		err  bool
	}{
		{"bare number", `{"cantidadDeEntradas":4,"fila":12}`, 4, false},
		{"quoted number", `{"cantidadDeEntradas":"4","fila":"12"}`, 4, false},
		{"null", `{"cantidadDeEntradas":null}`, 0, false},
		{"garbage", `{"cantidadDeEntradas":"abc"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d DetailRecord
			err := json.Unmarshal([]byte(tt.raw), &d)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.CantidadDeEntradas.Int())
		})
	}
}

func TestTicketView_Empty(t *testing.T) {
	view := NewTicketView()
	assert.True(t, view.Empty())
	assert.False(t, view.HasDetailID())
	assert.False(t, view.HasDocumentNumber())

	view.Zona = "VIP"
	assert.False(t, view.Empty())

	view = NewTicketView()
	view.IDDetalle = "88"
	assert.True(t, view.HasDetailID())
	assert.False(t, view.Empty())
}
