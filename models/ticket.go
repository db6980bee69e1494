package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Ticket status values as the billing backend stores them.
const (
	StatusPendiente = "Pendiente"
	StatusAprobado  = "Aprobado"
	StatusRechazado = "Rechazado"
)

// IsDecided reports whether a detail status is terminal.
func IsDecided(status string) bool {
	return status == StatusAprobado || status == StatusRechazado
}

// FlexInt decodes a JSON number that the PHP backend sometimes quotes.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("FlexInt: parse %q: %w", s, err)
	}
	*n = FlexInt(v)
	return nil
}

func (n FlexInt) Int() int { return int(n) }

// DetailRecord is one physical ticket allocation inside an order.
type DetailRecord struct {
	IDDetalle          string  `json:"idDetalle"`
	NoDocumento        string  `json:"noDocumento"`
	CantidadDeEntradas FlexInt `json:"cantidadDeEntradas"`
	Fila               FlexInt `json:"fila"`
	Zona               string  `json:"zona"`
	Status             string  `json:"status"`
}

// InvoiceRecord is a payment/order entry linking to an event.
type InvoiceRecord struct {
	NoDocumento string          `json:"noDocumento"`
	IDEvento    string          `json:"idEvento"`
	Monto       decimal.Decimal `json:"monto"`
}

// Invoice is the facturacion.php response: the endpoint answers with a
// single object for one-ticket orders and an array for multi-ticket
// orders. The shape is decided once here instead of at every call site.
type Invoice struct {
	Single *InvoiceRecord
	Batch  []InvoiceRecord
}

func (i *Invoice) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		i.Single = nil
		return json.Unmarshal(trimmed, &i.Batch)
	}
	i.Batch = nil
	i.Single = &InvoiceRecord{}
	return json.Unmarshal(trimmed, i.Single)
}

// First returns the record carrying the order-level fields.
func (i *Invoice) First() *InvoiceRecord {
	if len(i.Batch) > 0 {
		return &i.Batch[0]
	}
	return i.Single
}

// Count is the ticket count implied by the response shape: array length
// for a batch, 1 for a single record.
func (i *Invoice) Count() int {
	if i.Batch != nil {
		return len(i.Batch)
	}
	if i.Single != nil {
		return 1
	}
	return 0
}

func (i *Invoice) EventID() string {
	if first := i.First(); first != nil {
		return first.IDEvento
	}
	return ""
}

// EventRecord describes the event an order belongs to. Fecha is
// YYYY-MM-DD and Hora is HH:MM (24h) on the wire.
type EventRecord struct {
	IDEvento string `json:"idEvento"`
	Nombre   string `json:"nombre"`
	Fecha    string `json:"fecha"`
	Hora     string `json:"hora"`
	Lugar    string `json:"lugar"`
}
