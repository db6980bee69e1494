package models

// NotFound is the sentinel shown for an identifier that could not be
// resolved. The updater must treat it as "no key", never as a real id.
const NotFound = "No encontrado"

// TicketView is the presentation-ready projection of a resolved scan.
// All fields are display strings: fecha is DD/MM/YYYY, hora is 12-hour
// with AM/PM, cantidad is the ticket count.
type TicketView struct {
	IDDetalle   string `json:"idDetalle"`
	NoDocumento string `json:"noDocumento"`
	Nombre      string `json:"nombre"`
	Fecha       string `json:"fecha"`
	Hora        string `json:"hora"`
	Lugar       string `json:"lugar"`
	Fila        string `json:"fila"`
	Cantidad    string `json:"cantidad"`
	Zona        string `json:"zona"`
	Monto       string `json:"monto,omitempty"`
}

// NewTicketView starts a view with both identifiers unresolved.
func NewTicketView() *TicketView {
	return &TicketView{
		IDDetalle:   NotFound,
		NoDocumento: NotFound,
	}
}

func (v *TicketView) HasDetailID() bool {
	return v.IDDetalle != "" && v.IDDetalle != NotFound
}

func (v *TicketView) HasDocumentNumber() bool {
	return v.NoDocumento != "" && v.NoDocumento != NotFound
}

// Empty reports whether the scan matched nothing at all: no identifier
// resolved and every descriptive field still blank.
func (v *TicketView) Empty() bool {
	return !v.HasDetailID() && !v.HasDocumentNumber() &&
		v.Nombre == "" && v.Fecha == "" && v.Hora == "" && v.Lugar == "" &&
		v.Fila == "" && v.Cantidad == "" && v.Zona == ""
}

// VerdictKind classifies the outcome of one resolution.
type VerdictKind string

const (
	VerdictResolved       VerdictKind = "resolved"
	VerdictAlreadyDecided VerdictKind = "already_decided"
	VerdictInvalid        VerdictKind = "invalid"
)

// Verdict is what the operator app renders after a scan.
type Verdict struct {
	Kind    VerdictKind `json:"verdict"`
	Status  string      `json:"status,omitempty"`
	Message string      `json:"message,omitempty"`
	Ticket  *TicketView `json:"ticket,omitempty"`
}

// UpdateKey selects the ticket a status write targets. Exactly one
// field is set.
type UpdateKey struct {
	IDDetalle   string
	NoDocumento string
}

// UpdateResult is returned to the operator after a status transition.
type UpdateResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
