package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"ticket-checker/internal/scan"
	"ticket-checker/models"
)

// Operator-facing messages. The door app renders these verbatim.
const (
	msgInvalid         = "Entrada no válida."
	msgAlreadyApproved = "Esta entrada ya fue aprobada."
	msgAlreadyRejected = "Esta entrada ya fue rechazada."
)

// RecordFetcher is the read/write surface of the billing backend the
// resolver needs. Implemented by gaitera.Client.
type RecordFetcher interface {
	ListDetails(ctx context.Context) ([]models.DetailRecord, error)
	GetDetail(ctx context.Context, idDetalle string) (*models.DetailRecord, error)
	GetInvoice(ctx context.Context, noDocumento string) (*models.Invoice, error)
	GetEvent(ctx context.Context, idEvento string) (*models.EventRecord, error)
	UpdateStatus(ctx context.Context, key models.UpdateKey, status string) error
}

// ResolverService turns one raw scan payload into a verdict. It holds
// no state between scans; every record is fetched fresh.
type ResolverService struct {
	fetcher RecordFetcher
}

func NewResolverService(fetcher RecordFetcher) *ResolverService {
	return &ResolverService{fetcher: fetcher}
}

// Resolve runs the full pipeline for one scan. Read failures never
// abort the pipeline: each one degrades to missing data and the final
// emptiness check decides whether anything was found at all.
func (s *ResolverService) Resolve(ctx context.Context, raw string) *models.Verdict {
	id := scan.Extract(raw)
	if id.Kind == scan.KindUnrecognized {
		return &models.Verdict{Kind: models.VerdictInvalid, Message: msgInvalid}
	}

	view := models.NewTicketView()
	var noDocumento string
	detailPath := id.Kind == scan.KindDetail

	if detailPath {
		detail, crossRef := s.lookupDetail(ctx, id.Value)

		// The identifier counts as resolved only when the backend
		// actually knows it.
		if detail != nil || crossRef != nil {
			view.IDDetalle = id.Value
		}

		if detail != nil {
			if models.IsDecided(detail.Status) {
				// Terminal: no invoice/event lookup, no update path.
				populateSeat(view, detail)
				return &models.Verdict{
					Kind:    models.VerdictAlreadyDecided,
					Status:  detail.Status,
					Message: decidedMessage(detail.Status),
					Ticket:  view,
				}
			}

			if crossRef != nil {
				// The filtered record is authoritative; the list entry
				// fills whatever it lacks.
				populateSeat(view, detail)
				if view.Fila == "" {
					view.Fila = positiveCount(crossRef.Fila.Int())
				}
				if view.Zona == "" {
					view.Zona = crossRef.Zona
				}

				doc := detail.NoDocumento
				if doc == "" {
					doc = crossRef.NoDocumento
				}
				if doc != "" {
					noDocumento = doc
					view.NoDocumento = doc
				}
			}
		}
	} else {
		noDocumento = id.Value
	}

	if noDocumento != "" {
		s.lookupInvoiceAndEvent(ctx, view, noDocumento, detailPath)
	}

	if view.Empty() {
		return &models.Verdict{Kind: models.VerdictInvalid, Message: msgInvalid}
	}

	return &models.Verdict{Kind: models.VerdictResolved, Ticket: view}
}

// lookupDetail issues the filtered and the unfiltered detail request
// concurrently; there is no ordering dependency between the two. The
// list is cross-referenced to recover fields the single record lacks.
func (s *ResolverService) lookupDetail(ctx context.Context, idDetalle string) (*models.DetailRecord, *models.DetailRecord) {
	var (
		detail *models.DetailRecord
		list   []models.DetailRecord
		wg     sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		d, err := s.fetcher.GetDetail(ctx, idDetalle)
		if err != nil {
			slog.Warn("resolve: detail fetch failed", "idDetalle", idDetalle, "error", err)
			return
		}
		detail = d
	}()
	go func() {
		defer wg.Done()
		l, err := s.fetcher.ListDetails(ctx)
		if err != nil {
			slog.Warn("resolve: detail list fetch failed", "error", err)
			return
		}
		list = l
	}()
	wg.Wait()

	var crossRef *models.DetailRecord
	for i := range list {
		if list[i].IDDetalle == idDetalle {
			crossRef = &list[i]
			break
		}
	}
	return detail, crossRef
}

// lookupInvoiceAndEvent fills the order and event fields. The event
// fetch depends on the invoice resolving an idEvento; a missing event
// leaves the descriptive fields empty without failing the pipeline.
func (s *ResolverService) lookupInvoiceAndEvent(ctx context.Context, view *models.TicketView, noDocumento string, detailPath bool) {
	inv, err := s.fetcher.GetInvoice(ctx, noDocumento)
	if err != nil {
		slog.Warn("resolve: invoice fetch failed", "noDocumento", noDocumento, "error", err)
		return
	}
	if inv.Count() == 0 {
		return
	}

	view.NoDocumento = noDocumento

	// Ticket count precedence: the detail record owns the count whenever
	// the DetailId path ran; the batch length only counts tickets on a
	// pure DocumentNumber scan.
	if !detailPath {
		view.Cantidad = strconv.Itoa(inv.Count())
	}

	if first := inv.First(); first != nil && !first.Monto.IsZero() {
		view.Monto = first.Monto.StringFixed(2)
	}

	idEvento := inv.EventID()
	if idEvento == "" {
		return
	}

	event, err := s.fetcher.GetEvent(ctx, idEvento)
	if err != nil {
		slog.Warn("resolve: event fetch failed", "idEvento", idEvento, "error", err)
		return
	}

	view.Nombre = event.Nombre
	view.Fecha = formatFecha(event.Fecha)
	view.Hora = formatHora(event.Hora)
	view.Lugar = event.Lugar
}

func populateSeat(view *models.TicketView, detail *models.DetailRecord) {
	view.Cantidad = positiveCount(detail.CantidadDeEntradas.Int())
	view.Fila = positiveCount(detail.Fila.Int())
	view.Zona = detail.Zona
}

func positiveCount(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func decidedMessage(st string) string {
	if st == models.StatusAprobado {
		return msgAlreadyApproved
	}
	return msgAlreadyRejected
}

// formatFecha renders YYYY-MM-DD as DD/MM/YYYY. Anything else passes
// through untouched.
func formatFecha(fecha string) string {
	parts := strings.Split(fecha, "-")
	if len(parts) != 3 {
		return fecha
	}
	return fmt.Sprintf("%s/%s/%s", parts[2], parts[1], parts[0])
}

// formatHora renders HH:MM (24h) as a 12-hour clock with AM/PM.
func formatHora(hora string) string {
	parts := strings.Split(hora, ":")
	if len(parts) != 2 {
		return hora
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return hora
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return hora
	}

	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}
