package services

import (
	"context"
	"errors"
	"fmt"

	"ticket-checker/internal/status"
	"ticket-checker/models"
)

// UpdaterService performs the one-shot approve/reject transition. The
// backend remains the only true guard against a double transition; the
// pre-write check here just narrows the race window between two
// operators scanning the same ticket.
type UpdaterService struct {
	fetcher RecordFetcher
}

func NewUpdaterService(fetcher RecordFetcher) *UpdaterService {
	return &UpdaterService{fetcher: fetcher}
}

// ApplyStatus drives the state transition for a resolved ticket view.
// Key priority is idDetalle, then noDocumento; the "No encontrado"
// sentinel never counts as a key. With no usable key the call fails
// before any network I/O.
func (s *UpdaterService) ApplyStatus(ctx context.Context, view *models.TicketView, newStatus string) (*models.UpdateResult, error) {
	if newStatus != models.StatusAprobado && newStatus != models.StatusRechazado {
		return nil, fmt.Errorf("ApplyStatus: unsupported status %q", newStatus)
	}

	var key models.UpdateKey
	switch {
	case view.HasDetailID():
		key.IDDetalle = view.IDDetalle
	case view.HasDocumentNumber():
		key.NoDocumento = view.NoDocumento
	default:
		return nil, status.ErrMissingKey
	}

	// Conditional-write check on the detail path: refuse when the ticket
	// left Pendiente since it was resolved. A failed re-read does not
	// block the write.
	if key.IDDetalle != "" {
		if detail, err := s.fetcher.GetDetail(ctx, key.IDDetalle); err == nil && models.IsDecided(detail.Status) {
			return nil, fmt.Errorf("ApplyStatus: current status %s: %w", detail.Status, status.ErrAlreadyDecided)
		}
	}

	if err := s.fetcher.UpdateStatus(ctx, key, newStatus); err != nil {
		if errors.Is(err, status.ErrUpdateFailed) || errors.Is(err, status.ErrMissingKey) {
			return nil, err
		}
		return nil, fmt.Errorf("ApplyStatus: %v: %w", err, status.ErrUpdateFailed)
	}

	result := &models.UpdateResult{Status: newStatus, Message: "Entrada aprobada"}
	if newStatus == models.StatusRechazado {
		result.Message = "Entrada rechazada"
	}
	return result, nil
}
