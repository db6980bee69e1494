package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-checker/internal/status"
	"ticket-checker/models"
)

func TestApplyStatus_MissingKeyIssuesNoWrite(t *testing.T) {
	fetcher := &fakeFetcher{}
	updater := NewUpdaterService(fetcher)

	view := models.NewTicketView() // both ids are the sentinel
	_, err := updater.ApplyStatus(context.Background(), view, models.StatusAprobado)

	assert.ErrorIs(t, err, status.ErrMissingKey)
	assert.Empty(t, fetcher.updates)
	assert.Zero(t, fetcher.detailCalls)
}

func TestApplyStatus_DetailKeyTakesPriority(t *testing.T) {
	fetcher := pendingFixture()
	updater := NewUpdaterService(fetcher)

	view := models.NewTicketView()
	view.IDDetalle = "88"
	view.NoDocumento = "4521"

	result, err := updater.ApplyStatus(context.Background(), view, models.StatusAprobado)
	require.NoError(t, err)

	require.Len(t, fetcher.updates, 1)
	assert.Equal(t, models.UpdateKey{IDDetalle: "88"}, fetcher.updates[0].key)
	assert.Equal(t, models.StatusAprobado, fetcher.updates[0].status)
	assert.Equal(t, "Entrada aprobada", result.Message)
}

func TestApplyStatus_FallsBackToDocumentNumber(t *testing.T) {
	fetcher := pendingFixture()
	updater := NewUpdaterService(fetcher)

	view := models.NewTicketView()
	view.NoDocumento = "4521"

	result, err := updater.ApplyStatus(context.Background(), view, models.StatusRechazado)
	require.NoError(t, err)

	require.Len(t, fetcher.updates, 1)
	assert.Equal(t, models.UpdateKey{NoDocumento: "4521"}, fetcher.updates[0].key)
	assert.Equal(t, "Entrada rechazada", result.Message)

	// No conditional pre-check without a detail id.
	assert.Zero(t, fetcher.detailCalls)
}

func TestApplyStatus_ConflictWhenAlreadyDecided(t *testing.T) {
	fetcher := pendingFixture()
	fetcher.details["88"].Status = models.StatusAprobado
	updater := NewUpdaterService(fetcher)

	view := models.NewTicketView()
	view.IDDetalle = "88"

	_, err := updater.ApplyStatus(context.Background(), view, models.StatusRechazado)

	assert.ErrorIs(t, err, status.ErrAlreadyDecided)
	assert.Empty(t, fetcher.updates)
}

func TestApplyStatus_GuardReadFailureDoesNotBlockWrite(t *testing.T) {
	fetcher := pendingFixture()
	fetcher.detailErr = assert.AnError
	updater := NewUpdaterService(fetcher)

	view := models.NewTicketView()
	view.IDDetalle = "88"

	_, err := updater.ApplyStatus(context.Background(), view, models.StatusAprobado)
	require.NoError(t, err)
	assert.Len(t, fetcher.updates, 1)
}

func TestApplyStatus_BackendRejectionIsUpdateFailed(t *testing.T) {
	fetcher := pendingFixture()
	fetcher.updateErr = status.ErrUpdateFailed
	updater := NewUpdaterService(fetcher)

	view := models.NewTicketView()
	view.IDDetalle = "88"

	_, err := updater.ApplyStatus(context.Background(), view, models.StatusAprobado)
	assert.ErrorIs(t, err, status.ErrUpdateFailed)
}

func TestApplyStatus_RejectsUnknownStatus(t *testing.T) {
	fetcher := pendingFixture()
	updater := NewUpdaterService(fetcher)

	view := models.NewTicketView()
	view.IDDetalle = "88"

	_, err := updater.ApplyStatus(context.Background(), view, "Quemado")
	assert.Error(t, err)
	assert.Empty(t, fetcher.updates)
}
