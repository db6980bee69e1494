package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"ticket-checker/internal/status"
	"ticket-checker/models"
	"ticket-checker/monitoring"
	"ticket-checker/utils"
)

type Resolver interface {
	Resolve(ctx context.Context, raw string) *models.Verdict
}

type Updater interface {
	ApplyStatus(ctx context.Context, view *models.TicketView, newStatus string) (*models.UpdateResult, error)
}

type Gate interface {
	Acquire(ctx context.Context, deviceID string) error
	Release(ctx context.Context, deviceID string) error
	State(ctx context.Context, deviceID string) (string, error)
}

type Notifier interface {
	PublishVerdict(deviceID string, verdict *models.Verdict)
	PublishStatusUpdate(deviceID string, result *models.UpdateResult)
}

type ScanHandler struct {
	resolver Resolver
	updater  Updater
	gate     Gate
	notifier Notifier
}

func NewScanHandler(resolver Resolver, updater Updater, gate Gate, notifier Notifier) *ScanHandler {
	return &ScanHandler{
		resolver: resolver,
		updater:  updater,
		gate:     gate,
		notifier: notifier,
	}
}

// ResolveScan runs one scan through the pipeline. The device gate stays
// held for a Resolved verdict until the operator approves, rejects or
// dismisses; Invalid and AlreadyDecided re-open it immediately so the
// operator can re-scan.
func (h *ScanHandler) ResolveScan(c echo.Context) error {
	var req struct {
		DeviceID string `json:"device_id"`
		Data     string `json:"data"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.DeviceID == "" || req.Data == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "device_id and data are required"})
	}

	ctx := c.Request().Context()

	if err := h.gate.Acquire(ctx, req.DeviceID); err != nil {
		if errors.Is(err, status.ErrGateHeld) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Scan already in progress"})
		}
		// Gate coordination is best-effort: a Redis hiccup must not
		// stop the door.
		slog.Error("scan: gate acquire failed", "deviceID", req.DeviceID, "error", err)
	}

	scanID, _ := utils.GenerateCode(4)

	start := time.Now()
	verdict := h.resolver.Resolve(ctx, req.Data)
	monitoring.TrackResolution(string(verdict.Kind), time.Since(start))

	slog.Info("scan resolved",
		"scanID", scanID,
		"deviceID", req.DeviceID,
		"verdict", verdict.Kind,
	)

	h.notifier.PublishVerdict(req.DeviceID, verdict)

	if verdict.Kind != models.VerdictResolved {
		if err := h.gate.Release(ctx, req.DeviceID); err != nil {
			slog.Error("scan: gate release failed", "deviceID", req.DeviceID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, verdict)
}

// ApplyStatus drives the approve/reject transition for the ticket the
// device last resolved. The gate re-opens on success and on the
// unrecoverable failures; it stays held on UpdateFailed so the operator
// may retry without re-scanning.
func (h *ScanHandler) ApplyStatus(c echo.Context) error {
	var req struct {
		DeviceID    string `json:"device_id"`
		IDDetalle   string `json:"idDetalle"`
		NoDocumento string `json:"noDocumento"`
		Status      string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.DeviceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "device_id is required"})
	}

	ctx := c.Request().Context()

	view := models.NewTicketView()
	if req.IDDetalle != "" {
		view.IDDetalle = req.IDDetalle
	}
	if req.NoDocumento != "" {
		view.NoDocumento = req.NoDocumento
	}

	result, err := h.updater.ApplyStatus(ctx, view, req.Status)
	switch {
	case errors.Is(err, status.ErrMissingKey):
		monitoring.TrackStatusUpdate(req.Status, "missing_key")
		h.releaseGate(ctx, req.DeviceID)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No usable ticket identifier"})

	case errors.Is(err, status.ErrAlreadyDecided):
		monitoring.TrackStatusUpdate(req.Status, "conflict")
		h.releaseGate(ctx, req.DeviceID)
		return c.JSON(http.StatusConflict, map[string]string{"error": "Ticket was already decided"})

	case err != nil:
		monitoring.TrackStatusUpdate(req.Status, "failed")
		slog.Error("scan: status update failed", "deviceID", req.DeviceID, "error", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Status update failed, retry or re-scan"})
	}

	monitoring.TrackStatusUpdate(req.Status, "ok")
	h.notifier.PublishStatusUpdate(req.DeviceID, result)
	h.releaseGate(ctx, req.DeviceID)

	return c.JSON(http.StatusOK, result)
}

// DismissScan releases the gate when the operator closes a resolved
// ticket without deciding it.
func (h *ScanHandler) DismissScan(c echo.Context) error {
	var req struct {
		DeviceID string `json:"device_id"`
	}
	if err := c.Bind(&req); err != nil || req.DeviceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "device_id is required"})
	}

	h.releaseGate(c.Request().Context(), req.DeviceID)

	return c.JSON(http.StatusOK, map[string]string{"state": "idle"})
}

// GateState lets the app re-sync after a restart.
func (h *ScanHandler) GateState(c echo.Context) error {
	deviceID := c.QueryParam("device_id")
	if deviceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "device_id is required"})
	}

	state, err := h.gate.State(c.Request().Context(), deviceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Gate state unavailable"})
	}

	return c.JSON(http.StatusOK, map[string]string{"state": state})
}

func (h *ScanHandler) releaseGate(ctx context.Context, deviceID string) {
	if err := h.gate.Release(ctx, deviceID); err != nil {
		slog.Error("scan: gate release failed", "deviceID", deviceID, "error", err)
	}
}
