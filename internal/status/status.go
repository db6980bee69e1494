package status

import "errors"

var (
	// ErrMissingKey means a status update was requested for a ticket view
	// that carries neither a usable idDetalle nor noDocumento.
	ErrMissingKey = errors.New("update: no usable ticket identifier")

	// ErrUpdateFailed means the backend rejected the status write or
	// answered with a body that is not valid JSON. Recoverable by retry.
	ErrUpdateFailed = errors.New("update: backend rejected status update")

	// ErrAlreadyDecided means the ticket left the Pendiente state between
	// resolution and the status write (another operator got there first).
	ErrAlreadyDecided = errors.New("update: ticket already decided")

	// ErrGateHeld means a resolution is already running for the device.
	ErrGateHeld = errors.New("gate: scan already in progress")
)
