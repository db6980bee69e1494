// Package gaitera is the read/write client for the catedraGaitera
// billing backend. Every read is independently fallible; callers fold
// errors into missing data instead of aborting a resolution.
package gaitera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ticket-checker/internal/status"
	"ticket-checker/models"
	"ticket-checker/monitoring"
	"ticket-checker/utils"
)

type ClientConfig struct {
	BaseURL string `json:"baseUrl" mapstructure:"base_url"`
	Timeout time.Duration
}

type Client struct {
	// baseURL is the base url of the billing backend.
	baseURL string

	// cb trips when the backend starts failing in bulk.
	cb *utils.CircuitBreaker

	// hc is the http client.
	hc *http.Client
}

// NewClient creates a new billing backend client.
func NewClient(c *ClientConfig) *Client {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(c.BaseURL, "/"),
		cb:      utils.NewCircuitBreaker("gaitera"),

		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListDetails fetches every detail record. The unfiltered list is
// cross-referenced by the resolver to recover a noDocumento when the
// single record does not carry one.
func (c *Client) ListDetails(ctx context.Context) ([]models.DetailRecord, error) {
	var details []models.DetailRecord
	if err := c.getJSON(ctx, "detalles", "/facturacion/detalles.php", nil, &details); err != nil {
		return nil, fmt.Errorf("ListDetails: %w", err)
	}
	return details, nil
}

// GetDetail fetches the single authoritative record for one ticket.
func (c *Client) GetDetail(ctx context.Context, idDetalle string) (*models.DetailRecord, error) {
	query := url.Values{"idDetalle": []string{idDetalle}}

	var detail models.DetailRecord
	if err := c.getJSON(ctx, "detalles", "/facturacion/detalles.php", query, &detail); err != nil {
		return nil, fmt.Errorf("GetDetail: %w", err)
	}
	return &detail, nil
}

// GetInvoice fetches the payment record(s) for a document number. The
// endpoint answers with one object or an array; models.Invoice absorbs
// both shapes.
func (c *Client) GetInvoice(ctx context.Context, noDocumento string) (*models.Invoice, error) {
	query := url.Values{"noDocumento": []string{noDocumento}}

	var invoice models.Invoice
	if err := c.getJSON(ctx, "facturacion", "/facturacion/facturacion.php", query, &invoice); err != nil {
		return nil, fmt.Errorf("GetInvoice: %w", err)
	}
	return &invoice, nil
}

// GetEvent fetches the event a ticket belongs to.
func (c *Client) GetEvent(ctx context.Context, idEvento string) (*models.EventRecord, error) {
	query := url.Values{"idEvento": []string{idEvento}}

	var event models.EventRecord
	if err := c.getJSON(ctx, "eventos", "/eventos/eventos.php", query, &event); err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	return &event, nil
}

// UpdateStatus performs the one-shot approve/reject write. A non-2xx
// response or an unparsable ack body both map to status.ErrUpdateFailed
// so the operator can retry.
func (c *Client) UpdateStatus(ctx context.Context, key models.UpdateKey, newStatus string) error {
	var body string
	switch {
	case key.IDDetalle != "":
		body = fmt.Sprintf(`{"accion":"actualizarStatus","status":%q,"idDetalle":%q}`, newStatus, key.IDDetalle)
	case key.NoDocumento != "":
		body = fmt.Sprintf(`{"accion":"actualizarStatus","status":%q,"noDocumento":%q}`, newStatus, key.NoDocumento)
	default:
		return status.ErrMissingKey
	}

	_, err := c.cb.Execute(ctx, func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/facturacion/detalles.php", bytes.NewReader([]byte(body)))
		if err != nil {
			return nil, fmt.Errorf("UpdateStatus: http.NewReq: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("UpdateStatus: http.Do: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode/100 != 2 {
			rbody, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("UpdateStatus: resp.StatusCode: %d, resp.Body: %s: %w", resp.StatusCode, rbody, status.ErrUpdateFailed)
		}

		var ack map[string]any
		dec := json.NewDecoder(resp.Body)
		if err := dec.Decode(&ack); err != nil {
			return nil, fmt.Errorf("UpdateStatus: json.Decode: %v: %w", err, status.ErrUpdateFailed)
		}
		return nil, nil
	})
	if err != nil {
		monitoring.TrackBackendFailure("actualizarStatus")
	}
	return err
}

// getJSON runs one GET through the circuit breaker and decodes the
// response into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out interface{}) error {
	_, err := c.cb.Execute(ctx, func() (interface{}, error) {
		u := c.baseURL + path
		if query != nil {
			u += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("http.NewReq: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http.Do: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			rbody, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("resp.StatusCode: %d, resp.Body: %s", resp.StatusCode, rbody)
		}

		dec := json.NewDecoder(resp.Body)
		if err := dec.Decode(out); err != nil {
			return nil, fmt.Errorf("json.Decode: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		monitoring.TrackBackendFailure(endpoint)
	}
	return err
}
