package services

import (
	"context"
	"net/url"
	"time"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Invoicing covers invoice CRUD, sending and payment marking.
type Invoicing struct {
	base
}

// NewInvoicing creates the invoicing façade.
func NewInvoicing(c *client.Client) *Invoicing {
	return &Invoicing{base{client: c, name: "Invoicing"}}
}

// InvoiceListParams is the fixed allowed parameter set for List.
type InvoiceListParams struct {
	Status     string
	CustomerID string
	DateFrom   time.Time
	DateTo     time.Time
	Page       int
	PerPage    int
}

// List returns invoices matching the defined parameters.
func (s *Invoicing) List(ctx context.Context, p InvoiceListParams) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "status", p.Status)
	setIf(params, "customer_id", p.CustomerID)
	setIfTime(params, "date_from", p.DateFrom)
	setIfTime(params, "date_to", p.DateTo)
	setIfInt(params, "page", p.Page)
	setIfInt(params, "per_page", p.PerPage)

	endpoint := "/invoices" + query(params)
	raw, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, s.wrap(err, "GET", "/invoices")
	}
	return s.records(raw, transform.Invoice, "GET", "/invoices")
}

// Get returns one invoice.
func (s *Invoicing) Get(ctx context.Context, id string) (transform.Record, error) {
	endpoint := "/invoices/" + id
	raw, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, s.wrap(err, "GET", endpoint)
	}
	return s.record(raw, transform.Invoice, "GET", endpoint)
}

// Create creates an invoice from an application-shaped record.
func (s *Invoicing) Create(ctx context.Context, rec transform.Record) (transform.Record, error) {
	raw, err := s.client.Post(ctx, "/invoices", transform.Request(rec, transform.Invoice))
	if err != nil {
		return nil, s.wrap(err, "POST", "/invoices")
	}
	return s.record(raw, transform.Invoice, "POST", "/invoices")
}

// Update applies a partial update to an invoice.
func (s *Invoicing) Update(ctx context.Context, id string, rec transform.Record) (transform.Record, error) {
	endpoint := "/invoices/" + id
	raw, err := s.client.Patch(ctx, endpoint, transform.Request(rec, transform.Invoice))
	if err != nil {
		return nil, s.wrap(err, "PATCH", endpoint)
	}
	return s.record(raw, transform.Invoice, "PATCH", endpoint)
}

// Send emails an invoice to its customer. A single remote call: the server
// owns rendering and delivery.
func (s *Invoicing) Send(ctx context.Context, id string) error {
	endpoint := "/invoices/" + id + "/send"
	if _, err := s.client.Post(ctx, endpoint, nil); err != nil {
		return s.wrap(err, "POST", endpoint)
	}
	return nil
}

// MarkPaid records a payment against an invoice.
func (s *Invoicing) MarkPaid(ctx context.Context, id string, paidAt time.Time) (transform.Record, error) {
	endpoint := "/invoices/" + id + "/mark-paid"
	body := transform.Request(transform.Record{"paidAt": paidAt}, transform.Invoice)
	raw, err := s.client.Post(ctx, endpoint, body)
	if err != nil {
		return nil, s.wrap(err, "POST", endpoint)
	}
	return s.record(raw, transform.Invoice, "POST", endpoint)
}

// Delete removes an invoice.
func (s *Invoicing) Delete(ctx context.Context, id string) error {
	endpoint := "/invoices/" + id
	if _, err := s.client.Delete(ctx, endpoint); err != nil {
		return s.wrap(err, "DELETE", endpoint)
	}
	return nil
}
