package services

import (
	"context"
	"net/url"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Sales covers customers, quotes and sales orders.
type Sales struct {
	base
}

// NewSales creates the sales façade.
func NewSales(c *client.Client) *Sales {
	return &Sales{base{client: c, name: "Sales"}}
}

// CustomerListParams is the fixed allowed parameter set for ListCustomers.
type CustomerListParams struct {
	Search  string
	Active  string // "true", "false" or empty for all
	Page    int
	PerPage int
}

// ListCustomers returns customers.
func (s *Sales) ListCustomers(ctx context.Context, p CustomerListParams) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "search", p.Search)
	setIf(params, "active", p.Active)
	setIfInt(params, "page", p.Page)
	setIfInt(params, "per_page", p.PerPage)

	raw, err := s.client.Get(ctx, "/sales/customers"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/sales/customers")
	}
	return s.records(raw, transform.User, "GET", "/sales/customers")
}

// CreateQuote creates a sales quote.
func (s *Sales) CreateQuote(ctx context.Context, rec transform.Record) (transform.Record, error) {
	raw, err := s.client.Post(ctx, "/sales/quotes", transform.Request(rec, passthrough))
	if err != nil {
		return nil, s.wrap(err, "POST", "/sales/quotes")
	}
	return s.record(raw, passthrough, "POST", "/sales/quotes")
}

// ConvertQuote converts a quote into a sales order. The server owns the
// whole workflow; this is one POST, not a client-orchestrated sequence.
func (s *Sales) ConvertQuote(ctx context.Context, quoteID string) (transform.Record, error) {
	endpoint := "/sales/quotes/" + quoteID + "/convert"
	raw, err := s.client.Post(ctx, endpoint, nil)
	if err != nil {
		return nil, s.wrap(err, "POST", endpoint)
	}
	return s.record(raw, passthrough, "POST", endpoint)
}

// ListOrders returns sales orders.
func (s *Sales) ListOrders(ctx context.Context, status string, page int) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "status", status)
	setIfInt(params, "page", page)

	raw, err := s.client.Get(ctx, "/sales/orders"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/sales/orders")
	}
	return s.records(raw, passthrough, "GET", "/sales/orders")
}
