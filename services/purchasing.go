package services

import (
	"context"
	"net/url"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Purchasing covers suppliers and purchase orders.
type Purchasing struct {
	base
}

// NewPurchasing creates the purchasing façade.
func NewPurchasing(c *client.Client) *Purchasing {
	return &Purchasing{base{client: c, name: "Purchasing"}}
}

// ListSuppliers returns suppliers.
func (s *Purchasing) ListSuppliers(ctx context.Context, search string, page int) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "search", search)
	setIfInt(params, "page", page)

	raw, err := s.client.Get(ctx, "/purchasing/suppliers"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/purchasing/suppliers")
	}
	return s.records(raw, passthrough, "GET", "/purchasing/suppliers")
}

// CreateOrder creates a purchase order.
func (s *Purchasing) CreateOrder(ctx context.Context, rec transform.Record) (transform.Record, error) {
	raw, err := s.client.Post(ctx, "/purchasing/orders", transform.Request(rec, passthrough))
	if err != nil {
		return nil, s.wrap(err, "POST", "/purchasing/orders")
	}
	return s.record(raw, passthrough, "POST", "/purchasing/orders")
}

// ReceiveOrder records receipt of goods against a purchase order.
func (s *Purchasing) ReceiveOrder(ctx context.Context, orderID string, rec transform.Record) (transform.Record, error) {
	endpoint := "/purchasing/orders/" + orderID + "/receive"
	raw, err := s.client.Post(ctx, endpoint, transform.Request(rec, passthrough))
	if err != nil {
		return nil, s.wrap(err, "POST", endpoint)
	}
	return s.record(raw, passthrough, "POST", endpoint)
}

// ApproveOrder approves a pending purchase order.
func (s *Purchasing) ApproveOrder(ctx context.Context, orderID string) error {
	endpoint := "/purchasing/orders/" + orderID + "/approve"
	if _, err := s.client.Post(ctx, endpoint, nil); err != nil {
		return s.wrap(err, "POST", endpoint)
	}
	return nil
}
