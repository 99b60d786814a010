package services

import (
	"context"
	"net/url"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Inventory covers products, stock levels and warehouse moves.
type Inventory struct {
	base
}

// NewInventory creates the inventory façade.
func NewInventory(c *client.Client) *Inventory {
	return &Inventory{base{client: c, name: "Inventory"}}
}

// ProductListParams is the fixed allowed parameter set for ListProducts.
type ProductListParams struct {
	Category    string
	WarehouseID string
	LowStock    bool
	Page        int
	PerPage     int
}

// ListProducts returns products.
func (s *Inventory) ListProducts(ctx context.Context, p ProductListParams) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "category", p.Category)
	setIf(params, "warehouse_id", p.WarehouseID)
	if p.LowStock {
		params.Set("low_stock", "true")
	}
	setIfInt(params, "page", p.Page)
	setIfInt(params, "per_page", p.PerPage)

	raw, err := s.client.Get(ctx, "/inventory/products"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/inventory/products")
	}
	return s.records(raw, passthrough, "GET", "/inventory/products")
}

// GetProduct returns one product.
func (s *Inventory) GetProduct(ctx context.Context, id string) (transform.Record, error) {
	endpoint := "/inventory/products/" + id
	raw, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, s.wrap(err, "GET", endpoint)
	}
	return s.record(raw, passthrough, "GET", endpoint)
}

// AdjustStock records a stock adjustment for a product.
func (s *Inventory) AdjustStock(ctx context.Context, productID string, rec transform.Record) (transform.Record, error) {
	endpoint := "/inventory/products/" + productID + "/adjust"
	raw, err := s.client.Post(ctx, endpoint, transform.Request(rec, passthrough))
	if err != nil {
		return nil, s.wrap(err, "POST", endpoint)
	}
	return s.record(raw, passthrough, "POST", endpoint)
}

// Transfer moves stock between warehouses. A single remote call.
func (s *Inventory) Transfer(ctx context.Context, rec transform.Record) (transform.Record, error) {
	raw, err := s.client.Post(ctx, "/inventory/transfers", transform.Request(rec, passthrough))
	if err != nil {
		return nil, s.wrap(err, "POST", "/inventory/transfers")
	}
	return s.record(raw, passthrough, "POST", "/inventory/transfers")
}
