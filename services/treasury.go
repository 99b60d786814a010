package services

import (
	"context"
	"net/url"
	"time"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Treasury covers cash position, forecasts and currency exposure.
type Treasury struct {
	base
}

// NewTreasury creates the treasury façade.
func NewTreasury(c *client.Client) *Treasury {
	return &Treasury{base{client: c, name: "Treasury"}}
}

// CashPosition returns the current consolidated cash position.
func (s *Treasury) CashPosition(ctx context.Context, currency string) (transform.Record, error) {
	params := url.Values{}
	setIf(params, "currency", currency)

	raw, err := s.client.Get(ctx, "/treasury/cash-position"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/treasury/cash-position")
	}
	return s.record(raw, passthrough, "GET", "/treasury/cash-position")
}

// Forecast returns the cash-flow forecast between two dates.
func (s *Treasury) Forecast(ctx context.Context, from, to time.Time) ([]transform.Record, error) {
	params := url.Values{}
	setIfTime(params, "date_from", from)
	setIfTime(params, "date_to", to)

	raw, err := s.client.Get(ctx, "/treasury/forecast"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/treasury/forecast")
	}
	return s.records(raw, passthrough, "GET", "/treasury/forecast")
}

// CurrencyExposure returns open foreign-currency exposure.
func (s *Treasury) CurrencyExposure(ctx context.Context) ([]transform.Record, error) {
	raw, err := s.client.Get(ctx, "/treasury/exposure")
	if err != nil {
		return nil, s.wrap(err, "GET", "/treasury/exposure")
	}
	return s.records(raw, passthrough, "GET", "/treasury/exposure")
}
