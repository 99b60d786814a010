package services

import (
	"context"
	"net/url"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Tax covers tax rates, period summaries and filings.
type Tax struct {
	base
}

// NewTax creates the tax façade.
func NewTax(c *client.Client) *Tax {
	return &Tax{base{client: c, name: "Tax"}}
}

// ListRates returns configured tax rates.
func (s *Tax) ListRates(ctx context.Context, region string) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "region", region)

	raw, err := s.client.Get(ctx, "/tax/rates"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/tax/rates")
	}
	return s.records(raw, passthrough, "GET", "/tax/rates")
}

// PeriodSummary returns the tax summary for a reporting period
// (e.g. "2026-Q2").
func (s *Tax) PeriodSummary(ctx context.Context, period string) (transform.Record, error) {
	endpoint := "/tax/periods/" + period + "/summary"
	raw, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, s.wrap(err, "GET", endpoint)
	}
	return s.record(raw, passthrough, "GET", endpoint)
}

// SubmitFiling submits a tax filing for a period.
func (s *Tax) SubmitFiling(ctx context.Context, period string, rec transform.Record) (transform.Record, error) {
	endpoint := "/tax/periods/" + period + "/filings"
	raw, err := s.client.Post(ctx, endpoint, transform.Request(rec, passthrough))
	if err != nil {
		return nil, s.wrap(err, "POST", endpoint)
	}
	return s.record(raw, passthrough, "POST", endpoint)
}
