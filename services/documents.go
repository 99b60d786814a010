package services

import (
	"context"
	"net/url"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Documents covers AI-assisted document processing: upload, extraction
// status, and review of extracted fields. Extraction itself runs
// server-side; the client only polls.
type Documents struct {
	base
}

// NewDocuments creates the documents façade.
func NewDocuments(c *client.Client) *Documents {
	return &Documents{base{client: c, name: "Documents"}}
}

// Upload submits a document (base64 content plus metadata) for extraction.
func (s *Documents) Upload(ctx context.Context, rec transform.Record) (transform.Record, error) {
	raw, err := s.client.Post(ctx, "/documents", transform.Request(rec, passthrough))
	if err != nil {
		return nil, s.wrap(err, "POST", "/documents")
	}
	return s.record(raw, passthrough, "POST", "/documents")
}

// Status returns the extraction status for a document.
func (s *Documents) Status(ctx context.Context, id string) (transform.Record, error) {
	endpoint := "/documents/" + id + "/status"
	raw, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, s.wrap(err, "GET", endpoint)
	}
	return s.record(raw, passthrough, "GET", endpoint)
}

// Extraction returns the extracted fields for a processed document.
func (s *Documents) Extraction(ctx context.Context, id string) (transform.Record, error) {
	endpoint := "/documents/" + id + "/extraction"
	raw, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, s.wrap(err, "GET", endpoint)
	}
	return s.record(raw, passthrough, "GET", endpoint)
}

// Approve confirms extracted fields, optionally with corrections.
func (s *Documents) Approve(ctx context.Context, id string, corrections transform.Record) (transform.Record, error) {
	endpoint := "/documents/" + id + "/approve"
	raw, err := s.client.Post(ctx, endpoint, transform.Request(corrections, passthrough))
	if err != nil {
		return nil, s.wrap(err, "POST", endpoint)
	}
	return s.record(raw, passthrough, "POST", endpoint)
}

// List returns processed documents.
func (s *Documents) List(ctx context.Context, status string, page int) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "status", status)
	setIfInt(params, "page", page)

	raw, err := s.client.Get(ctx, "/documents"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/documents")
	}
	return s.records(raw, passthrough, "GET", "/documents")
}
