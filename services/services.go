// Package services provides thin per-domain façades over the API client.
//
// A façade method builds the endpoint path and query string, applies the
// resource's transform bundle to outgoing and incoming records, delegates
// to the client verb, and tags any failure with the calling context. No
// business logic lives here: multi-step workflows are single remote calls.
package services

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// passthrough applies no field rules: responses are only re-cased.
var passthrough transform.Config

type base struct {
	client *client.Client
	name   string
}

// wrap tags an error with the façade name and the operation it came from.
func (b base) wrap(err error, method, endpoint string) error {
	if err == nil {
		return nil
	}
	return b.client.Errors().Normalize(err, fmt.Sprintf("%s: %s %s", b.name, method, endpoint))
}

// query renders a query string, empty when no parameters are set.
func query(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

func setIf(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func setIfInt(params url.Values, key string, value int) {
	if value != 0 {
		params.Set(key, strconv.Itoa(value))
	}
}

func setIfTime(params url.Values, key string, value time.Time) {
	if !value.IsZero() {
		params.Set(key, value.UTC().Format("2006-01-02"))
	}
}

// record decodes a single wire record and runs the response transform.
func (b base) record(raw json.RawMessage, cfg transform.Config, method, endpoint string) (transform.Record, error) {
	var rec transform.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, b.wrap(fmt.Errorf("decode response: %w", err), method, endpoint)
	}
	return transform.Response(rec, cfg), nil
}

// records decodes a wire record list and runs the response transform on
// each element.
func (b base) records(raw json.RawMessage, cfg transform.Config, method, endpoint string) ([]transform.Record, error) {
	var recs []transform.Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, b.wrap(fmt.Errorf("decode response: %w", err), method, endpoint)
	}
	return transform.ResponseList(recs, cfg), nil
}
