package services

import (
	"context"
	"net/url"
	"time"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Accounting covers the chart of accounts and journal entries.
type Accounting struct {
	base
}

// NewAccounting creates the accounting façade.
func NewAccounting(c *client.Client) *Accounting {
	return &Accounting{base{client: c, name: "Accounting"}}
}

// AccountListParams is the fixed allowed parameter set for ListAccounts.
type AccountListParams struct {
	Type     string // asset, liability, equity, income, expense
	Archived bool
	Page     int
	PerPage  int
}

// ListAccounts returns accounts from the chart of accounts.
func (s *Accounting) ListAccounts(ctx context.Context, p AccountListParams) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "type", p.Type)
	if p.Archived {
		params.Set("archived", "true")
	}
	setIfInt(params, "page", p.Page)
	setIfInt(params, "per_page", p.PerPage)

	raw, err := s.client.Get(ctx, "/accounting/accounts"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/accounting/accounts")
	}
	return s.records(raw, transform.Account, "GET", "/accounting/accounts")
}

// GetAccount returns one account.
func (s *Accounting) GetAccount(ctx context.Context, id string) (transform.Record, error) {
	endpoint := "/accounting/accounts/" + id
	raw, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, s.wrap(err, "GET", endpoint)
	}
	return s.record(raw, transform.Account, "GET", endpoint)
}

// CreateAccount adds an account to the chart.
func (s *Accounting) CreateAccount(ctx context.Context, rec transform.Record) (transform.Record, error) {
	raw, err := s.client.Post(ctx, "/accounting/accounts", transform.Request(rec, transform.Account))
	if err != nil {
		return nil, s.wrap(err, "POST", "/accounting/accounts")
	}
	return s.record(raw, transform.Account, "POST", "/accounting/accounts")
}

// JournalEntryParams is the fixed allowed parameter set for ListJournalEntries.
type JournalEntryParams struct {
	AccountID string
	DateFrom  time.Time
	DateTo    time.Time
	Page      int
}

// ListJournalEntries returns journal entries.
func (s *Accounting) ListJournalEntries(ctx context.Context, p JournalEntryParams) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "account_id", p.AccountID)
	setIfTime(params, "date_from", p.DateFrom)
	setIfTime(params, "date_to", p.DateTo)
	setIfInt(params, "page", p.Page)

	raw, err := s.client.Get(ctx, "/accounting/journal-entries"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/accounting/journal-entries")
	}
	return s.records(raw, transform.Transaction, "GET", "/accounting/journal-entries")
}

// CreateJournalEntry posts a journal entry.
func (s *Accounting) CreateJournalEntry(ctx context.Context, rec transform.Record) (transform.Record, error) {
	raw, err := s.client.Post(ctx, "/accounting/journal-entries", transform.Request(rec, transform.Transaction))
	if err != nil {
		return nil, s.wrap(err, "POST", "/accounting/journal-entries")
	}
	return s.record(raw, transform.Transaction, "POST", "/accounting/journal-entries")
}
