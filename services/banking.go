package services

import (
	"context"
	"net/url"
	"time"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Banking covers bank accounts, transactions and reconciliation.
type Banking struct {
	base
}

// NewBanking creates the banking façade.
func NewBanking(c *client.Client) *Banking {
	return &Banking{base{client: c, name: "Banking"}}
}

// ListAccounts returns connected bank accounts.
func (s *Banking) ListAccounts(ctx context.Context) ([]transform.Record, error) {
	raw, err := s.client.Get(ctx, "/banking/accounts")
	if err != nil {
		return nil, s.wrap(err, "GET", "/banking/accounts")
	}
	return s.records(raw, transform.Account, "GET", "/banking/accounts")
}

// TransactionListParams is the fixed allowed parameter set for ListTransactions.
type TransactionListParams struct {
	AccountID  string
	Reconciled string // "true", "false" or empty for all
	DateFrom   time.Time
	DateTo     time.Time
	Page       int
	PerPage    int
}

// ListTransactions returns bank transactions.
func (s *Banking) ListTransactions(ctx context.Context, p TransactionListParams) ([]transform.Record, error) {
	params := url.Values{}
	setIf(params, "account_id", p.AccountID)
	setIf(params, "reconciled", p.Reconciled)
	setIfTime(params, "date_from", p.DateFrom)
	setIfTime(params, "date_to", p.DateTo)
	setIfInt(params, "page", p.Page)
	setIfInt(params, "per_page", p.PerPage)

	raw, err := s.client.Get(ctx, "/banking/transactions"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/banking/transactions")
	}
	return s.records(raw, transform.Transaction, "GET", "/banking/transactions")
}

// Reconcile marks a transaction as reconciled against a journal entry.
func (s *Banking) Reconcile(ctx context.Context, transactionID, journalEntryID string) (transform.Record, error) {
	endpoint := "/banking/transactions/" + transactionID + "/reconcile"
	body := transform.Request(transform.Record{"journalEntryId": journalEntryID}, transform.Transaction)
	raw, err := s.client.Post(ctx, endpoint, body)
	if err != nil {
		return nil, s.wrap(err, "POST", endpoint)
	}
	return s.record(raw, transform.Transaction, "POST", endpoint)
}

// ImportStatement uploads a bank statement for server-side parsing.
func (s *Banking) ImportStatement(ctx context.Context, accountID string, rec transform.Record) (transform.Record, error) {
	endpoint := "/banking/accounts/" + accountID + "/import"
	raw, err := s.client.Post(ctx, endpoint, transform.Request(rec, passthrough))
	if err != nil {
		return nil, s.wrap(err, "POST", endpoint)
	}
	return s.record(raw, passthrough, "POST", endpoint)
}
