package services

import (
	"context"
	"net/url"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/transform"
)

// Web3 covers blockchain display features: wallet balances, on-chain
// transaction history and token prices. All data comes pre-resolved from
// the backend; the client never talks to a chain node.
type Web3 struct {
	base
}

// NewWeb3 creates the web3 façade.
func NewWeb3(c *client.Client) *Web3 {
	return &Web3{base{client: c, name: "Web3"}}
}

// WalletBalances returns token balances for a wallet address.
func (s *Web3) WalletBalances(ctx context.Context, address string) ([]transform.Record, error) {
	endpoint := "/web3/wallets/" + address + "/balances"
	raw, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, s.wrap(err, "GET", endpoint)
	}
	return s.records(raw, passthrough, "GET", endpoint)
}

// WalletTransactions returns on-chain transactions for a wallet address.
func (s *Web3) WalletTransactions(ctx context.Context, address string, page int) ([]transform.Record, error) {
	params := url.Values{}
	setIfInt(params, "page", page)

	endpoint := "/web3/wallets/" + address + "/transactions"
	raw, err := s.client.Get(ctx, endpoint+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", endpoint)
	}
	return s.records(raw, transform.Transaction, "GET", endpoint)
}

// TokenPrices returns current prices for the given token symbols.
func (s *Web3) TokenPrices(ctx context.Context, symbols []string) ([]transform.Record, error) {
	params := url.Values{}
	for _, sym := range symbols {
		if sym != "" {
			params.Add("symbol", sym)
		}
	}

	raw, err := s.client.Get(ctx, "/web3/prices"+query(params))
	if err != nil {
		return nil, s.wrap(err, "GET", "/web3/prices")
	}
	return s.records(raw, passthrough, "GET", "/web3/prices")
}
