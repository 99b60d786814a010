// Package main implements erpctl, a small command line for exercising the
// Ledgerline API client: login, list invoices, show the cash position and
// tail the realtime feed.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ledgerline/erpclient/client"
	"github.com/ledgerline/erpclient/config"
	"github.com/ledgerline/erpclient/logger"
	"github.com/ledgerline/erpclient/realtime"
	"github.com/ledgerline/erpclient/services"
	"github.com/ledgerline/erpclient/tokenstore"
	"github.com/ledgerline/erpclient/transform"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	email := flag.String("email", "", "Login email (with -password, logs in first)")
	password := flag.String("password", "", "Login password")
	flag.Parse()

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "erpctl: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, "erpctl", cfg.LogLevel)

	var storage tokenstore.Storage = tokenstore.NewMemoryStorage()
	if cfg.TokenFile != "" {
		storage = tokenstore.NewFileStorage(cfg.TokenFile)
	}
	tokens := tokenstore.New(storage)

	api, err := client.New(client.Config{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		Tokens:     tokens,
		Logger:     log,
		LoginRoute: cfg.LoginRoute,
		RateLimit:  cfg.RateLimit,
		Navigate: func(route string) {
			log.Warn("session ended, login required", "route", route)
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "erpctl: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *email != "" && *password != "" {
		session, err := api.Login(ctx, *email, *password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "erpctl: login: %v\n", err)
			os.Exit(1)
		}
		log.Info("logged in", "expires_in", session.ExpiresIn)
	}

	if !api.IsAuthenticated() {
		fmt.Fprintln(os.Stderr, "erpctl: not authenticated; pass -email and -password")
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "", "invoices":
		listInvoices(ctx, api)
	case "cash":
		showCashPosition(ctx, api)
	case "watch":
		watch(cfg, tokens, log)
	default:
		fmt.Fprintf(os.Stderr, "erpctl: unknown command %q (want invoices, cash or watch)\n", flag.Arg(0))
		os.Exit(1)
	}
}

func listInvoices(ctx context.Context, api *client.Client) {
	invoicing := services.NewInvoicing(api)
	invoices, err := invoicing.List(ctx, services.InvoiceListParams{PerPage: 20})
	if err != nil {
		fmt.Fprintf(os.Stderr, "erpctl: list invoices: %v\n", err)
		os.Exit(1)
	}
	printJSON(invoices)
}

func showCashPosition(ctx context.Context, api *client.Client) {
	treasury := services.NewTreasury(api)
	position, err := treasury.CashPosition(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "erpctl: cash position: %v\n", err)
		os.Exit(1)
	}
	printJSON(position)
}

func watch(cfg *config.Config, tokens *tokenstore.Store, log *logger.Logger) {
	feed, err := realtime.New(realtime.Config{
		BaseURL: cfg.BaseURL,
		Tokens:  tokens,
		Logger:  log,
		Bundle:  transform.Invoice,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "erpctl: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := feed.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "erpctl: %v\n", err)
		os.Exit(1)
	}
	defer feed.Close()

	if err := feed.Subscribe("invoices", func(ev realtime.Event) {
		fmt.Printf("%s %s\n", ev.Action, mustJSON(ev.Record))
	}); err != nil {
		fmt.Fprintf(os.Stderr, "erpctl: %v\n", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("stopping watch")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "erpctl: encode output: %v\n", err)
		os.Exit(1)
	}
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
