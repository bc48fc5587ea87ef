package stripeledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	revenue "swapstation-cloud/internal/revenue/domain"
)

func TestListTransactionsPaginatesUntilExhausted(t *testing.T) {
	var cursors []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/balance_transactions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		cursor := r.URL.Query().Get("starting_after")
		cursors = append(cursors, cursor)
		switch cursor {
		case "":
			fmt.Fprint(w, `{"data":[{"id":"txn_1","created":100,"type":"charge","net":300},{"id":"txn_2","created":200,"type":"stripe_fee","net":-9}],"has_more":true}`)
		case "txn_2":
			fmt.Fprint(w, `{"data":[{"id":"txn_3","created":300,"type":"charge","net":500}],"has_more":false}`)
		default:
			t.Errorf("unexpected cursor %q", cursor)
		}
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sk_test")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	entries, err := client.ListTransactions(context.Background(), 0, 400)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[2].ID != "txn_3" || entries[2].NetCents != 500 {
		t.Fatalf("last entry = %+v", entries[2])
	}
	if len(cursors) != 2 || cursors[1] != "txn_2" {
		t.Fatalf("cursors = %v, want sequential pagination from txn_2", cursors)
	}
}

func TestListTransactionsDiscardsPartialOnFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"data":[{"id":"txn_1","created":100,"type":"charge","net":300}],"has_more":true}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sk_test")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	entries, err := client.ListTransactions(context.Background(), 0, 400)
	if entries != nil {
		t.Fatalf("entries = %v, want nil (no partial results)", entries)
	}
	var upstream *UpstreamError
	if !errors.As(err, &upstream) || upstream.Status != http.StatusBadGateway {
		t.Fatalf("err = %v, want UpstreamError 502", err)
	}
}

func TestFetchWithoutAPIKey(t *testing.T) {
	client, err := NewClient("https://api.example.com", "")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.ListTransactions(context.Background(), 0, 1); !errors.Is(err, revenue.ErrConfigurationMissing) {
		t.Fatalf("err = %v, want ErrConfigurationMissing", err)
	}
	if _, err := client.ListCharges(context.Background(), 0, 1, ""); !errors.Is(err, revenue.ErrConfigurationMissing) {
		t.Fatalf("err = %v, want ErrConfigurationMissing", err)
	}
}

func TestListChargesLegacyAmountFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("customer"); got != "cus_42" {
			t.Errorf("customer = %q", got)
		}
		fmt.Fprint(w, `{"data":[{"id":"ch_1","created":100,"amount":700,"amount_refunded":50,"customer":"cus_42"},{"id":"ch_2","created":200,"amount":900,"amount_captured":800,"customer":"cus_42"}],"has_more":false}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sk_test")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	entries, err := client.ListCharges(context.Background(), 0, 400, "cus_42")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].CapturedCents != 700 {
		t.Fatalf("legacy capture = %d, want amount fallback 700", entries[0].CapturedCents)
	}
	if entries[1].CapturedCents != 800 {
		t.Fatalf("capture = %d, want amount_captured 800", entries[1].CapturedCents)
	}
}

func TestRecentTransactionsClampsLimit(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		if r.URL.Query().Has("created[gte]") {
			t.Errorf("recent fetch must not carry created bounds")
		}
		fmt.Fprint(w, `{"data":[],"has_more":false}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sk_test")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.RecentTransactions(context.Background(), 500); err != nil {
		t.Fatalf("recent: %v", err)
	}
	if gotLimit != "100" {
		t.Fatalf("limit = %s, want clamp to 100", gotLimit)
	}
}

func TestCancelledContextAbortsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"txn_1","created":100,"type":"charge","net":300}],"has_more":true}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "sk_test")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.ListTransactions(ctx, 0, 400); err == nil {
		t.Fatalf("want error from cancelled context")
	}
}
