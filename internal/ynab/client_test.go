package ynab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTransactionsSince(t *testing.T) {
	var gotPath, gotAuth, gotSince string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotSince = r.URL.Query().Get("since_date")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"transactions": [
					{"amount": -950000, "category_name": "🥕  Groceries"},
					{"amount": 120000, "category_name": "Income"},
					{"amount": -12500, "category_name": "🥯  Dining Out"}
				]
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-token", "budget-1", 5*time.Second)

	txns, err := c.TransactionsSince(context.Background(), time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("TransactionsSince: %v", err)
	}

	if gotPath != "/budgets/budget-1/transactions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotSince != "2025-08-01" {
		t.Errorf("since_date = %q", gotSince)
	}

	if len(txns) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txns))
	}
	if txns[0].AmountMilli != -950000 || txns[0].CategoryName != "🥕  Groceries" {
		t.Errorf("first transaction = %+v", txns[0])
	}
}

func TestTransactionsSinceAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"id":"401"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-token", "budget-1", 5*time.Second)

	_, err := c.TransactionsSince(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected error on 401 response")
	}
}

func TestTransactionsSinceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", "budget-1", 20*time.Millisecond)

	_, err := c.TransactionsSince(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected timeout error, fetch must fail fast")
	}
}

func TestTransactionsSinceBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", "budget-1", 5*time.Second)

	_, err := c.TransactionsSince(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected decode error")
	}
}
