// Package ynab is the transaction source: a thin client for the YNAB
// transactions endpoint. One synchronous fetch per run, bounded timeout,
// fatal on failure.
package ynab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"budgetwatch/internal/core"
)

type Client struct {
	baseURL    string
	token      string
	budgetID   string
	httpClient *http.Client
}

// NewClient creates a client for one budget. The timeout bounds the whole
// fetch; the run must fail fast rather than hang on a slow provider.
func NewClient(baseURL, token, budgetID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:  baseURL,
		token:    token,
		budgetID: budgetID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// transactionsResponse mirrors the provider payload. Amounts are signed
// milliunits; only amount and category_name are consumed.
type transactionsResponse struct {
	Data struct {
		Transactions []struct {
			Amount       int64  `json:"amount"`
			CategoryName string `json:"category_name"`
		} `json:"transactions"`
	} `json:"data"`
}

// TransactionsSince fetches all transactions on or after the given date.
func (c *Client) TransactionsSince(ctx context.Context, since time.Time) ([]core.Transaction, error) {
	endpoint := fmt.Sprintf("%s/budgets/%s/transactions", c.baseURL, url.PathEscape(c.budgetID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build transactions request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	q := req.URL.Query()
	q.Set("since_date", since.Format("2006-01-02"))
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ynab api status %d: %s", resp.StatusCode, string(body))
	}

	var payload transactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode transactions response: %w", err)
	}

	transactions := make([]core.Transaction, len(payload.Data.Transactions))
	for i, tx := range payload.Data.Transactions {
		transactions[i] = core.Transaction{
			AmountMilli:  tx.Amount,
			CategoryName: tx.CategoryName,
		}
	}

	return transactions, nil
}
