package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the transactional-mail API. Every send is best-effort from
// the caller's point of view: the billing flow logs failures and moves on.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, from string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Enabled reports whether the mail API is configured at all. Local setups run
// without one.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (c *Client) send(ctx context.Context, to, subject, text string) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(message{
		From:    c.from,
		To:      to,
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/messages"
	return c.retryWithBackoff(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, string(body))
		}
		return nil
	}, 3)
}

func (c *Client) retryWithBackoff(fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(backoffs) {
			time.Sleep(backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) OrderPaid(ctx context.Context, email string, orderID string, photoCount int, amountCents int64, currency string) error {
	subject := "Your retouching order is confirmed"
	text := fmt.Sprintf(
		"We received your payment of %s for order %s (%d photos).\nWe will get to work right away and notify you when your photos are ready.",
		formatAmount(amountCents, currency), orderID, photoCount)
	return c.send(ctx, email, subject, text)
}

func (c *Client) OrderDelivered(ctx context.Context, email string, orderID string, fileCount int) error {
	subject := "Your retouched photos are ready"
	text := fmt.Sprintf(
		"Order %s is done: %d retouched photos are waiting in your account.",
		orderID, fileCount)
	return c.send(ctx, email, subject, text)
}

func (c *Client) InvoiceIssued(ctx context.Context, email string, invoiceID string, totalCents int64, currency string, dueAt time.Time) error {
	subject := "Your monthly invoice"
	text := fmt.Sprintf(
		"Invoice %s over %s has been issued. Payment is due by %s.",
		invoiceID, formatAmount(totalCents, currency), dueAt.Format("2 January 2006"))
	return c.send(ctx, email, subject, text)
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, strings.ToUpper(currency))
}
