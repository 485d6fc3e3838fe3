// Copyright (c) 2026 Centinela. All rights reserved.

/*
Package notify implements the outbound notification gateway.

It is a thin HTTP client for the external delivery provider that actually
sends emails and SMS messages. The identity services consume it through the
narrow Mailer/Texter contracts they define themselves, so the delivery
transport can be swapped without touching domain logic.

# Contract

The gateway is never invoked inside a database transaction: deliveries happen
after commit, and a failed delivery is reported to the caller without rolling
back durable state.
*/
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// requestTimeout caps a single provider round-trip. The provider is on the
// request path of registration and login, so it must fail fast.
const requestTimeout = 10 * time.Second

// Client talks to the notification provider over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a notification gateway client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// # Payloads

type emailPayload struct {
	Address   string `json:"address"`
	Subject   string `json:"subject"`
	PlainText string `json:"plain_text"`
}

type smsPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

/*
SendEmail delivers a plain-text email through the provider.

POST {base}/email/send

Parameters:
  - context: context.Context
  - address: string (recipient)
  - subject: string
  - plainText: string (message body)

Returns:
  - error: Non-2xx provider responses or transport failures
*/
func (client *Client) SendEmail(context context.Context, address, subject, plainText string) error {
	payload := emailPayload{
		Address:   address,
		Subject:   subject,
		PlainText: plainText,
	}
	return client.post(context, "/email/send", payload)
}

/*
SendSMS delivers a text message through the provider.

POST {base}/sms/send

Parameters:
  - context: context.Context
  - to: string (recipient phone number)
  - body: string (message body)

Returns:
  - error: Non-2xx provider responses or transport failures
*/
func (client *Client) SendSMS(context context.Context, to, body string) error {
	payload := smsPayload{
		To:   to,
		Body: body,
	}
	return client.post(context, "/sms/send", payload)
}

// post serializes the payload and dispatches it to the provider endpoint.
func (client *Client) post(context context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify_marshal_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodPost, client.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify_request_build_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("notify_dispatch_failed: %w", err)
	}
	defer response.Body.Close()

	// Drain so the underlying connection can be reused.
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		client.logger.Error("notification_delivery_rejected",
			slog.String("endpoint", path),
			slog.Int("status", response.StatusCode),
		)
		return fmt.Errorf("notify_provider_rejected: status %d from %s", response.StatusCode, path)
	}

	return nil
}
