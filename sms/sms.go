// Package sms delivers text messages through an HTTP SMS provider.
// Delivery is best-effort: callers log failures and move on, they never
// surface them to the command's own response.
package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Client is the HTTP client used to reach the gateway.
type Client interface {
	Do(r *http.Request) (*http.Response, error)
}

// Gateway posts messages to a form-encoded SMS gateway endpoint.
type Gateway struct {
	client Client
	url    string
	apiKey string
	sender string
}

// New constructs a *Gateway. sender is optional; when empty the
// provider default is used.
func New(client Client, gatewayURL, apiKey, sender string) *Gateway {
	return &Gateway{
		client: client,
		url:    gatewayURL,
		apiKey: apiKey,
		sender: sender,
	}
}

// Send delivers one message to number.
func (g *Gateway) Send(ctx context.Context, number, message string) error {
	form := url.Values{}
	form.Set("apikey", g.apiKey)
	form.Set("number", number)
	form.Set("message", message)
	if g.sender != "" {
		form.Set("sendername", g.sender)
	}

	req, err := http.NewRequest("POST", g.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(ctx)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}
	return nil
}
