// Package notify posts operator notifications to a Slack incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var ErrNoEndpoint = errors.New("notify: slack endpoint not set")

type payload struct {
	Text     string `json:"text"`
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
}

// SlackHook sends text messages to one channel as one user.
type SlackHook struct {
	endpoint string
	channel  string
	username string
	client   *http.Client
}

// NewSlackHook validates endpoint as an absolute URL.
func NewSlackHook(endpoint, channel, username string) (*SlackHook, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("notify: slack endpoint: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("notify: slack endpoint %q is not absolute", endpoint)
	}
	return &SlackHook{
		endpoint: endpoint,
		channel:  channel,
		username: username,
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (h *SlackHook) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(payload{Text: text, Channel: h.channel, Username: h.username})
	if err != nil {
		return fmt.Errorf("notify: build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: slack returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
