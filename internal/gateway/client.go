// Package gateway is the HTTP client for the messaging endpoint. It covers
// exactly the outbound operations the dialog needs; delivery retries, polling
// and webhook mechanics live on the gateway side.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"github.com/talobank/backend/internal/dialog"
)

type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

func NewClient() *Client {
	viper.SetDefault("gateway.base_url", "http://localhost:9090")
	viper.SetDefault("gateway.token", "")

	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: viper.GetString("gateway.base_url"),
		token:   viper.GetString("gateway.token"),
	}
}

type outboundMessage struct {
	Recipient string            `json:"recipient"`
	Text      string            `json:"text,omitempty"`
	Buttons   [][]dialog.Button `json:"buttons,omitempty"`
	MessageID int               `json:"message_id,omitempty"`
}

func (c *Client) SendText(ctx context.Context, externalID, text string) error {
	return c.post(ctx, "/messages", outboundMessage{Recipient: externalID, Text: text})
}

func (c *Client) SendOptions(ctx context.Context, externalID, text string, rows [][]dialog.Button) error {
	return c.post(ctx, "/messages", outboundMessage{Recipient: externalID, Text: text, Buttons: rows})
}

func (c *Client) DeleteMessage(ctx context.Context, externalID string, messageID int) error {
	return c.post(ctx, "/messages/delete", outboundMessage{Recipient: externalID, MessageID: messageID})
}

func (c *Client) post(ctx context.Context, path string, payload outboundMessage) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}
