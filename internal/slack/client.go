// Package slack posts pipeline notifications via the Slack Web API.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bugbasher/internal/config"
)

const defaultAPIBase = "https://slack.com/api"

// APIError is a transport failure or an ok:false reply from the Slack API.
type APIError struct {
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Slack API error: %s", e.Detail)
}

// Text is a Slack text object.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Block is a Slack layout block, reduced to the shapes the pipeline
// emits: header, section (with optional fields), and context.
type Block struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Fields   []Text `json:"fields,omitempty"`
	Elements []Text `json:"elements,omitempty"`
}

// Header builds a header block with plain text.
func Header(text string) Block {
	return Block{Type: "header", Text: &Text{Type: "plain_text", Text: text}}
}

// Section builds a section block with mrkdwn text.
func Section(text string) Block {
	return Block{Type: "section", Text: &Text{Type: "mrkdwn", Text: text}}
}

// FieldsSection builds a section block carrying mrkdwn field pairs.
func FieldsSection(fields ...string) Block {
	b := Block{Type: "section"}
	for _, f := range fields {
		b.Fields = append(b.Fields, Text{Type: "mrkdwn", Text: f})
	}
	return b
}

// Context builds a context block with mrkdwn elements.
func Context(elements ...string) Block {
	b := Block{Type: "context"}
	for _, e := range elements {
		b.Elements = append(b.Elements, Text{Type: "mrkdwn", Text: e})
	}
	return b
}

// Client posts messages with a bot token.
type Client struct {
	cfg        config.Slack
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a Slack client.
func NewClient(cfg config.Slack) *Client {
	return &Client{
		cfg:        cfg,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PostMessage sends text (the notification fallback) and optional blocks
// to a channel.
func (c *Client) PostMessage(ctx context.Context, channel, text string, blocks []Block) error {
	body := map[string]any{"channel": channel, "text": text}
	if len(blocks) > 0 {
		body["blocks"] = blocks
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build message request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.BotToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("message request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read message response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Detail: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, raw)}
	}

	var reply struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return fmt.Errorf("failed to decode message response: %w", err)
	}
	if !reply.OK {
		detail := reply.Error
		if detail == "" {
			detail = "unknown error"
		}
		return &APIError{Detail: detail}
	}
	return nil
}
