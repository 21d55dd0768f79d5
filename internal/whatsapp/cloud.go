package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://graph.facebook.com/v19.0"

// CloudSender sends text messages through the WhatsApp Cloud API.
type CloudSender struct {
	apiBase       string
	phoneNumberID string
	accessToken   string
	client        *http.Client
}

// NewCloudSender creates a CloudSender for the given business phone number ID.
// apiBase may be empty to use the Graph API default; tests point it at a
// local server.
func NewCloudSender(apiBase, phoneNumberID, accessToken string) *CloudSender {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &CloudSender{
		apiBase:       apiBase,
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

type cloudTextMessage struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             cloudText `json:"text"`
}

type cloudText struct {
	Body string `json:"body"`
}

// Send delivers a plain-text WhatsApp message. A timed-out or failed call
// is an error; the caller decides whether to retry.
func (s *CloudSender) Send(ctx context.Context, phone, text string) error {
	payload, err := json.Marshal(cloudTextMessage{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "text",
		Text:             cloudText{Body: text},
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.apiBase, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("whatsapp api status %d: %s", resp.StatusCode, body)
	}
	return nil
}
