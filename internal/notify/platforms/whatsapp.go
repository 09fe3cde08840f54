package platforms

import (
	"context"
	"errors"
	"strings"
)

var ErrMissingPhone = errors.New("missing_phone")

type whatsAppText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type whatsAppPayload struct {
	MessagingProduct string       `json:"messaging_product"`
	RecipientType    string       `json:"recipient_type"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

// WhatsAppAdapter sends text messages through the WhatsApp Cloud API.
type WhatsAppAdapter struct {
	client        *HTTPClient
	apiURL        string
	phoneNumberID string
	accessToken   string
}

func NewWhatsAppAdapter(client *HTTPClient, apiURL, phoneNumberID, accessToken string) *WhatsAppAdapter {
	return &WhatsAppAdapter{
		client:        client,
		apiURL:        strings.TrimRight(apiURL, "/"),
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
	}
}

func (a *WhatsAppAdapter) Name() string { return "whatsapp" }

func (a *WhatsAppAdapter) NeedsPhone() bool { return true }

func (a *WhatsAppAdapter) Send(ctx context.Context, msg Message) error {
	to := strings.TrimPrefix(strings.TrimSpace(msg.Phone), "+")
	if to == "" {
		return ErrMissingPhone
	}
	endpoint := a.apiURL + "/" + a.phoneNumberID + "/messages"
	headers := map[string]string{"Authorization": "Bearer " + a.accessToken}
	return a.client.PostJSON(ctx, endpoint, headers, whatsAppPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             whatsAppText{Body: msg.Text},
	})
}
