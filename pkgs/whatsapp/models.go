package whatsapp

import (
	"net/url"
	"strconv"
	"strings"
)

// InboundMessage is the subset of the gateway's callback form we act on.
// Only From and Body drive behaviour; the rest is logged.
type InboundMessage struct {
	From        string `json:"from"`
	Body        string `json:"body"`
	ProfileName string `json:"profile_name,omitempty"`
	WaID        string `json:"wa_id,omitempty"`
	MessageSID  string `json:"message_sid,omitempty"`
	NumMedia    int    `json:"num_media,omitempty"`
}

// ParseForm decodes an application/x-www-form-urlencoded callback body.
// Body is trimmed. Missing fields are empty.
func ParseForm(raw []byte) (InboundMessage, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return InboundMessage{}, err
	}

	msg := InboundMessage{
		From:        strings.TrimSpace(values.Get("From")),
		Body:        strings.TrimSpace(values.Get("Body")),
		ProfileName: values.Get("ProfileName"),
		WaID:        values.Get("WaId"),
		MessageSID:  values.Get("MessageSid"),
	}
	if n, err := strconv.Atoi(values.Get("NumMedia")); err == nil {
		msg.NumMedia = n
	}
	return msg, nil
}

type WebhookInput struct {
	RawBody []byte `contentType:"application/x-www-form-urlencoded"`
}

// WebhookOutput carries a pre-rendered TwiML document.
type WebhookOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}
