package whatsapp

import (
	"context"
	"log"

	"moviebot/whatsapp-bot/pkgs/conversation"
	"moviebot/whatsapp-bot/pkgs/utils"
)

const (
	EmptyMessageReply = "Please send a movie-related question or request!"
	ApologyReply      = "Sorry, I couldn't process your movie request right now. Try again later."
)

// Replier produces the model's answer for one sender.
type Replier interface {
	AppendAndComplete(ctx context.Context, senderID, userText string) conversation.Completion
}

type Handler struct {
	replier Replier
}

func NewHandler(replier Replier) *Handler {
	return &Handler{replier: replier}
}

// Reply picks the text to send back for msg. It never fails; errors are
// logged and answered with ApologyReply.
func (h *Handler) Reply(ctx context.Context, msg InboundMessage) string {
	if msg.Body == "" {
		return EmptyMessageReply
	}
	if msg.From == "" {
		log.Printf("Dropping message %s with no sender", msg.MessageSID)
		return ApologyReply
	}

	result := h.replier.AppendAndComplete(ctx, msg.From, msg.Body)
	if !result.OK() {
		log.Printf("Failed to answer %s: %v", msg.From, result.Err)
		return ApologyReply
	}
	return result.Text
}

// HandleWebhookEvent answers a messaging callback. The gateway always gets a
// 200 with a TwiML body, including for malformed forms.
func (h *Handler) HandleWebhookEvent(ctx context.Context, input *WebhookInput) (*WebhookOutput, error) {
	msg, err := ParseForm(input.RawBody)
	if err != nil {
		log.Printf("Malformed webhook form: %v", err)
		msg = InboundMessage{}
	}

	log.Printf("Message from %s (%s, sid=%s, media=%d): %q",
		msg.From, msg.ProfileName, msg.MessageSID, msg.NumMedia, utils.Ellipsize(msg.Body, 80))

	text := h.Reply(ctx, msg)

	body, err := RenderMessage(text)
	if err != nil {
		log.Printf("Failed to render TwiML: %v", err)
		body = fallbackEnvelope(text)
	}

	return &WebhookOutput{
		ContentType: TwiMLContentType,
		Body:        body,
	}, nil
}
