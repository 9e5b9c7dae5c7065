package web

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"

	"moviebot/whatsapp-bot/pkgs/whatsapp"

	"github.com/danielgtaylor/huma/v2"
)

func RegisterHealthHandlers(api huma.API) error {
	huma.Register(api, huma.Operation{
		OperationID: "healthz",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Liveness probe",
		Tags:        []string{"health"},
	}, func(ctx context.Context, input *struct{}) (*HealthOutput, error) {
		return &HealthOutput{Body: HealthBody{Status: "ok"}}, nil
	})

	return nil
}

func RegisterWhatsappHandlers(api huma.API, handler *whatsapp.Handler) error {
	huma.Register(api, huma.Operation{
		OperationID: "whatsapp-webhook",
		Method:      http.MethodPost,
		Path:        "/bot",
		Summary:     "Answer an incoming WhatsApp message",
		Description: "Messaging gateway callback. Always answers 200 with a TwiML envelope.",
		Tags:        []string{"whatsapp"},
		Middlewares: huma.Middlewares{allowEmptyForm},
	}, handler.HandleWebhookEvent)

	return nil
}

// maxFormBytes matches huma's default request body limit.
const maxFormBytes = 1 << 20

// emptyForm stands in for a zero-length body, which huma rejects for raw
// bodies before the handler runs. It parses to a message with no text.
const emptyForm = "Body="

type humaContext = huma.Context

type formContext struct {
	humaContext
	body io.Reader
}

func (c formContext) BodyReader() io.Reader {
	return c.body
}

// allowEmptyForm lets an empty gateway callback reach the webhook handler.
func allowEmptyForm(ctx huma.Context, next func(huma.Context)) {
	body, err := io.ReadAll(io.LimitReader(ctx.BodyReader(), maxFormBytes))
	if err != nil {
		log.Printf("Failed to read webhook body: %v", err)
	}
	if len(body) == 0 {
		body = []byte(emptyForm)
	}
	next(formContext{humaContext: ctx, body: bytes.NewReader(body)})
}
