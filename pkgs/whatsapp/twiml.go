package whatsapp

import (
	"bytes"
	"encoding/xml"

	"github.com/twilio/twilio-go/twiml"
)

const TwiMLContentType = "application/xml"

// RenderMessage wraps text in a <Response><Message> envelope.
func RenderMessage(text string) ([]byte, error) {
	doc, err := twiml.Messages([]twiml.Element{
		&twiml.MessagingMessage{Body: text},
	})
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// fallbackEnvelope builds the envelope by hand for when the TwiML renderer fails.
func fallbackEnvelope(text string) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<Response><Message>")
	_ = xml.EscapeText(&buf, []byte(text))
	buf.WriteString("</Message></Response>")
	return buf.Bytes()
}
