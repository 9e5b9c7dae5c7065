package whatsapp

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type twimlDoc struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

func parseTwiML(t *testing.T, body []byte) twimlDoc {
	t.Helper()
	var doc twimlDoc
	require.NoError(t, xml.Unmarshal(body, &doc), "body: %s", body)
	return doc
}

func TestRenderMessage(t *testing.T) {
	body, err := RenderMessage("Inception (2010) <Nolan> & co")
	require.NoError(t, err)

	doc := parseTwiML(t, body)
	assert.Equal(t, []string{"Inception (2010) <Nolan> & co"}, doc.Messages)
}

func TestFallbackEnvelope(t *testing.T) {
	doc := parseTwiML(t, fallbackEnvelope("a < b"))
	assert.Equal(t, []string{"a < b"}, doc.Messages)
}
