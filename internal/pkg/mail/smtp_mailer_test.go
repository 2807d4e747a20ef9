package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainTextBody(t *testing.T) {
	got := PlainTextBody("Amount: JPY 1980\nProvider: telecom_credit")
	assert.Equal(t, "<html><body><p>Amount: JPY 1980<br>Provider: telecom_credit</p></body></html>", got)
}

func TestPlainTextBody_EscapesHTML(t *testing.T) {
	got := PlainTextBody(`Payload: {"a":"<b>&c"}`)
	assert.Contains(t, got, "&lt;b&gt;&amp;c")
	assert.NotContains(t, got, "<b>")
}
