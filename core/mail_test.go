package core

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardLogger struct{}

func (discardLogger) Debug(string, ...interface{}) {}
func (discardLogger) Info(string, ...interface{})  {}
func (discardLogger) Warn(string, ...interface{})  {}
func (discardLogger) Error(string, ...interface{}) {}
func (discardLogger) Fatal(string, ...interface{}) {}

func TestEmailMessage_Render(t *testing.T) {
	ParseEmailTemplates(NewTestConfig(), discardLogger{})

	msg := &EmailMessage{
		To:           []mail.Address{{Address: "ada@school.test"}},
		TemplateName: "password_reset",
		TemplateData: map[string]string{"Name": "Ada", "UID": "dWlk", "Token": "1z-sig"},
	}
	require.NoError(t, msg.Render())
	assert.Contains(t, msg.TextContent, "Hello Ada,")
	assert.Contains(t, msg.TextContent, "http://localhost:8000/password-reset/dWlk/1z-sig")
	assert.NotEmpty(t, msg.HTMLContent)
	assert.True(t, msg.Sendable())
	assert.Equal(t, "password_reset", msg.Category())

	// templates are strict in tests
	msg = &EmailMessage{TemplateName: "password_reset", TemplateData: map[string]string{}}
	assert.Error(t, msg.Render())

	msg = &EmailMessage{BodyStr: "plain body", TemplateName: "password_reset"}
	require.NoError(t, msg.Render())
	assert.Equal(t, "plain body", msg.TextContent)
	assert.Empty(t, msg.HTMLContent)
	assert.False(t, msg.Sendable(), "no recipients")

	msg = &EmailMessage{TemplateName: "unknown"}
	require.NoError(t, msg.Render())
	assert.False(t, msg.HasContent())
}

func TestEmailMessage_Attach(t *testing.T) {
	msg := &EmailMessage{}
	require.NoError(t, msg.Attach(strings.NewReader("name,grade\nAda,90\n"), "grades.csv", "text/csv"))
	require.NoError(t, msg.Attach(strings.NewReader("hello"), "note.txt"))

	require.Len(t, msg.Attachments, 2)
	assert.Equal(t, "text/csv", msg.Attachments[0].ContentType)
	raw, err := base64.StdEncoding.DecodeString(msg.Attachments[0].Content.String())
	require.NoError(t, err)
	assert.Equal(t, "name,grade\nAda,90\n", string(raw))
	assert.Equal(t, "text/plain; charset=utf-8", msg.Attachments[1].ContentType)
	assert.True(t, msg.HasAttachments())
}
