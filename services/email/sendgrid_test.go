package emailsvc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
)

func audience(n int) []mail.Address {
	out := make([]mail.Address, n)
	for i := range out {
		out[i] = mail.Address{Address: fmt.Sprintf("student%d@school.test", i)}
	}
	return out
}

func newTestSendgrid() *sendgridService {
	conf := core.NewTestConfig()
	return NewSendgridService(conf, silentLogger{}).(*sendgridService)
}

func TestSendgridService_personalizations(t *testing.T) {
	svc := newTestSendgrid()

	tests := []struct {
		name       string
		msg        core.EmailMessage
		wantSizes  []int // recipients per personalization
		wantToSelf []bool
	}{
		{
			name:       "direct",
			msg:        core.EmailMessage{To: audience(1)},
			wantSizes:  []int{1},
			wantToSelf: []bool{false},
		},
		{
			name:       "small audience",
			msg:        core.EmailMessage{Bcc: audience(3)},
			wantSizes:  []int{4},
			wantToSelf: []bool{true},
		},
		{
			name:       "large audience",
			msg:        core.EmailMessage{Bcc: audience(2500)},
			wantSizes:  []int{1001, 1001, 501},
			wantToSelf: []bool{true, true, true},
		},
		{
			name:       "to and bcc",
			msg:        core.EmailMessage{To: audience(2), Bcc: audience(1000)},
			wantSizes:  []int{1000, 3},
			wantToSelf: []bool{false, true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := svc.personalizations(&tt.msg)
			require.Len(t, ps, len(tt.wantSizes))
			for i, p := range ps {
				assert.Equal(t, tt.wantSizes[i], len(p.To)+len(p.CC)+len(p.BCC), "personalization %d", i)
				assert.Equal(t, tt.wantToSelf[i], p.To[0].Address == svc.from.Address, "personalization %d", i)
			}
		})
	}
}

func TestSendgridService_SendMessages(t *testing.T) {
	svc := newTestSendgrid()
	core.ParseEmailTemplates(core.NewTestConfig(), silentLogger{})

	sent := make(chan rest.Request, 2)
	orig := sendgridAPI
	defer func() { sendgridAPI = orig }()
	sendgridAPI = func(req rest.Request) (*rest.Response, error) {
		sent <- req
		return &rest.Response{StatusCode: http.StatusAccepted}, nil
	}

	svc.SendMessages(
		&core.EmailMessage{
			Bcc:          audience(2),
			Subject:      "Exams week",
			TemplateName: "announcement",
			TemplateData: map[string]string{"Title": "Exams week", "AuthorName": "Admin", "Body": "Good luck"},
		},
		&core.EmailMessage{Subject: "nobody", BodyStr: "dropped"},
	)

	var req rest.Request
	select {
	case req = <-sent:
	case <-time.After(time.Second):
		t.Fatal("nothing sent")
	}
	assert.Equal(t, rest.Method(http.MethodPost), req.Method)
	assert.Equal(t, sendgridHost+sendgridEndpoint, req.BaseURL)

	var body struct {
		Subject    string   `json:"subject"`
		Categories []string `json:"categories"`
		Content    []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "[Masomo LMS] Exams week", body.Subject)
	assert.Equal(t, []string{"announcement"}, body.Categories)
	require.Len(t, body.Content, 2)
	assert.Equal(t, "text/html", body.Content[1].Type)

	select {
	case <-sent:
		t.Fatal("a message without recipients was sent")
	case <-time.After(50 * time.Millisecond):
	}
}
