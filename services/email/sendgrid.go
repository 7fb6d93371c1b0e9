package emailsvc

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/lmsadmin/core"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"

	// SendGrid caps the recipients of a single personalization.
	maxRecipients = 1000
)

var sendgridAPI func(rest.Request) (*rest.Response, error) = sendgrid.API // mockable

type sendgridService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	logger     core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

// NewSendgridService sends through the SendGrid v3 API.
// Announcements to a whole audience are split into personalizations of at most 1000 Bcc recipients.
func NewSendgridService(conf *core.Config, logger core.Logger) core.EmailService {
	return &sendgridService{
		key:        conf.SendgridAPIKey,
		from:       sgmail.NewEmail(conf.DefaultFromEmail.Name, conf.DefaultFromEmail.Address),
		subjPrefix: "[" + conf.AppName + "] ",
		logger:     logger,
	}
}

func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.deliver(msg)
	}
}

func (svc *sendgridService) deliver(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		svc.logger.Error(fmt.Sprintf("email %q: %v", msg.Category(), err), err)
		return
	}
	if !msg.Sendable() {
		return
	}

	req := sendgrid.GetRequest(svc.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.build(msg))

	res, err := sendgridAPI(req)
	switch {
	case err != nil:
		svc.logger.Error(fmt.Sprintf("email %q: %v", msg.Category(), err), err)
	case res.StatusCode >= http.StatusBadRequest:
		svc.logger.Error(fmt.Sprintf("email %q rejected (%d): %s", msg.Category(), res.StatusCode, res.Body))
	}
}

func (svc *sendgridService) build(msg *core.EmailMessage) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.Subject = svc.subjPrefix + msg.Subject
	m.AddCategories(msg.Category())

	for _, p := range svc.personalizations(msg) {
		m.AddPersonalizations(p)
	}

	m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	for _, at := range msg.Attachments {
		m.AddAttachment(&sgmail.Attachment{
			Content:     at.Content.String(),
			Type:        at.ContentType,
			Filename:    at.Filename,
			Disposition: "attachment",
		})
	}
	return m
}

// personalizations keeps To and Cc on the first one and spreads Bcc in chunks.
// A chunk without To is addressed to the sender, SendGrid requires one.
func (svc *sendgridService) personalizations(msg *core.EmailMessage) []*sgmail.Personalization {
	first := sgmail.NewPersonalization()
	first.AddTos(sgEmails(msg.To)...)
	first.AddCCs(sgEmails(msg.Cc)...)
	out := []*sgmail.Personalization{first}

	bcc := msg.Bcc
	room := maxRecipients - len(msg.To) - len(msg.Cc)
	if room < 0 {
		room = 0
	}
	if len(bcc) < room {
		room = len(bcc)
	}
	first.AddBCCs(sgEmails(bcc[:room])...)
	bcc = bcc[room:]

	for len(bcc) > 0 {
		n := maxRecipients
		if len(bcc) < n {
			n = len(bcc)
		}
		p := sgmail.NewPersonalization()
		p.AddBCCs(sgEmails(bcc[:n])...)
		out = append(out, p)
		bcc = bcc[n:]
	}
	if len(first.To) == 0 && len(first.CC) == 0 && len(first.BCC) == 0 {
		out = out[1:]
	}
	for _, p := range out {
		if len(p.To) == 0 {
			p.AddTos(svc.from)
		}
	}
	return out
}

func sgEmails(addrs []mail.Address) []*sgmail.Email {
	out := make([]*sgmail.Email, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, sgmail.NewEmail(a.Name, a.Address))
	}
	return out
}
