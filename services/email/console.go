package emailsvc

import (
	"fmt"
	"log"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
)

// ConsoleService prints messages instead of sending them. It keeps what it sent.
type ConsoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	out              *log.Logger
	disableOutput    bool
	synchronous      bool

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*ConsoleService)(nil)

func NewConsoleService(conf *core.Config) *ConsoleService {
	return &ConsoleService{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
		out:              log.New(os.Stdout, "EMAIL : ", log.LstdFlags),
	}
}

// NewConsoleServiceMock returns a silent service sending synchronously, for tests.
func NewConsoleServiceMock(conf *core.Config) *ConsoleService {
	svc := NewConsoleService(conf)
	svc.disableOutput = true
	svc.synchronous = true
	return svc
}

func (svc *ConsoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if svc.synchronous {
			svc.sendMessage(msg)
			continue
		}
		go svc.sendMessage(msg)
	}
}

// SentMessages returns the messages sent so far.
func (svc *ConsoleService) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

func (svc *ConsoleService) sendMessage(msg *core.EmailMessage) {
	if err := msg.Render(); err != nil {
		svc.out.Printf("%+v", errors.Wrap(err, "rendering email"))
		return
	}
	if !msg.Sendable() {
		return
	}
	raw, err := svc.format(msg)
	if err != nil {
		svc.out.Printf("%+v", errors.Wrapf(err, "formatting %s email", msg.Category()))
		return
	}
	if !svc.disableOutput {
		svc.out.Println(raw)
	}
	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()
}

// format renders msg as a MIME document: multipart/alternative text and html bodies,
// wrapped in multipart/mixed when there are attachments.
func (svc *ConsoleService) format(msg *core.EmailMessage) (string, error) {
	var body strings.Builder
	header := [][2]string{
		{"From", svc.defaultFromEmail.String()},
		{"To", joinAddresses(msg.To)},
		{"Cc", joinAddresses(msg.Cc)},
		{"Bcc", joinAddresses(msg.Bcc)},
		{"Subject", svc.subjPrefix + msg.Subject},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"X-Category", msg.Category()},
	}
	for _, h := range header {
		if h[1] != "" {
			fmt.Fprintf(&body, "%s: %s\r\n", h[0], h[1])
		}
	}

	alt := multipart.NewWriter(&body)
	var mixed *multipart.Writer
	if msg.HasAttachments() {
		mixed = multipart.NewWriter(&body)
		fmt.Fprintf(&body, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mixed.Boundary())
		if _, err := mixed.CreatePart(textproto.MIMEHeader{"Content-Type": {"multipart/alternative; boundary=" + alt.Boundary()}}); err != nil {
			return "", err
		}
	} else {
		fmt.Fprintf(&body, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", alt.Boundary())
	}

	parts := []struct{ ct, content string }{{"text/plain", msg.TextContent}}
	if msg.HTMLContent != "" {
		parts = append(parts, struct{ ct, content string }{"text/html", msg.HTMLContent})
	}
	for _, p := range parts {
		w, err := alt.CreatePart(textproto.MIMEHeader{"Content-Type": {p.ct}})
		if err != nil {
			return "", err
		}
		fmt.Fprintf(w, "%s\r\n", p.content)
	}
	if err := alt.Close(); err != nil {
		return "", err
	}

	if mixed != nil {
		for _, at := range msg.Attachments {
			w, err := mixed.CreatePart(textproto.MIMEHeader{
				"Content-Type":              {at.ContentType},
				"Content-Transfer-Encoding": {"base64"},
				"Content-Disposition":       {"attachment; filename=" + at.Filename},
			})
			if err != nil {
				return "", err
			}
			fmt.Fprintf(w, "%s\r\n", at.Content.String())
		}
		if err := mixed.Close(); err != nil {
			return "", err
		}
	}
	return body.String(), nil
}

func joinAddresses(addrs []mail.Address) string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return strings.Join(out, ", ")
}
