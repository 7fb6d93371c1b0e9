package core

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	htmltmpl "html/template"
	"io"
	"net/http"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

//go:embed templates/email/*
var emailFS embed.FS

const emailDir = "templates/email"

type executor interface {
	Execute(w io.Writer, data interface{}) error
}

// parsers by template extension, each paired with its "_base" layout.
var emailParsers = map[string]func(debug bool, files ...string) (executor, error){
	".txt": func(debug bool, files ...string) (executor, error) {
		t, err := texttmpl.ParseFS(emailFS, files...)
		if err == nil && debug {
			t = t.Option("missingkey=error")
		}
		return t, err
	},
	".gohtml": func(debug bool, files ...string) (executor, error) {
		t, err := htmltmpl.ParseFS(emailFS, files...)
		if err == nil && debug {
			t = t.Option("missingkey=error")
		}
		return t, err
	},
}

var emailTemplates = struct {
	sync.RWMutex
	byName      map[string]map[string]executor // name -> ext -> template
	frontendURL string
}{}

type (
	Attachment struct {
		Content     *bytes.Buffer // base64
		ContentType string
		Filename    string
	}

	// EmailMessage is rendered from TemplateName (".txt" and ".gohtml" variants) unless BodyStr is set.
	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string
		Attachments []Attachment

		TemplateName string
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// ContextData is what email templates see.
	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Category tags the message for the mail provider's statistics.
func (m *EmailMessage) Category() string {
	if m.TemplateName != "" {
		return m.TemplateName
	}
	return "plain"
}

func (m *EmailMessage) execute(ext string) (string, error) {
	emailTemplates.RLock()
	tmpl, ok := emailTemplates.byName[m.TemplateName][ext]
	data := ContextData{FrontendBaseURL: emailTemplates.frontendURL, Data: m.TemplateData}
	emailTemplates.RUnlock()
	if !ok {
		return "", nil
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "rendering %s%s", m.TemplateName, ext)
	}
	return buf.String(), nil
}

// Render fills TextContent and HTMLContent.
func (m *EmailMessage) Render() (err error) {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}
	if m.TextContent, err = m.execute(".txt"); err != nil {
		return err
	}
	m.HTMLContent, err = m.execute(".gohtml")
	return err
}

// Attach adds r as a base64 attachment; the content type is sniffed unless given.
func (m *EmailMessage) Attach(r io.Reader, filename string, ct ...string) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	contentType := http.DetectContentType(content)
	if len(ct) > 0 {
		contentType = ct[0]
	}
	m.Attachments = append(m.Attachments, Attachment{
		Content:     bytes.NewBufferString(base64.StdEncoding.EncodeToString(content)),
		ContentType: contentType,
		Filename:    filename,
	})
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 || len(m.Bcc) > 0 }
func (m *EmailMessage) HasContent() bool     { return m.TextContent != "" || m.HTMLContent != "" }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }

// Sendable reports whether a rendered message is worth handing to a provider.
func (m *EmailMessage) Sendable() bool {
	return m.HasRecipients() && (m.HasContent() || m.HasAttachments())
}

// ParseEmailTemplates loads the embedded email templates. Files starting with "_" are layouts.
func ParseEmailTemplates(conf *Config, logger Logger) {
	entries, err := emailFS.ReadDir(emailDir)
	if err != nil {
		logger.Error(fmt.Sprintf("core.ParseEmailTemplates: %v", err), err)
		return
	}

	strict := conf.Debug || conf.TestMode
	byName := make(map[string]map[string]executor)
	for _, de := range entries {
		fname := de.Name()
		ext := path.Ext(fname)
		parse, ok := emailParsers[ext]
		if !ok || strings.HasPrefix(fname, "_") {
			continue
		}

		tmpl, err := parse(strict, path.Join(emailDir, "_base"+ext), path.Join(emailDir, fname))
		if err != nil {
			logger.Error(fmt.Sprintf("core.ParseEmailTemplates(%s): %v", fname, err), err)
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		if byName[name] == nil {
			byName[name] = make(map[string]executor)
		}
		byName[name][ext] = tmpl
	}

	emailTemplates.Lock()
	emailTemplates.byName = byName
	emailTemplates.frontendURL = conf.FrontendBaseURL
	emailTemplates.Unlock()
}
