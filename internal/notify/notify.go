package notify

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/wneessen/go-mail"
)

const (
	defaultSubject = `[frag] extraneous files in {{ .Assignment }} from {{ .Name }}`
	defaultBody    = `Hello,

the following files submitted by {{ .Name }} ({{ .Login }}) for {{ .Assignment }}
do not match any expected file name and were ignored:
{{ range .Locations }}
 * {{ . }}
{{- end }}

This is an automatic message from the submission poller.
`
)

// Extraneous describes the unmatched objects of one author.
type Extraneous struct {
	Assignment string
	Login      string
	Name       string
	Locations  []string
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	Subject  string
	Body     string
}

// Email sends one templated message per author batch.
type Email struct {
	cfg     Config
	subject *template.Template
	body    *template.Template
	send    func(ctx context.Context, msg *mail.Msg) error
}

func NewEmail(cfg Config) (*Email, error) {
	if cfg.Subject == "" {
		cfg.Subject = defaultSubject
	}
	if cfg.Body == "" {
		cfg.Body = defaultBody
	}

	subject, err := template.New("subject").Parse(cfg.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject template: %w", err)
	}
	body, err := template.New("body").Parse(cfg.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid body template: %w", err)
	}

	e := &Email{cfg: cfg, subject: subject, body: body}
	e.send = e.dialAndSend
	return e, nil
}

// Render returns the subject and body of the message for n.
func (e *Email) Render(n Extraneous) (string, string, error) {
	var subject, body bytes.Buffer
	if err := e.subject.Execute(&subject, n); err != nil {
		return "", "", fmt.Errorf("failed to render subject: %w", err)
	}
	if err := e.body.Execute(&body, n); err != nil {
		return "", "", fmt.Errorf("failed to render body: %w", err)
	}
	return subject.String(), body.String(), nil
}

func (e *Email) Notify(ctx context.Context, n Extraneous) error {
	subject, body, err := e.Render(n)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(e.cfg.From); err != nil {
		return fmt.Errorf("invalid sender %s: %w", e.cfg.From, err)
	}
	if err := msg.To(e.cfg.To...); err != nil {
		return fmt.Errorf("invalid recipients %v: %w", e.cfg.To, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	return e.send(ctx, msg)
}

func (e *Email) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(e.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if e.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.cfg.Username),
			mail.WithPassword(e.cfg.Password),
		)
	}

	client, err := mail.NewClient(e.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
