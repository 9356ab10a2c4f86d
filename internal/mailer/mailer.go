// Package mailer delivers the account emails (verification, password reset).
package mailer

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"
)

// Sender delivers a single email. Implementations must honour ctx cancellation.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Body    string
}

var (
	verificationTemplate = template.Must(template.New("verification").Parse(`<p>Hi {{.Name}},</p>
<p>Thanks for signing up. Please confirm your email address by opening the link below:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>`))

	passwordResetTemplate = template.Must(template.New("password_reset").Parse(`<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for {{.TTL}}:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not request a reset you can ignore this email.</p>`))
)

type templateData struct {
	Name string
	Link string
	TTL  time.Duration
}

func Verification(to, name, link string) Message {
	return Message{
		To:      to,
		Subject: "Verify your email address",
		Body:    render(verificationTemplate, templateData{Name: name, Link: link}),
	}
}

func PasswordReset(to, name, link string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		Body:    render(passwordResetTemplate, templateData{Name: name, Link: link, TTL: ttl}),
	}
}

// render executes one of the package templates. They are parsed at init and only see string
// and duration fields, so execution cannot fail short of a broken template.
func render(tpl *template.Template, data templateData) string {
	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("mailer: render %s: %v", tpl.Name(), err))
	}
	return buf.String()
}

// Deliver sends m through s.
func Deliver(ctx context.Context, s Sender, m Message) error {
	return s.Send(ctx, m.To, m.Subject, m.Body)
}

// Recorder keeps messages in memory instead of sending them. Err, when set, is returned by Send
// after the message has been recorded.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (r *Recorder) Send(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{To: to, Subject: subject, Body: body})
	return r.Err
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message sent to the given address.
func (r *Recorder) Last(to string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].To == to {
			return r.messages[i], true
		}
	}
	return Message{}, false
}
