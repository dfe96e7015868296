package mailer

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohn-shah/diode-be/pkg/mailer/templates"
)

type captureSender struct {
	sent []Message
	err  error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	c.sent = append(c.sent, msg)
	return c.err
}

type capturePublisher struct {
	bodies []any
}

func (p *capturePublisher) PublishJSON(_ context.Context, body any) error {
	p.bodies = append(p.bodies, body)
	return nil
}

func newDispatcher(s Sender) *Dispatcher {
	return &Dispatcher{
		Sender:          s,
		AppURL:          "https://admin.example.com",
		Brand:           templates.Branding{CompanyName: "Acme"},
		VerificationTTL: 24 * time.Hour,
		ResetTTL:        time.Hour,
	}
}

func TestDispatcherSetPassword(t *testing.T) {
	s := &captureSender{}
	d := newDispatcher(s)

	err := d.SendSetPasswordEmail(context.Background(), Recipient{Email: "a@x.io", FirstName: "Ann", LastName: "Lee"}, "tok123")
	require.NoError(t, err)
	require.Len(t, s.sent, 1)

	msg := s.sent[0]
	assert.Equal(t, "a@x.io", msg.To)
	assert.Equal(t, "Set Your Password - Acme", msg.Subject)
	assert.Contains(t, msg.Text, "https://admin.example.com/set-password/tok123")
	assert.Contains(t, msg.HTML, "https://admin.example.com/set-password/tok123")
	assert.Contains(t, msg.Text, "24 hours")
}

func TestDispatcherPasswordReset(t *testing.T) {
	s := &captureSender{}
	d := newDispatcher(s)

	err := d.SendPasswordResetEmail(context.Background(), Recipient{Email: "b@x.io", FirstName: "Bo"}, "r1")
	require.NoError(t, err)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "Password Reset Request - Acme", s.sent[0].Subject)
	assert.Contains(t, s.sent[0].Text, "https://admin.example.com/reset-password/r1")
	assert.Contains(t, s.sent[0].Text, "1 hour")
}

func TestDispatcherPropagatesSendError(t *testing.T) {
	boom := errors.New("smtp down")
	d := newDispatcher(&captureSender{err: boom})
	err := d.SendPasswordResetEmail(context.Background(), Recipient{Email: "c@x.io"}, "t")
	assert.ErrorIs(t, err, boom)
}

func TestNewSender(t *testing.T) {
	pub := &capturePublisher{}

	tests := []struct {
		name    string
		s       Settings
		want    any
		wantErr bool
	}{
		{name: "log", s: Settings{Provider: "log", Enabled: true}, want: &LogSender{}},
		{name: "disabled forces log", s: Settings{Provider: "mailgun", Enabled: false}, want: &LogSender{}},
		{name: "unknown", s: Settings{Provider: "pigeon", Enabled: true}, wantErr: true},
		{name: "mailgun missing creds", s: Settings{Provider: "mailgun", Enabled: true}, wantErr: true},
		{name: "mailgun", s: Settings{Provider: "Mailgun", Enabled: true, MailgunDomain: "mg.x.io", MailgunAPIKey: "k", From: "no-reply@x.io"}, want: &Mailgun{}},
		{name: "smtp", s: Settings{Provider: "smtp", Enabled: true, SMTPHost: "mail.x.io", From: "no-reply@x.io"}, want: &SMTP{}},
		{name: "gmail", s: Settings{Provider: "gmail", Enabled: true, EmailUser: "me@gmail.com", EmailPassword: "app"}, want: &SMTP{}},
		{name: "sendgrid", s: Settings{Provider: "sendgrid", Enabled: true, SendGridAPIKey: "SG.x", From: "no-reply@x.io"}, want: &SMTP{}},
		{name: "ses", s: Settings{Provider: "ses", Enabled: true, SESRegion: "eu-west-1", SESAccessKeyID: "AKIA", SESSecretAccessKey: "s", From: "no-reply@x.io"}, want: &SES{}},
		{name: "ses missing from", s: Settings{Provider: "ses", Enabled: true}, wantErr: true},
		{name: "queue", s: Settings{Provider: "queue", Enabled: true}, want: &QueueSender{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSender(tt.s, pub, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestGmailAndSendGridPresets(t *testing.T) {
	g, err := NewGmail("me@gmail.com", "app", "")
	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com", g.Host)
	assert.Equal(t, 587, g.Port)
	assert.Equal(t, "me@gmail.com", g.From)

	sg, err := NewSendGrid("SG.key", "no-reply@x.io")
	require.NoError(t, err)
	assert.Equal(t, "smtp.sendgrid.net", sg.Host)
	assert.Equal(t, "apikey", sg.Username)
}

func TestQueueSenderPublishesJob(t *testing.T) {
	pub := &capturePublisher{}
	q, err := NewQueueSender(pub)
	require.NoError(t, err)

	require.NoError(t, q.Send(context.Background(), Message{To: "d@x.io", Subject: "Hi", Text: "body"}))
	require.Len(t, pub.bodies, 1)
	assert.Equal(t, EmailJob{To: "d@x.io", Subject: "Hi", Text: "body"}, pub.bodies[0])

	assert.Error(t, q.Send(context.Background(), Message{}))
}

func TestEmailJobMessage(t *testing.T) {
	msg, err := EmailJob{To: "e@x.io", Subject: "S", Text: "T"}.Message()
	require.NoError(t, err)
	assert.Equal(t, Message{To: "e@x.io", Subject: "S", Text: "T"}, msg)

	data := templates.NewEmailData(templates.Branding{CompanyName: "Acme"}, "Eve", "", "e@x.io",
		templates.WithActionURL("https://a.io/reset-password/x"))
	msg, err = EmailJob{To: "e@x.io", Template: templates.PasswordReset, Data: &data}.Message()
	require.NoError(t, err)
	assert.Equal(t, "Password Reset Request - Acme", msg.Subject)
	assert.Contains(t, msg.Text, "https://a.io/reset-password/x")

	_, err = EmailJob{Subject: "S", Text: "T"}.Message()
	assert.ErrorIs(t, err, ErrInvalidJob)
	_, err = EmailJob{To: "e@x.io"}.Message()
	assert.ErrorIs(t, err, ErrInvalidJob)
	_, err = EmailJob{To: "e@x.io", Template: "missing"}.Message()
	assert.ErrorIs(t, err, ErrInvalidJob)
}

func TestNewSenderSMTPSecure(t *testing.T) {
	got, err := NewSender(Settings{Provider: "smtp", Enabled: true, SMTPHost: "mail.x.io", SMTPPort: 465, SMTPSecure: true, From: "no-reply@x.io"}, nil, nil)
	require.NoError(t, err)
	smtp, ok := got.(*SMTP)
	require.True(t, ok)
	assert.True(t, smtp.Secure)
	assert.Equal(t, 465, smtp.Port)
}

// firstByte accepts one connection and reports the first byte the client writes.
func firstByte(t *testing.T) (port int, got <-chan byte) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	ch := make(chan byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		b := make([]byte, 1)
		if n, _ := conn.Read(b); n == 1 {
			ch <- b[0]
		}
		close(ch)
	}()
	return ln.Addr().(*net.TCPAddr).Port, ch
}

func TestSMTPSecureStartsWithTLSHandshake(t *testing.T) {
	port, got := firstByte(t)
	s := &SMTP{Host: "127.0.0.1", Port: port, From: "no-reply@x.io", Secure: true}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.Error(t, s.Send(ctx, Message{To: "a@x.io", Subject: "S", Text: "T"}))

	select {
	case b, ok := <-got:
		require.True(t, ok, "client sent nothing")
		assert.Equal(t, byte(0x16), b, "expected a TLS ClientHello record")
	case <-time.After(3 * time.Second):
		t.Fatal("no connection")
	}
}

func TestSMTPPlainWaitsForGreeting(t *testing.T) {
	port, got := firstByte(t)
	s := &SMTP{Host: "127.0.0.1", Port: port, From: "no-reply@x.io"}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.Error(t, s.Send(ctx, Message{To: "a@x.io", Subject: "S", Text: "T"}))

	_, ok := <-got
	assert.False(t, ok, "client must not speak before the server greeting")
}

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESSend(t *testing.T) {
	client := &fakeSES{}
	s := &SES{Client: client, From: "no-reply@x.io"}

	require.NoError(t, s.Send(context.Background(), Message{To: "a@x.io", Subject: "Hi", Text: "plain", HTML: "<p>html</p>"}))
	require.NotNil(t, client.in)
	assert.Equal(t, "no-reply@x.io", aws.ToString(client.in.FromEmailAddress))
	assert.Equal(t, []string{"a@x.io"}, client.in.Destination.ToAddresses)
	msg := client.in.Content.Simple
	require.NotNil(t, msg)
	assert.Equal(t, "Hi", aws.ToString(msg.Subject.Data))
	assert.Equal(t, "plain", aws.ToString(msg.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(msg.Body.Html.Data))

	require.NoError(t, s.Send(context.Background(), Message{To: "b@x.io", Subject: "S", Text: "only text"}))
	assert.Nil(t, client.in.Content.Simple.Body.Html)

	client.err = errors.New("throttled")
	assert.ErrorIs(t, s.Send(context.Background(), Message{To: "c@x.io", Subject: "S", Text: "T"}), client.err)
}
