package mailer

import (
	"errors"

	"github.com/rohn-shah/diode-be/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for the email worker.
// A job either carries a rendered message or names a template plus its data.
type EmailJob struct {
	To       string               `json:"to"`
	Subject  string               `json:"subject,omitempty"`
	Text     string               `json:"text,omitempty"`
	HTML     string               `json:"html,omitempty"`
	Template string               `json:"template,omitempty"` // set_password, password_reset
	Data     *templates.EmailData `json:"data,omitempty"`
}

var ErrInvalidJob = errors.New("invalid email job")

// Message renders the job when it names a template.
func (j EmailJob) Message() (Message, error) {
	if j.To == "" {
		return Message{}, ErrInvalidJob
	}
	if j.Template == "" {
		if j.Subject == "" || (j.Text == "" && j.HTML == "") {
			return Message{}, ErrInvalidJob
		}
		return Message{To: j.To, Subject: j.Subject, Text: j.Text, HTML: j.HTML}, nil
	}
	var data templates.EmailData
	if j.Data != nil {
		data = *j.Data
	}
	subject, text, html, err := templates.Render(j.Template, data)
	if err != nil {
		return Message{}, errors.Join(ErrInvalidJob, err)
	}
	return Message{To: j.To, Subject: subject, Text: text, HTML: html}, nil
}
