package templates

import (
	"time"
)

// Branding is the sender identity shown in every email.
type Branding struct {
	CompanyName string
	LogoURL     string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithActionURL(url string) Option { return func(d *EmailData) { d.ActionURL = url } }

func WithExpiresIn(ttl time.Duration) Option {
	return func(d *EmailData) { d.ExpiresIn = HumanizeDuration(ttl) }
}

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.Time = utc.Format("02 January 2006, 15:04")
		d.Year = utc.Year()
	}
}

// NewEmailData fills branding and recipient fields, then applies opts.
func NewEmailData(b Branding, firstName, lastName, email string, opts ...Option) EmailData {
	d := EmailData{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		CompanyName: b.CompanyName,
		LogoURL:     b.LogoURL,
		SupportURL:  b.SupportURL,
		Year:        time.Now().UTC().Year(),
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}
