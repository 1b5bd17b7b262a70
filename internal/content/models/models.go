package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
)

// HeroKey is the settings key the hero banner is stored under.
const HeroKey = "hero"

// Hero is the storefront banner. It is replaced as a whole on every write.
type Hero struct {
	BackgroundImage string    `json:"bg_image"`
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle"`
	ButtonLabel     string    `json:"button_label"`
	ButtonHref      string    `json:"button_href"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

func (h *Hero) Normalize() {
	h.BackgroundImage = strings.TrimSpace(h.BackgroundImage)
	h.Title = strings.TrimSpace(h.Title)
	h.Subtitle = strings.TrimSpace(h.Subtitle)
	h.ButtonLabel = strings.TrimSpace(h.ButtonLabel)
	h.ButtonHref = strings.TrimSpace(h.ButtonHref)
}

// Message is an entry in the admin inbox.
type Message struct {
	ID        id.MessageID `json:"id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Email     string       `json:"email"`
	Message   string       `json:"message"`
	CreatedAt time.Time    `json:"created_at"`
}

// Contact is a storefront contact-form submission.
type Contact struct {
	ID        id.ContactID `json:"id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Email     string       `json:"email"`
	Message   string       `json:"message"`
	CreatedAt time.Time    `json:"created_at"`
}

type ContactForm struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}

func (f *ContactForm) Normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Message = strings.TrimSpace(f.Message)
}

func (f *ContactForm) Validate() error {
	if f.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if !govalidator.IsEmail(f.Email) {
		return dErrors.New(dErrors.CodeValidation, "email must be a valid address")
	}
	if f.Message == "" {
		return dErrors.New(dErrors.CodeValidation, "message is required")
	}
	if !govalidator.RuneLength(f.Message, "1", "5000") {
		return dErrors.New(dErrors.CodeValidation, "message is too long")
	}
	return nil
}
