package models

import (
	"fmt"
	"regexp"
	"time"
)

// Contact channels a client can be reached through.
const (
	ContactCellphone = "celular"
	ContactWhatsApp  = "whatsapp"
	ContactEmail     = "email"
	ContactInstagram = "instagram"
	ContactFacebook  = "facebook"
	ContactTelegram  = "telegram"
)

var contactTypes = map[string]bool{
	ContactCellphone: true,
	ContactWhatsApp:  true,
	ContactEmail:     true,
	ContactInstagram: true,
	ContactFacebook:  true,
	ContactTelegram:  true,
}

// brazilianPhone matches a Brazilian mobile number after digit stripping:
// optional 55 country code, two-digit area code, then the 9-prefixed number.
var brazilianPhone = regexp.MustCompile(`^(55)?\d{2}9\d{8}$`)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var alphanumeric = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Contact is one way to reach a client: a phone number, e-mail address or
// social handle, typed by platform.
type Contact struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Type      string    `json:"type"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// isPhoneType reports whether the contact type carries a phone number.
func (c *Contact) isPhoneType() bool {
	return c.Type == ContactCellphone || c.Type == ContactWhatsApp || c.Type == ContactTelegram
}

// Validate checks the contact value against its type's format and, for phone
// types, normalizes the stored value to bare digits.
func (c *Contact) Validate() error {
	if c.ClientID == 0 {
		return Invalid("cliente é obrigatório")
	}
	if !contactTypes[c.Type] {
		return Invalid("tipo de contato desconhecido: %s", c.Type)
	}
	if c.Value == "" {
		return Invalid("contato é obrigatório")
	}

	switch {
	case c.isPhoneType():
		digits := nonDigits.ReplaceAllString(c.Value, "")
		if !brazilianPhone.MatchString(digits) {
			return Invalid("o número de celular é inválido. Deve estar no padrão brasileiro, exemplos: +55 (DDD) 9XXXX-XXXX ou (DDD) 9XXXX-XXXX")
		}
		c.Value = digits
	case c.Type == ContactEmail:
		if !emailPattern.MatchString(c.Value) {
			return Invalid("email inválido")
		}
	default:
		if !alphanumeric.MatchString(c.Value) {
			return Invalid("o nome de usuário deve ser alfanumérico")
		}
	}
	return nil
}

// FormattedNumber renders a stored phone number for display, e.g.
// "+55 (11) 98765-4321". Only cellphone and WhatsApp contacts are
// formatted; everything else returns the empty string.
func (c *Contact) FormattedNumber() string {
	if c.Type != ContactCellphone && c.Type != ContactWhatsApp {
		return ""
	}
	v := c.Value
	switch len(v) {
	case 13:
		return fmt.Sprintf("+%s (%s) %s%s-%s", v[0:2], v[2:4], v[4:5], v[5:9], v[9:])
	case 12:
		return fmt.Sprintf("+%s (%s) %s-%s", v[0:2], v[2:4], v[4:8], v[8:])
	case 11:
		return fmt.Sprintf("(%s) %s%s-%s", v[0:2], v[2:3], v[3:7], v[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", v[0:2], v[2:6], v[6:])
	}
	return ""
}
