package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MinLimit is the smallest per-loan or total limit a client may carry.
var MinLimit = decimal.RequireFromString("12.00")

var nonDigits = regexp.MustCompile(`\D`)

// Client represents a person loans are issued to.
type Client struct {
	ID             int64           `json:"id"`
	ResponsibleID  int64           `json:"responsible_id"`
	Name           string          `json:"name"`
	Surname        string          `json:"surname"`
	FullName       string          `json:"full_name"`
	CPF            string          `json:"cpf"`
	MaxOutstanding decimal.Decimal `json:"max_outstanding"`
	LoanLimit      decimal.Decimal `json:"loan_limit"`
	Banned         bool            `json:"banned"`
	BanReason      string          `json:"ban_reason"`
	BannedAt       *time.Time      `json:"banned_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate checks the client's own field invariants.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("nome do cliente é obrigatório")
	}
	if c.ResponsibleID == 0 {
		return Invalid("responsável é obrigatório")
	}
	if c.LoanLimit.LessThan(MinLimit) {
		return Invalid("limite por empréstimo deve ser de no mínimo R$ %s", MinLimit.StringFixed(2))
	}
	if c.MaxOutstanding.LessThan(MinLimit) {
		return Invalid("limite máximo deve ser de no mínimo R$ %s", MinLimit.StringFixed(2))
	}
	if len(c.BanReason) > 1024 {
		return Invalid("motivo do banimento não pode exceder 1024 caracteres")
	}
	if c.CPF != "" {
		if err := ValidateCPF(c.CPF); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpdate rejects changes to fields that are immutable after creation.
func (c *Client) ValidateUpdate(original *Client) error {
	if c.ResponsibleID != original.ResponsibleID {
		return Invalid("não é permitido alterar o(a) responsável depois da criação")
	}
	return c.Validate()
}

// DisplayName derives the stored full name from name and surname.
func (c *Client) DisplayName() string {
	if c.Surname == "" {
		return c.Name
	}
	return c.Name + " " + c.Surname
}

// MaskedCPF hides the outer digit groups, e.g. "***.456.***-01".
func (c *Client) MaskedCPF() string {
	if len(c.CPF) != 11 {
		return ""
	}
	return fmt.Sprintf("***.%s.***-%s", c.CPF[3:6], c.CPF[9:])
}

// FormattedCPF renders "123.456.789-01".
func (c *Client) FormattedCPF() string {
	if len(c.CPF) != 11 {
		return ""
	}
	return fmt.Sprintf("%s.%s.%s-%s", c.CPF[0:3], c.CPF[3:6], c.CPF[6:9], c.CPF[9:])
}

// ValidateCPF checks the Brazilian CPF verification digits.
func ValidateCPF(cpf string) error {
	cpf = nonDigits.ReplaceAllString(cpf, "")

	if len(cpf) != 11 {
		return Invalid("CPF deve ter 11 dígitos")
	}
	if strings.Count(cpf, string(cpf[0])) == 11 {
		return Invalid("CPF inválido")
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += (10 - i) * int(cpf[i]-'0')
	}
	if (sum*10%11)%10 != int(cpf[9]-'0') {
		return Invalid("CPF inválido")
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += (11 - i) * int(cpf[i]-'0')
	}
	if (sum*10%11)%10 != int(cpf[10]-'0') {
		return Invalid("CPF inválido")
	}

	return nil
}
