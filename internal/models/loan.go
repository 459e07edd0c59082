package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheuszbb/emprestimos/internal/money"
)

// Loan field bounds.
var (
	MinPrincipal       = decimal.RequireFromString("12.00")
	MinInterestPercent = decimal.RequireFromString("1.00")
	MaxInterestPercent = decimal.RequireFromString("100.00")
)

const (
	MinInstallments = 1
	MaxInstallments = 12
	MaxReasonLength = 1024
)

// Loan represents a principal lent to a client, repaid in installments plus
// interest. Principal, interest percent, installment count, client and
// responsible user are immutable after creation.
type Loan struct {
	ID              int64           `json:"id"`
	ResponsibleID   int64           `json:"responsible_id"`
	ClientID        int64           `json:"client_id"`
	Principal       decimal.Decimal `json:"principal"`
	InterestPercent decimal.Decimal `json:"interest_percent"`
	Installments    int             `json:"installments"`
	StartDate       time.Time       `json:"start_date"`
	DueDate         time.Time       `json:"due_date"`
	Paid            bool            `json:"paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Reason          string          `json:"reason"`
	ReceiptMIME     string          `json:"receipt_mime,omitempty"`
	Receipt         []byte          `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Profit returns the interest portion, rounded to cents.
func (l *Loan) Profit() decimal.Decimal {
	return money.Round2(l.Principal.Mul(l.InterestPercent).Div(decimal.NewFromInt(100)))
}

// GrossRepayment returns principal plus interest, the total owed across all
// installments, rounded to cents.
func (l *Loan) GrossRepayment() decimal.Decimal {
	return money.Round2(l.Principal.Add(l.Profit()))
}

// Overdue reports whether the loan is unpaid past its due date.
func (l *Loan) Overdue(now time.Time) bool {
	return !l.Paid && l.DueDate.Before(now)
}

// DaysOverdue returns whole days elapsed since the due date, zero when on time.
func (l *Loan) DaysOverdue(now time.Time) int {
	if !l.Overdue(now) {
		return 0
	}
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(l.DueDate.Year(), l.DueDate.Month(), l.DueDate.Day(), 0, 0, 0, 0, now.Location())
	return int(nowDay.Sub(dueDay).Hours() / 24)
}

// Validate checks field invariants for a new loan.
func (l *Loan) Validate() error {
	if l.ClientID == 0 {
		return Invalid("cliente é obrigatório")
	}
	if l.ResponsibleID == 0 {
		return Invalid("responsável é obrigatório")
	}
	if l.Principal.LessThan(MinPrincipal) {
		return Invalid("valor do empréstimo deve ser de no mínimo R$ %s", MinPrincipal.StringFixed(2))
	}
	if l.InterestPercent.LessThan(MinInterestPercent) || l.InterestPercent.GreaterThan(MaxInterestPercent) {
		return Invalid("porcentagem deve estar entre %s%% e %s%%", MinInterestPercent.StringFixed(2), MaxInterestPercent.StringFixed(2))
	}
	if l.Installments < MinInstallments || l.Installments > MaxInstallments {
		return Invalid("quantidade de parcelas deve estar entre %d e %d", MinInstallments, MaxInstallments)
	}
	if len(l.Reason) > MaxReasonLength {
		return Invalid("motivo não pode exceder %d caracteres", MaxReasonLength)
	}
	return nil
}

// ValidateCreate additionally rejects loans born in the paid state.
func (l *Loan) ValidateCreate() error {
	if l.Paid {
		return Invalid("este empréstimo não pode ser marcado como concluído ao ser criado")
	}
	return l.Validate()
}

// ValidateUpdate rejects changes to fields that are immutable after creation.
// unpaidInstallments is the current count of unpaid installments; a loan cannot
// be marked paid while any remain.
func (l *Loan) ValidateUpdate(original *Loan, unpaidInstallments int) error {
	if !l.Principal.Equal(original.Principal) {
		return Invalid("não é permitido alterar o valor do empréstimo depois da criação")
	}
	if l.Installments != original.Installments {
		return Invalid("não é permitido alterar a quantidade de parcelas depois da criação")
	}
	if !l.InterestPercent.Equal(original.InterestPercent) {
		return Invalid("não é permitido alterar a porcentagem depois da criação")
	}
	if l.ResponsibleID != original.ResponsibleID {
		return Invalid("não é permitido alterar o(a) responsável depois da criação")
	}
	if l.ClientID != original.ClientID {
		return Invalid("não é permitido alterar o cliente depois da criação")
	}
	if l.Paid && unpaidInstallments > 0 {
		return Invalid("este empréstimo não pode ser marcado como concluído: ainda existem parcelas não pagas")
	}
	return l.Validate()
}
