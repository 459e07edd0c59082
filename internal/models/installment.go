package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MinInstallmentAmount is the exclusive lower bound for installment values.
var MinInstallmentAmount = decimal.RequireFromString("1.00")

// Installment represents one scheduled repayment unit of a loan. Amount,
// number and the loan/client/responsible references are immutable after
// creation; only the paid state, payment date and receipt may change.
type Installment struct {
	ID            int64           `json:"id"`
	LoanID        int64           `json:"loan_id"`
	ClientID      int64           `json:"client_id"`
	ResponsibleID int64           `json:"responsible_id"`
	Number        int             `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
	StartDate     time.Time       `json:"start_date"`
	DueDate       time.Time       `json:"due_date"`
	Paid          bool            `json:"paid"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	ReceiptMIME   string          `json:"receipt_mime,omitempty"`
	Receipt       []byte          `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Overdue reports whether the installment is unpaid past its due date.
func (p *Installment) Overdue(now time.Time) bool {
	return !p.Paid && p.DueDate.Before(now)
}

// DaysOverdue returns whole days elapsed since the due date, zero when on time.
func (p *Installment) DaysOverdue(now time.Time) int {
	if !p.Overdue(now) {
		return 0
	}
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(p.DueDate.Year(), p.DueDate.Month(), p.DueDate.Day(), 0, 0, 0, 0, now.Location())
	return int(nowDay.Sub(dueDay).Hours() / 24)
}

// Validate checks field invariants. loanInstallments is the parent loan's
// declared count; existing is how many sibling installments already exist.
func (p *Installment) Validate(loanInstallments, existing int) error {
	if p.LoanID == 0 {
		return Invalid("empréstimo é obrigatório")
	}
	if p.Number < 1 || p.Number > loanInstallments {
		return Invalid("número da parcela deve estar entre 1 e %d", loanInstallments)
	}
	if p.ID == 0 && existing >= loanInstallments {
		return Invalid("este empréstimo só permite %d parcelas, você já criou %d", loanInstallments, existing)
	}
	if p.Amount.LessThanOrEqual(MinInstallmentAmount) {
		return Invalid("valor da parcela deve ser maior que R$ %s", MinInstallmentAmount.StringFixed(2))
	}
	return nil
}

// ValidateUpdate rejects changes to fields that are immutable after creation.
func (p *Installment) ValidateUpdate(original *Installment) error {
	if p.Number != original.Number {
		return Invalid("não é permitido alterar o número da parcela existente")
	}
	if !p.Amount.Equal(original.Amount) {
		return Invalid("não é permitido alterar o valor da parcela depois da criação")
	}
	if p.ResponsibleID != original.ResponsibleID {
		return Invalid("não é permitido alterar o(a) responsável depois da criação")
	}
	if p.ClientID != original.ClientID {
		return Invalid("não é permitido alterar o cliente depois da criação")
	}
	if p.LoanID != original.LoanID {
		return Invalid("não é permitido alterar o empréstimo depois da criação")
	}
	return nil
}
