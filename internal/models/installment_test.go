package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validInstallment() *Installment {
	return &Installment{
		ID:            10,
		LoanID:        1,
		ClientID:      3,
		ResponsibleID: 7,
		Number:        1,
		Amount:        decimal.RequireFromString("433.34"),
		StartDate:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC),
	}
}

func TestInstallmentValidate(t *testing.T) {
	p := validInstallment()
	if err := p.Validate(3, 2); err != nil {
		t.Errorf("valid installment rejected: %v", err)
	}

	p = validInstallment()
	p.Amount = decimal.RequireFromString("1.00")
	if err := p.Validate(3, 0); err == nil {
		t.Error("expected amount at the minimum to be rejected")
	}

	p = validInstallment()
	p.LoanID = 0
	if err := p.Validate(3, 0); err == nil {
		t.Error("expected missing loan to be rejected")
	}

	p = validInstallment()
	p.Number = 4
	if err := p.Validate(3, 0); err == nil {
		t.Error("expected out-of-range number to be rejected")
	}
}

func TestInstallmentCountCap(t *testing.T) {
	// A fourth installment on a three-installment loan must be rejected.
	p := validInstallment()
	p.ID = 0
	p.Number = 3
	if err := p.Validate(3, 3); err == nil {
		t.Fatal("expected creation beyond the declared count to be rejected")
	}
	// Updating an existing row is not subject to the cap.
	p = validInstallment()
	if err := p.Validate(3, 3); err != nil {
		t.Errorf("update of existing installment rejected: %v", err)
	}
}

func TestInstallmentImmutableFields(t *testing.T) {
	orig := validInstallment()

	cases := []struct {
		name   string
		mutate func(*Installment)
	}{
		{"number", func(p *Installment) { p.Number = 2 }},
		{"amount", func(p *Installment) { p.Amount = decimal.RequireFromString("999.99") }},
		{"responsible", func(p *Installment) { p.ResponsibleID = 99 }},
		{"client", func(p *Installment) { p.ClientID = 99 }},
		{"loan", func(p *Installment) { p.LoanID = 99 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := validInstallment()
			c.mutate(p)
			if err := p.ValidateUpdate(orig); err == nil {
				t.Fatal("expected immutability violation to be rejected")
			}
		})
	}

	p := validInstallment()
	p.Paid = true
	if err := p.ValidateUpdate(orig); err != nil {
		t.Errorf("paid-state change rejected: %v", err)
	}
}
