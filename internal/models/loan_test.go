package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validLoan() *Loan {
	return &Loan{
		ID:              1,
		ResponsibleID:   7,
		ClientID:        3,
		Principal:       decimal.RequireFromString("1000.00"),
		InterestPercent: decimal.RequireFromString("30.00"),
		Installments:    3,
		StartDate:       time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		DueDate:         time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestLoanGrossRepayment(t *testing.T) {
	l := validLoan()
	if got := l.Profit().String(); got != "300" {
		t.Errorf("Profit = %s, want 300", got)
	}
	if got := l.GrossRepayment().String(); got != "1300" {
		t.Errorf("GrossRepayment = %s, want 1300", got)
	}

	l.Principal = decimal.RequireFromString("100.00")
	l.InterestPercent = decimal.RequireFromString("33.33")
	if got := l.GrossRepayment().StringFixed(2); got != "133.33" {
		t.Errorf("GrossRepayment = %s, want 133.33", got)
	}
}

func TestLoanValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Loan)
	}{
		{"principal below minimum", func(l *Loan) { l.Principal = decimal.RequireFromString("11.99") }},
		{"percent below range", func(l *Loan) { l.InterestPercent = decimal.RequireFromString("0.99") }},
		{"percent above range", func(l *Loan) { l.InterestPercent = decimal.RequireFromString("100.01") }},
		{"zero installments", func(l *Loan) { l.Installments = 0 }},
		{"too many installments", func(l *Loan) { l.Installments = 13 }},
		{"missing client", func(l *Loan) { l.ClientID = 0 }},
		{"oversized reason", func(l *Loan) { l.Reason = string(make([]byte, 1025)) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := validLoan()
			c.mutate(l)
			err := l.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !IsValidation(err) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}

	if err := validLoan().Validate(); err != nil {
		t.Errorf("valid loan rejected: %v", err)
	}
}

func TestLoanValidateCreateRejectsPaid(t *testing.T) {
	l := validLoan()
	l.Paid = true
	if err := l.ValidateCreate(); err == nil {
		t.Fatal("expected paid-at-creation to be rejected")
	}
}

func TestLoanImmutableFields(t *testing.T) {
	orig := validLoan()

	cases := []struct {
		name   string
		mutate func(*Loan)
	}{
		{"principal", func(l *Loan) { l.Principal = decimal.RequireFromString("2000.00") }},
		{"installment count", func(l *Loan) { l.Installments = 6 }},
		{"interest percent", func(l *Loan) { l.InterestPercent = decimal.RequireFromString("20.00") }},
		{"responsible", func(l *Loan) { l.ResponsibleID = 99 }},
		{"client", func(l *Loan) { l.ClientID = 99 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := validLoan()
			c.mutate(l)
			if err := l.ValidateUpdate(orig, 0); err == nil {
				t.Fatal("expected immutability violation to be rejected")
			}
		})
	}

	if err := validLoan().ValidateUpdate(orig, 0); err != nil {
		t.Errorf("unchanged loan rejected: %v", err)
	}
}

func TestLoanCannotBePaidWithUnpaidInstallments(t *testing.T) {
	orig := validLoan()
	l := validLoan()
	l.Paid = true

	if err := l.ValidateUpdate(orig, 2); err == nil {
		t.Fatal("expected rejection while unpaid installments remain")
	}
	if err := l.ValidateUpdate(orig, 0); err != nil {
		t.Errorf("fully repaid loan rejected: %v", err)
	}
}

func TestLoanDaysOverdue(t *testing.T) {
	l := validLoan()
	now := l.DueDate.AddDate(0, 0, 5).Add(3 * time.Hour)

	if !l.Overdue(now) {
		t.Fatal("expected loan to be overdue")
	}
	if got := l.DaysOverdue(now); got != 5 {
		t.Errorf("DaysOverdue = %d, want 5", got)
	}

	l.Paid = true
	if l.Overdue(now) || l.DaysOverdue(now) != 0 {
		t.Error("paid loan must never be overdue")
	}
}
