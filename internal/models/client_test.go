package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func validClient() *Client {
	return &Client{
		ID:             3,
		ResponsibleID:  7,
		Name:           "Maria",
		Surname:        "Silva",
		CPF:            "52998224725",
		MaxOutstanding: decimal.RequireFromString("10000.00"),
		LoanLimit:      decimal.RequireFromString("1000.00"),
	}
}

func TestValidateCPF(t *testing.T) {
	if err := ValidateCPF("52998224725"); err != nil {
		t.Errorf("valid CPF rejected: %v", err)
	}
	if err := ValidateCPF("529.982.247-25"); err != nil {
		t.Errorf("formatted CPF rejected: %v", err)
	}
	for _, cpf := range []string{"11111111111", "52998224724", "1234", ""} {
		if err := ValidateCPF(cpf); err == nil {
			t.Errorf("invalid CPF %q accepted", cpf)
		}
	}
}

func TestClientValidate(t *testing.T) {
	if err := validClient().Validate(); err != nil {
		t.Errorf("valid client rejected: %v", err)
	}

	c := validClient()
	c.Name = "  "
	if err := c.Validate(); err == nil {
		t.Error("expected blank name to be rejected")
	}

	c = validClient()
	c.LoanLimit = decimal.RequireFromString("11.99")
	if err := c.Validate(); err == nil {
		t.Error("expected limit below minimum to be rejected")
	}

	c = validClient()
	c.CPF = "12345678900"
	if err := c.Validate(); err == nil {
		t.Error("expected invalid CPF to be rejected")
	}
}

func TestClientResponsibleImmutable(t *testing.T) {
	orig := validClient()
	c := validClient()
	c.ResponsibleID = 99
	if err := c.ValidateUpdate(orig); err == nil {
		t.Fatal("expected responsible change to be rejected")
	}
}

func TestClientCPFHelpers(t *testing.T) {
	c := validClient()
	if got := c.FormattedCPF(); got != "529.982.247-25" {
		t.Errorf("FormattedCPF = %q", got)
	}
	if got := c.MaskedCPF(); got != "***.982.***-25" {
		t.Errorf("MaskedCPF = %q", got)
	}
	if got := c.DisplayName(); got != "Maria Silva" {
		t.Errorf("DisplayName = %q", got)
	}
}
