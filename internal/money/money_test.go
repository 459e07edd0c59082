package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2HalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"333.333333", "333.33"},
		{"333.335", "333.34"},
		{"0.005", "0.01"},
		{"1000", "1000"},
		{"12.344", "12.34"},
		{"12.345", "12.35"},
	}
	for _, c := range cases {
		got := Round2(decimal.RequireFromString(c.in))
		if got.String() != c.want {
			t.Errorf("Round2(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1234.56", "R$ 1.234,56"},
		{"0", "R$ 0,00"},
		{"12.00", "R$ 12,00"},
		{"1000000", "R$ 1.000.000,00"},
		{"999.9", "R$ 999,90"},
		{"-1234.56", "R$ -1.234,56"},
	}
	for _, c := range cases {
		got := FormatBRL(decimal.RequireFromString(c.in))
		if got != c.want {
			t.Errorf("FormatBRL(%s) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	got := EscapeMarkdownV2("R$ 1.234,56")
	want := `R$ 1\.234,56`
	if got != want {
		t.Errorf("EscapeMarkdownV2 = %q, want %q", got, want)
	}

	escaped := EscapeMarkdownV2(markdownV2Specials)
	for _, r := range markdownV2Specials {
		if !strings.Contains(escaped, `\`+string(r)) {
			t.Errorf("special %q not escaped in %q", r, escaped)
		}
	}

	if got := EscapeMarkdownV2("sem especiais"); got != "sem especiais" {
		t.Errorf("plain text changed: %q", got)
	}
}
