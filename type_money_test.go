package pennywise

import (
	"strings"
	"testing"
)

func TestMoneyString(t *testing.T) {
	tests := []struct {
		value    string
		currency string
		want     string
	}{
		{"1234.5", "USD", "$1,234.50"},
		{"0", "USD", "$0.00"},
		{"-12.345", "USD", "-$12.35"},
	}
	for _, tt := range tests {
		got := M(mustDecimal(t, tt.value), tt.currency).String()
		if got != tt.want {
			t.Errorf("M(%s, %s).String() = %q, want %q", tt.value, tt.currency, got, tt.want)
		}
	}
}

func TestMoneyDefaultCurrency(t *testing.T) {
	m := M(mustDecimal(t, "2500"), "")
	if m.Currency() != DefaultCurrency {
		t.Errorf("currency = %q, want %q", m.Currency(), DefaultCurrency)
	}
	if !strings.Contains(m.String(), "2,500.00") {
		t.Errorf("String() = %q, want the amount with separators", m.String())
	}
}

func TestMoneySignedString(t *testing.T) {
	m := M(mustDecimal(t, "-15"), "USD")
	if got, want := m.SignedString(Out), "- $15.00"; got != want {
		t.Errorf("SignedString(Out) = %q, want %q", got, want)
	}
	if got, want := m.SignedString(In), "+ $15.00"; got != want {
		t.Errorf("SignedString(In) = %q, want %q", got, want)
	}
}

func TestMoneyStanding(t *testing.T) {
	if got := M(mustDecimal(t, "0"), "").Standing(); got != "Surplus" {
		t.Errorf("zero balance standing = %q, want Surplus", got)
	}
	if got := M(mustDecimal(t, "-1"), "").Standing(); got != "Deficit" {
		t.Errorf("negative balance standing = %q, want Deficit", got)
	}
}
