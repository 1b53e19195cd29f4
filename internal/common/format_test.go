package common

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0"},
		{5, "5"},
		{999, "999"},
		{1000, "1,000"},
		{25000, "25,000"},
		{1234567, "1,234,567"},
		{1234567.89, "1,234,568"},
		{-1234, "-1,234"},
		{-500, "-500"},
	}
	for _, tt := range tests {
		got := FormatMoney(decimal.NewFromFloat(tt.input))
		if got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0.0%"},
		{100, "100.0%"},
		{33.333, "33.3%"},
		{66.666, "66.7%"},
	}
	for _, tt := range tests {
		got := FormatPercent(tt.input)
		if got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
