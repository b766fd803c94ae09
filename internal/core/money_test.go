package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"12.345", 1234, true},
		{"12.346", 1235, true},
		{"100", 10000, true},
		{"0.5", 50, true},
		{"-3.25", -325, true},
		{"+3.25", 325, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"12e3", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimal(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("ParseDecimal(%q): unexpected error %v", tc.in, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("ParseDecimal(%q): expected error", tc.in)
			}
			continue
		}
		if got.Cents != tc.cents {
			t.Fatalf("ParseDecimal(%q) = %d cents, want %d", tc.in, got.Cents, tc.cents)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{100050, "1000.50"},
		{-325, "-3.25"},
		{5, "0.05"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(Money{Cents: 10050})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"100.50"` {
		t.Fatalf("marshal = %s, want \"100.50\"", out)
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"899.50"`), &fromString); err != nil {
		t.Fatal(err)
	}
	if fromString.Cents != 89950 {
		t.Fatalf("unmarshal string = %d cents, want 89950", fromString.Cents)
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`100.50`), &fromNumber); err != nil {
		t.Fatal(err)
	}
	if fromNumber.Cents != 10050 {
		t.Fatalf("unmarshal number = %d cents, want 10050", fromNumber.Cents)
	}
}

func TestValidateAmount(t *testing.T) {
	if err := (Money{Cents: 1}).ValidateAmount(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).ValidateAmount(); err == nil {
		t.Fatal("expected error for zero")
	}
	if err := (Money{Cents: -100}).ValidateAmount(); err == nil {
		t.Fatal("expected error for negative")
	}
}
