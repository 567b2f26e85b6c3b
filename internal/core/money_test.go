package core

import "testing"

func TestFromMilliunits(t *testing.T) {
	cases := []struct {
		milli int64
		want  int64
	}{
		{-950000, -95000}, // $950.00 outflow
		{950000, 95000},
		{-1250, -125},
		{0, 0},
	}

	for _, c := range cases {
		if got := FromMilliunits(c.milli); got.Cents != c.want {
			t.Errorf("FromMilliunits(%d) = %d cents, want %d", c.milli, got.Cents, c.want)
		}
	}
}

func TestFromFloat(t *testing.T) {
	cases := []struct {
		units float64
		want  int64
	}{
		{12.34, 1234},
		{12.345, 1235}, // half-up
		{12.344, 1234},
		{-12.345, -1235},
		{0, 0},
	}

	for _, c := range cases {
		if got := FromFloat(c.units); got.Cents != c.want {
			t.Errorf("FromFloat(%v) = %d cents, want %d", c.units, got.Cents, c.want)
		}
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 95000}).String(); got != "$950.00" {
		t.Errorf("String = %q, want $950.00", got)
	}
	if got := (Money{Cents: -101}).String(); got != "-$1.01" {
		t.Errorf("String = %q, want -$1.01", got)
	}
	if got := (Money{Cents: 5}).String(); got != "$0.05" {
		t.Errorf("String = %q, want $0.05", got)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 250}
	b := Money{Cents: 100}

	if got := a.Add(b).Cents; got != 350 {
		t.Errorf("Add = %d, want 350", got)
	}
	if got := a.Sub(b).Cents; got != 150 {
		t.Errorf("Sub = %d, want 150", got)
	}
}
