package token

import (
	"errors"
	"math"
	"testing"
)

func TestAssembleOrdersTopToBottomLeftToRight(t *testing.T) {
	tokens := []Token{
		{Text: "8.00", X: 388, Y: 300},
		{Text: "ST", X: 40, Y: 350},
		{Text: "1", X: 20, Y: 350},
		{Text: "Week Beginning Sep 2, 2019", X: 40, Y: 300},
		{Text: "   ", X: 10, Y: 500},
	}

	rows := Assemble(tokens)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Y != 350 || rows[1].Y != 300 {
		t.Fatalf("row ys = %v, %v, want 350, 300", rows[0].Y, rows[1].Y)
	}

	got := ReadingOrder(tokens)
	want := []string{"1", "ST", "Week Beginning Sep 2, 2019", "8.00"}
	if len(got) != len(want) {
		t.Fatalf("ReadingOrder len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Fatalf("ReadingOrder[%d] = %q, want %q", i, got[i].Text, want[i])
		}
	}
}

func TestAssembleIgnoresArrivalOrder(t *testing.T) {
	a := []Token{{Text: "a", X: 1, Y: 10}, {Text: "b", X: 2, Y: 10}, {Text: "c", X: 1, Y: 5}}
	b := []Token{a[2], a[1], a[0]}

	left, right := ReadingOrder(a), ReadingOrder(b)
	for i := range left {
		if left[i] != right[i] {
			t.Fatalf("ReadingOrder differs at %d: %v vs %v", i, left[i], right[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr bool
	}{
		{name: "ok", doc: Document{Pages: []Page{{Number: 1}, {Number: 2}}}},
		{name: "no pages", doc: Document{}, wantErr: true},
		{name: "out of order", doc: Document{Pages: []Page{{Number: 2}, {Number: 1}}}, wantErr: true},
		{name: "gap", doc: Document{Pages: []Page{{Number: 1}, {Number: 3}}}, wantErr: true},
		{
			name:    "missing coordinates",
			doc:     Document{Pages: []Page{{Number: 1, Tokens: []Token{{Text: "x", X: math.NaN(), Y: 1}}}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.doc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
