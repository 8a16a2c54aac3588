package token

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput marks a token stream that breaks the input contract. It is
// never folded into a record's issue log.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes which part of the stream broke the contract.
type InputError struct {
	Page   int
	Reason string
}

func (e *InputError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("invalid input: page %d: %s", e.Page, e.Reason)
	}
	return "invalid input: " + e.Reason
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Validate checks the contract the engine relies on: pages numbered 1..n in
// order and every token carrying finite coordinates.
func Validate(doc Document) error {
	if len(doc.Pages) == 0 {
		return &InputError{Reason: "document has no pages"}
	}
	for i, page := range doc.Pages {
		if page.Number != i+1 {
			return &InputError{
				Page:   page.Number,
				Reason: fmt.Sprintf("pages out of order: found page %d at position %d", page.Number, i+1),
			}
		}
		for _, tok := range page.Tokens {
			if !finite(tok.X) || !finite(tok.Y) {
				return &InputError{Page: page.Number, Reason: fmt.Sprintf("token %q has no coordinates", tok.Text)}
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
