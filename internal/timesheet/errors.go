package timesheet

import "github.com/faizmokh/timesheets/internal/token"

// ErrInvalidInput is returned by Parse when the token stream breaks the input
// contract (pages out of order, tokens without coordinates). Data-quality
// problems are reported as Issues instead.
var ErrInvalidInput = token.ErrInvalidInput
