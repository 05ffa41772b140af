package screener

import (
	"errors"
	"fmt"
)

// ErrInsufficientHistory marks a symbol whose candle window is too short for the indicator.
var ErrInsufficientHistory = errors.New("insufficient price history")

// RunError is a failure that aborts the whole run, such as a failed
// snapshot fetch or a cancelled context. No alert is produced.
type RunError struct {
	Stage string
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// SymbolError records why a single symbol was dropped. The run continues.
type SymbolError struct {
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
}

func (e *SymbolError) Unwrap() error { return e.Err }
