// Package checker - diagnostics for ownership misuse.
//
// Diagnostics include file position (file:line:column), the check that
// produced them and, where possible, a suggested fix.
//
// Example output:
//
//	main.go:42:15: [adopt-subobject] NewShared adopts &cfg.Limits, a part of cfg
//
//	Suggestion: Use sptr.Alias(owner, &cfg.Limits) with the SharedPtr that owns cfg
package checker

import (
	"fmt"
	"go/token"
)

// Check names one class of misuse.
type Check string

const (
	// CheckDoubleAdopt reports the same object adopted by two NewShared
	// calls. Both owner groups would destroy it.
	CheckDoubleAdopt Check = "double-adopt"

	// CheckAdoptSubobject reports NewShared on the address of a field or
	// element, which belongs to the enclosing value.
	CheckAdoptSubobject Check = "adopt-subobject"

	// CheckAdoptAfterReset reports ResetTo adopting an object that is
	// already owned.
	CheckAdoptAfterReset Check = "adopt-after-reset"
)

// AllChecks returns every check in reporting order.
func AllChecks() []Check {
	return []Check{CheckDoubleAdopt, CheckAdoptSubobject, CheckAdoptAfterReset}
}

// Diagnostic is a single finding with its source position.
//
// Fields:
//   - File: Source file path
//   - Line: Line number (1-indexed)
//   - Column: Column number (1-indexed)
//   - Check: The check that produced the finding
//   - Message: Human-readable description
//   - Suggestion: Optional hint for fixing the code
//
// Diagnostic implements error so a single finding can be returned where
// an error is expected.
type Diagnostic struct {
	File       string
	Line       int
	Column     int
	Check      Check
	Message    string
	Suggestion string
}

// Error implements the error interface.
//
// Format: file:line:column: [check] message
//
// If Suggestion is non-empty, it's appended after a blank line with a
// "Suggestion: " prefix.
func (d *Diagnostic) Error() string {
	result := fmt.Sprintf("%s:%d:%d: [%s] %s", d.File, d.Line, d.Column, d.Check, d.Message)
	if d.Suggestion != "" {
		result += fmt.Sprintf("\n\nSuggestion: %s", d.Suggestion)
	}
	return result
}

// Position returns the "file:line:column" prefix of the diagnostic.
func (d *Diagnostic) Position() string {
	return fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
}

// newDiagnostic creates a diagnostic with the file position of pos.
func newDiagnostic(fset *token.FileSet, pos token.Pos, check Check, msg, suggestion string) *Diagnostic {
	position := fset.Position(pos)
	return &Diagnostic{
		File:       position.Filename,
		Line:       position.Line,
		Column:     position.Column,
		Check:      check,
		Message:    msg,
		Suggestion: suggestion,
	}
}
