// Package validation enforces the structural invariants of a Specification.
// All violations are collected and reported together so one build surfaces
// every problem at once.
package validation

import (
	"fmt"
	"strings"
)

// Result contains the outcome of validating one Specification.
type Result struct {
	Valid   bool    `json:"valid"`
	Errors  []Issue `json:"errors,omitempty"`
	Summary Summary `json:"summary"`
}

// Issue is one invariant violation.
type Issue struct {
	Category string `json:"category"` // "schema", "actor", "role", "rule", "camera"
	Message  string `json:"message"`
	Subject  string `json:"subject,omitempty"` // offending name/uid
}

// Summary gives an overview of the validated Specification.
type Summary struct {
	Schemas int `json:"schemas"`
	Actors  int `json:"actors"`
	Roles   int `json:"roles"`
	Rules   int `json:"rules"`
	Errors  int `json:"errors"`
}

// ValidationError carries the full ordered list of violations for a failed
// build.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Issues[0].Message)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "validation failed with %d errors:", len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("\n  - ")
		b.WriteString(issue.Message)
	}
	return b.String()
}

// Err converts a result into a single error carrying every violation, or nil
// when the Specification is valid.
func (r *Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Issues: r.Errors}
}
