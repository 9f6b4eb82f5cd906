// Package questions loads the questionnaire bank and resolves submitted
// answers into raw responses.
package questions

import "fmt"

// LoadError represents an error during bank file I/O, parsing, or
// validation.
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("question bank error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("question bank error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
