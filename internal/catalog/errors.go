// Package catalog loads and validates archetype catalog files.
package catalog

import "fmt"

// ConfigurationError represents an unusable catalog: unreadable, unparsable,
// or containing entries the engine cannot match against. It is fatal to the
// calling operation.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("catalog error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("catalog error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
