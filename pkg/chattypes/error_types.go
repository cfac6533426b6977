// This file contains the error taxonomy. The three kinds are distinct so
// callers can treat them differently: storage failures abort the turn,
// generation failures degrade to a user-visible warning, configuration
// failures are fatal for the affected generator only.
package chattypes

import "fmt"

// StorageError reports that the persistence medium is unavailable or
// corrupted. It is never recovered locally; the orchestrator aborts the
// current turn without partial writes.
type StorageError struct {
	Op  string // "open", "append", "load"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// GenerationError reports any failure originating in a response generator:
// auth, network, quota, malformed or empty model output, local inference
// failure. The orchestrator converts it into a warning; the turn's user input
// stays persisted but no assistant message is fabricated.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ConfigurationError reports missing credentials or missing local model
// artifacts at startup.
type ConfigurationError struct {
	Component string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s configuration: %v", e.Component, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
