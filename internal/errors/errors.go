// Package errors provides custom error types for optchat.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrBusy          = errors.New("a response is still pending")
	ErrClosed        = errors.New("dispatcher is closed")
	ErrInvalidScript = errors.New("invalid response script")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ScriptError represents a response script that could not be loaded
type ScriptError struct {
	Path    string
	Message string
}

func (e *ScriptError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid response script: %s", e.Message)
	}
	return fmt.Sprintf("invalid response script %s: %s", e.Path, e.Message)
}

// Is allows comparison with sentinel errors
func (e *ScriptError) Is(target error) bool {
	if target == ErrInvalidScript {
		return true
	}
	_, ok := target.(*ScriptError)
	return ok
}

// NewScriptError creates a new ScriptError
func NewScriptError(path, message string) *ScriptError {
	return &ScriptError{Path: path, Message: message}
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// Is allows comparison with sentinel errors
func (e *ConfigError) Is(target error) bool {
	if target == ErrInvalidConfig {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// IsBusy reports whether err means a submission was rejected because a
// response is pending
func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsClosed reports whether err means the dispatcher was already closed
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsScriptError reports whether err is a response script error
func IsScriptError(err error) bool {
	return errors.Is(err, ErrInvalidScript)
}

// IsConfigError reports whether err is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
