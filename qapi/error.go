package qapi

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/serum-errors/go-serum"
)

const (
	ECodeUnknown         = "quarry-error-unknown"
	ECodeInternal        = "quarry-error-internal"
	ECodeArgument        = "quarry-error-argument"
	ECodeUnknownArgument = "quarry-error-unknown-argument"
	ECodeInvalidJobCount = "quarry-error-invalid-job-count"
	ECodeSpecParse       = "quarry-error-spec-parse"
	ECodeDeptype         = "quarry-error-deptype"
	ECodeConfig          = "quarry-error-config"
	ECodeIo              = "quarry-error-io"
	ECodeSerialization   = "quarry-error-serialization"
	ECodeInitialization  = "quarry-error-initialization"
	ECodeMissing         = "quarry-error-missing"
)

// TerminalError emits an error on stdout as json, and halts immediately.
// Reserved for init methods, where no better reporting protocol is established yet.
func TerminalError(err serum.ErrorInterface, exitCode int) {
	json.NewEncoder(os.Stdout).Encode(struct {
		Error serum.ErrorInterface `json:"error"`
	}{err})
	os.Exit(exitCode)
}

// ErrorUnknown is returned when an unknown error occurs
//
// Errors:
//
// - quarry-error-unknown --
func ErrorUnknown(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeUnknown, "%s: %w", msgTmpl, cause)
}

// ErrorInternal is for miscellaneous errors that should be handled internally.
// In most cases, prefer to use more specific errors.
//
// Errors:
//
// - quarry-error-internal --
func ErrorInternal(msgTmpl string, cause error) error {
	return serum.Errorf(ECodeInternal, "%s: %w", msgTmpl, cause)
}

// ErrorUnknownArgument is returned when a command asks the argument registry
// for a name that was never registered.
//
// Errors:
//
//    - quarry-error-unknown-argument --
func ErrorUnknownArgument(argName string, commandName string) error {
	return serum.Error(ECodeUnknownArgument,
		serum.WithMessageTemplate("cannot add unknown argument {{argName|q}} to command {{command|q}}"),
		serum.WithDetail("argName", argName),
		serum.WithDetail("command", commandName),
	)
}

// ErrorInvalidJobCount is returned when a job-count argument is less than one.
//
// Errors:
//
//    - quarry-error-invalid-job-count --
func ErrorInvalidJobCount(optionString string, value int) error {
	return serum.Error(ECodeInvalidJobCount,
		serum.WithMessageTemplate("invalid value for argument {{option|q}}: expected a positive integer, got {{value}}"),
		serum.WithDetail("option", optionString),
		serum.WithDetail("value", fmt.Sprintf("%d", value)),
	)
}

// ErrorSpecParse is returned when a token does not form valid spec syntax.
//
// Errors:
//
//    - quarry-error-spec-parse --
func ErrorSpecParse(token string, reason string) error {
	return serum.Error(ECodeSpecParse,
		serum.WithMessageTemplate("malformed spec {{token|q}}: {{reason}}"),
		serum.WithDetail("token", token),
		serum.WithDetail("reason", reason),
	)
}

// ErrorDeptype is returned when a dependency type token is not part of the
// known vocabulary.
//
// Errors:
//
//    - quarry-error-deptype --
func ErrorDeptype(token string, known string) error {
	return serum.Error(ECodeDeptype,
		serum.WithMessageTemplate("invalid dependency type {{token|q}}: must be one of {{known}}"),
		serum.WithDetail("token", token),
		serum.WithDetail("known", known),
	)
}

// ErrorConfig is returned when an error occurs in the configuration system.
//
// Errors:
//
//    - quarry-error-config --
func ErrorConfig(context string, cause error) error {
	result := serum.Errorf(ECodeConfig, "config error: %s: %w", context, cause)
	addDetails(result, [][2]string{
		{"context", context},
	})
	return result
}

// ErrorIo wraps generic I/O errors from the Go stdlib
//
// Errors:
//
//    - quarry-error-io --
func ErrorIo(context string, path string, cause error) error {
	result := serum.Errorf(ECodeIo, "io error: %s: %w", context, cause)
	addDetails(result, [][2]string{{"context", context}, {"path", path}})
	return result
}

// ErrorSerialization is returned when a serialization or deserialization error occurs
//
// Errors:
//
//    - quarry-error-serialization --
func ErrorSerialization(context string, cause error) error {
	result := serum.Errorf(ECodeSerialization, "serialization error: %s: %w", context, cause)
	addDetails(result, [][2]string{
		{"context", context},
	})
	return result
}

// addDetails is a helper method to get around the fact that doing a type coercion within
// an exported function is not currently allowed by serum.
// We won't need this if serum supports an equivalent to %w in message templates OR
// supports adding details when using serum.Errorf
func addDetails(err error, details [][2]string) {
	s := err.(*serum.ErrorValue)
	s.Data.Details = append(s.Data.Details, details...)
}
