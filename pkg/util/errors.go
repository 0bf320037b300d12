// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for topology build failures
var (
	ErrMalformedRecord        = errors.New("malformed record")
	ErrUnknownEntity          = errors.New("unknown entity")
	ErrUnknownTemplate        = errors.New("unknown template")
	ErrAddressConflict        = errors.New("address conflict")
	ErrMultiplePrimaryAddress = fmt.Errorf("multiple primary addresses: %w", ErrAddressConflict)
	ErrIncompleteOspfConfig   = errors.New("incomplete OSPF config")
	ErrInvalidAuthConfig      = errors.New("invalid authentication config")
	ErrMissingBgpProcess      = errors.New("missing BGP process")
	ErrUnknownPeerGroup       = errors.New("unknown peer group")
	ErrInvalidAddressing      = errors.New("invalid addressing")
	ErrInvalidConfig          = errors.New("invalid configuration")
	ErrValidationFailed       = errors.New("validation failed")
	ErrNotImplemented         = errors.New("not implemented")
)

// LookupError represents a host, interface or group that is not in the inventory
type LookupError struct {
	Kind string // host, interface, group
	Name string
	Host string // set for interface lookups
}

func (e *LookupError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("%s '%s' not found on host '%s'", e.Kind, e.Name, e.Host)
	}
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.Name)
}

func (e *LookupError) Unwrap() error {
	return ErrUnknownEntity
}

// NewLookupError creates a lookup error for a host or group
func NewLookupError(kind, name string) *LookupError {
	return &LookupError{Kind: kind, Name: name}
}

// NewInterfaceLookupError creates a lookup error for an interface on a host
func NewInterfaceLookupError(host, name string) *LookupError {
	return &LookupError{Kind: "interface", Name: name, Host: host}
}

// AddressConflictError carries the pair of addresses that violate an
// IPv4 container invariant.
type AddressConflictError struct {
	Address string
	Other   string
	Reason  error // ErrAddressConflict or ErrMultiplePrimaryAddress
}

func (e *AddressConflictError) Error() string {
	if errors.Is(e.Reason, ErrMultiplePrimaryAddress) {
		return fmt.Sprintf("address %s and %s are both primary, only one allowed", e.Other, e.Address)
	}
	return fmt.Sprintf("address %s overlaps with %s", e.Other, e.Address)
}

func (e *AddressConflictError) Unwrap() error {
	if e.Reason == nil {
		return ErrAddressConflict
	}
	return e.Reason
}

// TemplateError represents a template name missing from a registry
type TemplateError struct {
	Kind string
	Name string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%s template '%s' is not defined", e.Kind, e.Name)
}

func (e *TemplateError) Unwrap() error {
	return ErrUnknownTemplate
}

// RecordError represents a table row that could not be decoded into a record
type RecordError struct {
	Table  string
	Row    int
	Field  string
	Detail string
}

func (e *RecordError) Error() string {
	msg := fmt.Sprintf("malformed record in table %s row %d", e.Table, e.Row)
	if e.Field != "" {
		msg += " field " + e.Field
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}

// TableError wraps any failure raised while processing a table row. It names
// the table, the 1-based data row and, where known, the offending field.
type TableError struct {
	Table string
	Row   int
	Field string
	Err   error
}

func (e *TableError) Error() string {
	// record errors already carry table, row and field
	var rec *RecordError
	if errors.As(e.Err, &rec) {
		return e.Err.Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "table %s", e.Table)
	if e.Row > 0 {
		fmt.Fprintf(&b, " row %d", e.Row)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %s", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *TableError) Unwrap() error {
	return e.Err
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
