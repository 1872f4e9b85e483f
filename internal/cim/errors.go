package cim

import (
	"errors"
	"fmt"
)

// ConversionError represents a failure to marshal a foreign tagged value
// into the Value model.
//
// Conversion errors include:
//   - Unsupported tag: the base tag has no entry in the conversion table
//   - Invalid representation: the tag claims an array but the foreign
//     payload does not carry one (or vice versa)
//
// There is no recovery: a conversion error aborts the whole query call.
type ConversionError struct {
	// Code identifies the error category.
	Code ConversionErrorCode

	// Tag is the offending wire type tag as received, array flag included.
	Tag Type

	// Message is a human-readable description.
	Message string
}

// ConversionErrorCode categorizes conversion errors.
type ConversionErrorCode string

const (
	// ErrCodeUnsupportedTag indicates a tag outside the supported set.
	ErrCodeUnsupportedTag ConversionErrorCode = "UNSUPPORTED_TAG"

	// ErrCodeInvalidRepresentation indicates the foreign payload does not
	// match what its tag claims.
	ErrCodeInvalidRepresentation ConversionErrorCode = "INVALID_REPRESENTATION"
)

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %s (tag=%s)", e.Code, e.Message, e.Tag)
}

// IsConversionError returns the ConversionError inside err, if any.
// Uses errors.As to handle wrapped errors.
func IsConversionError(err error) (*ConversionError, bool) {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsUnsupportedTag returns true if the error is an unsupported-tag error.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedTag(err error) bool {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeUnsupportedTag
	}
	return false
}

// IsInvalidRepresentation returns true if the error is an
// invalid-representation error. Uses errors.As to handle wrapped errors.
func IsInvalidRepresentation(err error) bool {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidRepresentation
	}
	return false
}

// NewUnsupportedTagError creates a ConversionError for a tag outside the
// supported set.
func NewUnsupportedTagError(tag Type) *ConversionError {
	return &ConversionError{
		Code:    ErrCodeUnsupportedTag,
		Tag:     tag,
		Message: "no converter for tag",
	}
}

// NewInvalidRepresentationError creates a ConversionError for a payload
// that does not match its tag.
func NewInvalidRepresentationError(tag Type, message string) *ConversionError {
	return &ConversionError{
		Code:    ErrCodeInvalidRepresentation,
		Tag:     tag,
		Message: message,
	}
}
