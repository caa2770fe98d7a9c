package render

import (
	"errors"
	"fmt"
)

// Stage identifies the pipeline stage that produced a failure
type Stage string

const (
	StageValidate Stage = "validate"
	StageTax      Stage = "tax"
	StageRows     Stage = "rows"
	StagePaginate Stage = "paginate"
	StageCompose  Stage = "compose"
	StageConvert  Stage = "convert"
)

// ValidationError reports a malformed input field, such as a negative
// tax rate or a missing required field for the selected regime.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TemplateError reports a declared placeholder slot that the base
// template does not reference. It indicates a template/implementation
// mismatch, not a user error, and always fails loudly.
type TemplateError struct {
	Template string
	Slot     string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s is missing slot %q", e.Template, e.Slot)
}

// NewTemplateError creates a new TemplateError
func NewTemplateError(template, slot string) *TemplateError {
	return &TemplateError{Template: template, Slot: slot}
}

// ConversionError reports a failure of the external PDF converter.
type ConversionError struct {
	Message string
	Timeout bool
	Cause   error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// NewConversionError creates a new ConversionError
func NewConversionError(message string, timeout bool, cause error) *ConversionError {
	return &ConversionError{Message: message, Timeout: timeout, Cause: cause}
}

// RenderError is the umbrella error returned by the pipeline. It
// carries the originating stage and wraps the first failure from it.
type RenderError struct {
	Stage Stage
	Cause error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render stage %s: %v", e.Stage, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// wrapStage wraps err with its originating stage, unless it is already
// a RenderError from an inner call.
func wrapStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{Stage: stage, Cause: err}
}
