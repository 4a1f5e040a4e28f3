// SPDX-License-Identifier: MPL-2.0

// Package issue builds user-facing error messages with actionable context.
package issue

import (
	"strings"
)

type (
	// ActionableError is an error with context for user-facing messages:
	// what operation failed, what resource was involved, and suggestions for
	// fixing it.
	ActionableError struct {
		// Operation describes what was being attempted
		// (e.g. "resolve command", "load env file").
		Operation string
		// Resource identifies the file, path, or entity involved (optional).
		Resource string
		// Suggestions provides hints on how to fix the issue (optional).
		Suggestions []string
		// Cause is the underlying error (optional).
		Cause error
	}

	// ErrorContext is a fluent builder for ActionableError.
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
	}
)

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WithOperation sets the operation description.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the resource identifier.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends a suggestion.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.suggestions = append(c.suggestions, s)
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build constructs the ActionableError.
func (c *ErrorContext) Build() *ActionableError {
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}

// Error implements the error interface with a concise, non-verbose message.
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)

	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}

	return msg.String()
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns the full message, appending suggestions as bullet points.
// With verbose set, suggestions are rendered as markdown through glamour.
func (e *ActionableError) Format(verbose bool) string {
	if len(e.Suggestions) == 0 {
		return e.Error()
	}

	var md strings.Builder
	md.WriteString(e.Error())
	md.WriteString("\n")
	for _, s := range e.Suggestions {
		md.WriteString("\n  • ")
		md.WriteString(s)
	}

	if !verbose {
		return md.String()
	}
	return RenderMarkdown(e.markdown())
}

func (e *ActionableError) markdown() string {
	var md strings.Builder
	md.WriteString("**")
	md.WriteString(e.Error())
	md.WriteString("**\n")
	for _, s := range e.Suggestions {
		md.WriteString("\n- ")
		md.WriteString(s)
	}
	return md.String()
}
