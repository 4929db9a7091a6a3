package forms

import (
	"errors"
	"strings"
)

type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError is a local failure detected before any remote call.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field == "" {
			parts = append(parts, issue.Reason)
			continue
		}
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return strings.Join(parts, "; ")
}

// Message is the banner text for the first issue.
func (e *ValidationError) Message() string {
	if len(e.Issues) == 0 {
		return ""
	}
	if e.Issues[0].Field == "" {
		return e.Issues[0].Reason
	}
	return e.Issues[0].Field + "：" + e.Issues[0].Reason
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Issues: []Issue{{Field: field, Reason: reason}}}
}

func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
