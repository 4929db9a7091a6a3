package shared

import (
	"net/http"
	"strings"
	"time"

	"adminportal/internal/domain/forms"
	"adminportal/internal/transport/http/api"
)

// Validator collects query and path parameter problems before a handler
// calls into a controller.
type Validator struct {
	issues []forms.Issue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]forms.Issue, 0, 2)}
}

func (v *Validator) Add(field, reason string) {
	reason = strings.TrimSpace(reason)
	if v == nil || reason == "" {
		return
	}
	v.issues = append(v.issues, forms.Issue{Field: strings.TrimSpace(field), Reason: reason})
}

// OptionalDate parses raw when present. A zero time means absent.
func (v *Validator) OptionalDate(field, raw string) time.Time {
	parsed, err := ParseDate(raw)
	if err != nil {
		v.Add(field, "日期格式不正確")
		return time.Time{}
	}
	return parsed
}

func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	if end.Before(start) {
		v.Add(endField, "結束日期不可早於"+startField)
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, &forms.ValidationError{Issues: v.issues}, nil)
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, verr *forms.ValidationError, data any) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		verr.Message(),
		map[string]any{"fields": verr.Issues},
		data,
		requestID,
	)
}
