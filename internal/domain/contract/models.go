package contract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"adminportal/internal/platform/webhook"
)

const (
	StatusEstablished = "已成立"
	StatusPending     = "申請中"
)

var Statuses = []string{StatusEstablished, StatusPending}

var yearCodePattern = regexp.MustCompile(`\((\d{3})\)`)

// Record is a submitted contract as returned by the query webhook: a flat
// map of form fields, plus 合約編號 once the contract is established.
type Record map[string]any

// Text returns the field as a string; numbers are printed without exponent.
func (r Record) Text(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (r Record) Number() string {
	return r.Text(KeyNumber)
}

// YearCode is the three-digit ROC year inside the parentheses of the
// contract number, e.g. "113" for "(113)採購-001".
func (r Record) YearCode() string {
	match := yearCodePattern.FindStringSubmatch(r.Number())
	if match == nil {
		return ""
	}
	return match[1]
}

func (r Record) StatusLabel() string {
	if r.Number() != "" {
		return StatusEstablished
	}
	return StatusPending
}

// Row is a record with its derived display fields.
type Row struct {
	Key         string `json:"key"`
	YearCode    string `json:"yearCode"`
	StatusLabel string `json:"statusLabel"`
	Fields      Record `json:"fields"`
}

type Banner struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}

type Poster interface {
	Post(ctx context.Context, endpoint webhook.Endpoint, payload any) ([]byte, error)
}

type Journal interface {
	Record(ctx context.Context, account, action string, callErr error, message string)
}
