package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	DateLayout     = "2006/01/02"
	DateTimeLayout = "2006/01/02 15:04:05"
	ClockLayout    = "15:04"
)

var (
	validate = validator.New()

	dateInputLayouts = []string{
		DateLayout,
		"2006-01-02",
		"2006/1/2",
		"2006-1-2",
		time.RFC3339,
	}
	dateTimeInputLayouts = []string{
		DateTimeLayout,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006/01/02 15:04",
		time.RFC3339,
	}

	hundred = decimal.NewFromInt(100)
)

var ruleReasons = map[string]string{
	"required": "必填",
	"email":    "格式不正確",
	"numeric":  "必須為數字",
	"gte":      "數值過小",
	"gt":       "數值過小",
	"lte":      "數值過大",
	"lt":       "數值過大",
	"min":      "長度不足",
	"max":      "超過長度上限",
	"len":      "長度不正確",
}

// Form holds edited values in their string form, keyed by field key.
// It is not safe for concurrent use; controllers guard it.
type Form struct {
	schema *Schema
	values map[string]string
}

func New(schema *Schema) *Form {
	f := &Form{schema: schema, values: make(map[string]string, len(schema.fields))}
	f.Reset()
	return f
}

func (f *Form) Schema() *Schema {
	return f.schema
}

// Reset restores defaults for every field except those listed in keep.
func (f *Form) Reset(keep ...string) {
	for _, field := range f.schema.fields {
		if slices.Contains(keep, field.Key) {
			continue
		}
		f.values[field.Key] = field.Default
	}
}

func (f *Form) Get(key string) string {
	return f.values[key]
}

func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Set applies one edit. Syntactically invalid input is rejected and leaves
// the form unchanged.
func (f *Form) Set(key, raw string) error {
	field, ok := f.schema.Field(key)
	if !ok {
		return Invalid(key, "未知欄位")
	}
	value := strings.TrimSpace(raw)
	if field.Kind == KindText {
		value = raw
	}
	if value != "" {
		if _, err := coerce(field, value); err != nil {
			return Invalid(field.Key, err.Error())
		}
	}
	f.values[key] = value
	return nil
}

// SetMany applies edits atomically: either all succeed or none are kept.
func (f *Form) SetMany(edits map[string]string) error {
	snapshot := f.Values()
	var issues []Issue
	for key, raw := range edits {
		if err := f.Set(key, raw); err != nil {
			if v, ok := AsValidation(err); ok {
				issues = append(issues, v.Issues...)
				continue
			}
			return err
		}
	}
	if len(issues) > 0 {
		f.Restore(snapshot)
		slices.SortFunc(issues, func(a, b Issue) int { return strings.Compare(a.Field, b.Field) })
		return &ValidationError{Issues: issues}
	}
	return nil
}

// Restore replaces the values with a snapshot taken by Values.
func (f *Form) Restore(snapshot map[string]string) {
	for _, field := range f.schema.fields {
		f.values[field.Key] = snapshot[field.Key]
	}
}

func (f *Form) SetTime(key string, t time.Time) {
	field, ok := f.schema.Field(key)
	if !ok {
		return
	}
	switch field.Kind {
	case KindDateTime:
		f.values[key] = t.Format(DateTimeLayout)
	case KindClock:
		f.values[key] = t.Format(ClockLayout)
	default:
		f.values[key] = t.Format(DateLayout)
	}
}

func (f *Form) SetDecimal(key string, d decimal.Decimal) {
	f.values[key] = d.String()
}

// Decimal returns the numeric value of key, zero when empty or invalid.
func (f *Form) Decimal(key string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(f.values[key]))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (f *Form) Time(key string) (time.Time, bool) {
	field, ok := f.schema.Field(key)
	if !ok {
		return time.Time{}, false
	}
	value := strings.TrimSpace(f.values[key])
	if value == "" {
		return time.Time{}, false
	}
	t, err := parseTime(field.Kind, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Validate checks every non-side field against its kind, options and rule.
func (f *Form) Validate() []Issue {
	var issues []Issue
	for _, field := range f.schema.fields {
		if field.Side {
			continue
		}
		raw := strings.TrimSpace(f.values[field.Key])
		typed, err := coerce(field, raw)
		if err != nil {
			issues = append(issues, Issue{Field: field.Key, Reason: err.Error()})
			continue
		}
		if field.Rule != "" {
			if d, ok := typed.(decimal.Decimal); ok {
				typed = d.InexactFloat64()
			}
			if err := validate.Var(typed, field.Rule); err != nil {
				issues = append(issues, Issue{Field: field.Key, Reason: ruleReason(err)})
				continue
			}
		}
		if field.allowsOther() && raw == OtherOption && strings.TrimSpace(f.values[field.OtherKey]) == "" {
			issues = append(issues, Issue{Field: field.OtherKey, Reason: "選擇「其他」時必須填寫說明"})
		}
	}
	return issues
}

// Payload validates and returns the wire record: dates formatted, numbers
// coerced, and "其他" selections replaced with "其他_<free text>".
func (f *Form) Payload() (map[string]any, error) {
	if issues := f.Validate(); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	out := make(map[string]any, len(f.schema.fields))
	for _, field := range f.schema.fields {
		if field.Side {
			continue
		}
		raw := strings.TrimSpace(f.values[field.Key])
		typed, err := coerce(field, raw)
		if err != nil {
			return nil, Invalid(field.Key, err.Error())
		}
		switch v := typed.(type) {
		case decimal.Decimal:
			out[field.Key] = json.Number(v.String())
		case time.Time:
			out[field.Key] = formatTime(field, v)
		case string:
			if field.allowsOther() && v == OtherOption {
				v = OtherOption + "_" + strings.TrimSpace(f.values[field.OtherKey])
			}
			out[field.Key] = v
		default:
			out[field.Key] = v
		}
	}
	return out, nil
}

func coerce(field Field, raw string) (any, error) {
	switch field.Kind {
	case KindInteger:
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("必須為整數")
		}
		return n, nil
	case KindMoney, KindPercent:
		if raw == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.New("必須為數字")
		}
		if d.IsNegative() {
			return nil, errors.New("不可為負數")
		}
		if field.Kind == KindPercent && d.GreaterThan(hundred) {
			return nil, errors.New("必須介於 0 到 100")
		}
		return d, nil
	case KindDate, KindDateTime, KindClock:
		if raw == "" {
			return "", nil
		}
		t, err := parseTime(field.Kind, raw)
		if err != nil {
			return nil, errors.New("日期格式不正確")
		}
		return t, nil
	case KindSelect:
		if raw == "" || slices.Contains(field.Options, raw) || (field.allowsOther() && raw == OtherOption) {
			return raw, nil
		}
		return nil, fmt.Errorf("無效選項 %q", raw)
	default:
		return raw, nil
	}
}

func parseTime(kind Kind, raw string) (time.Time, error) {
	layouts := dateInputLayouts
	switch kind {
	case KindDateTime:
		layouts = dateTimeInputLayouts
	case KindClock:
		layouts = []string{ClockLayout, "15:04:05"}
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, raw, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func formatTime(field Field, t time.Time) string {
	if field.Layout != "" {
		return t.Format(field.Layout)
	}
	switch field.Kind {
	case KindDateTime:
		return t.Format(DateTimeLayout)
	case KindClock:
		return t.Format(ClockLayout)
	}
	return t.Format(DateLayout)
}

func ruleReason(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if reason, ok := ruleReasons[verrs[0].Tag()]; ok {
			return reason
		}
		return "不符合規則 " + verrs[0].Tag()
	}
	return err.Error()
}
