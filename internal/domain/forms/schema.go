package forms

import "fmt"

type Kind string

const (
	KindText     Kind = "text"
	KindInteger  Kind = "integer"
	KindMoney    Kind = "money"
	KindPercent  Kind = "percent"
	KindDate     Kind = "date"
	KindDateTime Kind = "datetime"
	KindClock    Kind = "clock"
	KindSelect   Kind = "select"
)

// OtherOption is the select entry that unlocks a free-text side field.
const OtherOption = "其他"

// Field declares one form input. Rule is a go-playground/validator tag
// applied to the coerced value.
type Field struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Section  string   `json:"section,omitempty"`
	Kind     Kind     `json:"kind"`
	Options  []string `json:"options,omitempty"`
	OtherKey string   `json:"otherKey,omitempty"`
	Default  string   `json:"default,omitempty"`
	Rule     string   `json:"rule,omitempty"`
	// Layout overrides the wire format of date and time kinds.
	Layout string `json:"-"`
	// Side fields are edited like any other but never sent as their own key.
	Side bool `json:"side,omitempty"`
}

func (f Field) allowsOther() bool {
	return f.OtherKey != ""
}

type Schema struct {
	Name   string
	fields []Field
	index  map[string]int
}

// NewSchema panics on duplicate keys or a dangling OtherKey; schemas are
// package-level declarations.
func NewSchema(name string, fields ...Field) *Schema {
	s := &Schema{Name: name, fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := s.index[f.Key]; dup {
			panic(fmt.Sprintf("forms: duplicate field %q in schema %s", f.Key, name))
		}
		s.index[f.Key] = i
	}
	for _, f := range fields {
		if f.OtherKey == "" {
			continue
		}
		if _, ok := s.index[f.OtherKey]; !ok {
			panic(fmt.Sprintf("forms: field %q references unknown other key %q", f.Key, f.OtherKey))
		}
	}
	return s
}

func (s *Schema) Field(key string) (Field, bool) {
	i, ok := s.index[key]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}
