package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const StatusSuccess = "success"

// Outcome is the normalised result of one webhook call. Every endpoint quirk
// (array wrapper, bare object, status string or boolean success) is folded
// into it by Decode.
type Outcome[T any] struct {
	OK      bool
	Message string
	Data    T
	// Raw holds the unwrapped element so callers can forward extra keys.
	Raw json.RawMessage
}

// Err converts a failed outcome into a *RejectedError, using fallback when
// the remote gave no message.
func (o Outcome[T]) Err(endpoint, fallback string) error {
	if o.OK {
		return nil
	}
	msg := o.Message
	if msg == "" {
		msg = fallback
	}
	return &RejectedError{Endpoint: endpoint, Message: msg}
}

type envelope struct {
	Status  string          `json:"status"`
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Decode reads an `[{status,message,data}]` or `{status,message,data}` body.
// An empty array or null body is a failed outcome without message.
func Decode[T any](raw []byte) (Outcome[T], error) {
	var out Outcome[T]
	element, err := firstElement(raw)
	if err != nil {
		return out, err
	}
	if element == nil {
		return out, nil
	}

	var env envelope
	if err := json.Unmarshal(element, &env); err != nil {
		return out, fmt.Errorf("%w: decode envelope: %v", ErrTransport, err)
	}
	out.Raw = element
	out.Message = strings.TrimSpace(env.Message)
	out.OK = strings.EqualFold(strings.TrimSpace(env.Status), StatusSuccess) || (env.Success != nil && *env.Success)

	data := bytes.TrimSpace(env.Data)
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if err := json.Unmarshal(data, &out.Data); err != nil {
			return out, fmt.Errorf("%w: decode data: %v", ErrTransport, err)
		}
	}
	return out, nil
}

// DecodeList reads a body that may be an array, a single object, or empty.
// Elements shaped as {"data": {...}} are unwrapped.
func DecodeList[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var elements []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, fmt.Errorf("%w: decode list: %v", ErrTransport, err)
		}
	case '{':
		elements = []json.RawMessage{trimmed}
	default:
		return nil, fmt.Errorf("%w: unexpected list body", ErrTransport)
	}

	out := make([]T, 0, len(elements))
	for _, element := range elements {
		element = unwrapData(element)
		if len(element) == 0 {
			continue
		}
		var item T
		if err := json.Unmarshal(element, &item); err != nil {
			return nil, fmt.Errorf("%w: decode list item: %v", ErrTransport, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func firstElement(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, fmt.Errorf("%w: decode array: %v", ErrTransport, err)
		}
		if len(elements) == 0 {
			return nil, nil
		}
		return elements[0], nil
	case '{':
		return json.RawMessage(trimmed), nil
	}
	return nil, fmt.Errorf("%w: unexpected body", ErrTransport)
}

func unwrapData(element json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(element)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '{' {
		return trimmed
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return trimmed
	}
	if len(probe) != 1 {
		return trimmed
	}
	data, ok := probe["data"]
	if !ok {
		return trimmed
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return trimmed
	}
	return data
}

// Number accepts JSON numbers, numeric strings, empty strings and null.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = 0
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

func (n Number) Float64() float64 {
	return float64(n)
}

// Text accepts JSON strings, numbers and null as a string value. Record
// numbers and dates come back from the webhooks in either form.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(string(trimmed))
	return nil
}

func (t Text) String() string {
	return string(t)
}
