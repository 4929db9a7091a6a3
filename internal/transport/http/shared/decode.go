package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"adminportal/internal/transport/http/api"
)

// DecodeJSON decodes the request body into dst and answers 400 (or 413 for
// an oversized body) when it cannot. It reports whether the caller should
// continue.
func DecodeJSON(w http.ResponseWriter, r *http.Request, requestID string, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
		return false
	}
	api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
	return false
}

// DecodeEdits reads a flat JSON object of field edits. Numbers and booleans
// are accepted and turned into their text form; null clears the field.
func DecodeEdits(w http.ResponseWriter, r *http.Request, requestID string) (map[string]string, bool) {
	raw := map[string]json.RawMessage{}
	if !DecodeJSON(w, r, requestID, &raw) {
		return nil, false
	}
	edits := make(map[string]string, len(raw))
	for key, value := range raw {
		text, err := editText(value)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", fmt.Sprintf("field %s: %v", key, err), requestID)
			return nil, false
		}
		edits[key] = text
	}
	return edits, true
}

func editText(value json.RawMessage) (string, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return "", nil
	}
	switch value[0] {
	case '"':
		var s string
		err := json.Unmarshal(value, &s)
		return s, err
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case '{', '[':
		return "", errors.New("must be a scalar")
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
