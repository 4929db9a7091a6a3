package webhook

import (
	"errors"
	"fmt"
)

// ErrTransport marks failures where no usable response came back: network
// errors, timeouts, non-JSON bodies, and non-2xx replies without a message.
var ErrTransport = errors.New("webhook transport failure")

// RejectedError is an application-level rejection: the webhook answered but
// did not report success.
type RejectedError struct {
	Endpoint string
	Message  string
}

func (e *RejectedError) Error() string {
	if e.Endpoint == "" {
		return "webhook rejected: " + e.Message
	}
	return fmt.Sprintf("webhook %s rejected: %s", e.Endpoint, e.Message)
}

func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

func AsRejected(err error) (*RejectedError, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}

// Message returns the text a user should see for err. Rejections carry the
// remote message; transport failures use fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if rejected, ok := AsRejected(err); ok && rejected.Message != "" {
		return rejected.Message
	}
	return fallback
}
