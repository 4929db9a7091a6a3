package auth

import "errors"

const (
	MsgRejected        = "登入失敗"
	MsgUnavailable     = "伺服器連線失敗"
	MsgMissingCredents = "請輸入帳號與密碼"
)

var ErrMissingCredentials = errors.New("account and password required")

// Error is the single failure kind callers see from Authenticate. Network
// failures and rejections differ only in Message.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) UserMessage() string {
	return e.Message
}
