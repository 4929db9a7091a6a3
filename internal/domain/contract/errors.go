package contract

import "errors"

const (
	MsgSubmitted     = "合約申請已成功提交"
	MsgSubmitFailed  = "提交失敗，請稍後重試"
	MsgOverAllocated = "合約占比總和不可超過 100%"
	MsgMissingRange  = "請選擇起始日期和結束日期"
	MsgQueryFailed   = "查詢失敗，請稍後重試"
)

var (
	ErrBusy     = errors.New("another request is in progress")
	ErrNotFound = errors.New("contract not found")
)

// Error carries the banner text for a failed transition.
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
