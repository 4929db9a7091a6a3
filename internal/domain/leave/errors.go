package leave

import "errors"

const (
	MsgPrecheckFailed = "請假檢查失敗："
	MsgCommitFailed   = "請假申請失敗："
	MsgSubmitted      = "請假申請成功！"
	MsgQueryFailed    = "查詢失敗："
	MsgCancelFailed   = "取消請假失敗："
	MsgCancelled      = "取消請假成功！"
	MsgUnknown        = "未知錯誤"
	MsgUnavailable    = "伺服器連線失敗"
)

var (
	ErrBusy      = errors.New("another request is in progress")
	ErrNoDraft   = errors.New("no leave draft is open")
	ErrMissingID = errors.New("leave record id required")
)

// Error carries the banner text for a failed transition. Err is the
// underlying validation, rejection or transport error.
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
