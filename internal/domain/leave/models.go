package leave

import (
	"context"

	"adminportal/internal/domain/forms"
	"adminportal/internal/platform/webhook"
)

const (
	TypePaid     = "特休"
	TypeSick     = "病假"
	TypePersonal = "事假"
)

var Types = []string{TypePaid, TypeSick, TypePersonal}

// Record statuses. Values the webhook adds later are kept verbatim.
const (
	StatusPending   = "待審核"
	StatusApproved  = "已核准"
	StatusCancelled = "已取消"
)

// Draft keys double as the precheck wire keys.
const (
	KeyType      = "leaveType"
	KeyStartDate = "leaveStartDate"
	KeyEndDate   = "leaveEndDate"
	KeyStartTime = "leaveStartTime"
	KeyEndTime   = "leaveEndTime"
	KeyReason    = "leaveReason"
)

const (
	wireDateLayout = "2006-01-02"
	wireClock      = "15:04"
)

var DraftSchema = forms.NewSchema("leave",
	forms.Field{Key: KeyType, Label: "請假類型", Kind: forms.KindSelect, Options: Types, Default: TypePaid, Rule: "required"},
	forms.Field{Key: KeyStartDate, Label: "開始日期", Kind: forms.KindDate, Layout: wireDateLayout, Rule: "required"},
	forms.Field{Key: KeyStartTime, Label: "開始時間", Kind: forms.KindClock, Layout: wireClock, Rule: "required"},
	forms.Field{Key: KeyEndDate, Label: "結束日期", Kind: forms.KindDate, Layout: wireDateLayout, Rule: "required"},
	forms.Field{Key: KeyEndTime, Label: "結束時間", Kind: forms.KindClock, Layout: wireClock, Rule: "required"},
	forms.Field{Key: KeyReason, Label: "請假事由", Kind: forms.KindText, Rule: "max=500"},
)

// Record is one row returned by the leave query webhook.
type Record struct {
	ID        webhook.Text   `json:"單號"`
	Type      webhook.Text   `json:"假別"`
	StartDate webhook.Text   `json:"起始日期"`
	EndDate   webhook.Text   `json:"結束日期"`
	StartTime webhook.Text   `json:"起始時間"`
	EndTime   webhook.Text   `json:"結束時間"`
	Reason    webhook.Text   `json:"事由"`
	Hours     webhook.Number `json:"時數"`
	Status    webhook.Text   `json:"狀態"`
	CreatedAt webhook.Text   `json:"建立時間"`
}

func (r Record) Cancelled() bool {
	return r.Status.String() == StatusCancelled
}

// Row is a record as rendered to the table, with its row key.
type Row struct {
	Key        string `json:"key"`
	Cancelable bool   `json:"cancelable"`
	Record
}

// Banner carries the inline messages shown above a form or table.
type Banner struct {
	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}

type Poster interface {
	Post(ctx context.Context, endpoint webhook.Endpoint, payload any) ([]byte, error)
}

// Journal receives one call per webhook round trip.
type Journal interface {
	Record(ctx context.Context, account, action string, callErr error, message string)
}
