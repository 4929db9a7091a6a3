package journal

import "time"

const (
	ActionLogin          = "login"
	ActionLeavePrecheck  = "leave.precheck"
	ActionLeaveCommit    = "leave.commit"
	ActionLeaveCancel    = "leave.cancel"
	ActionContractSubmit = "contract.submit"
)

const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

// Entry records one webhook round trip made on behalf of an account.
type Entry struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Account   string    `json:"account" gorm:"type:varchar(128);not null;index:idx_journal_account_created,priority:1"`
	Action    string    `json:"action" gorm:"type:varchar(32);not null"`
	Outcome   string    `json:"outcome" gorm:"type:varchar(16);not null"`
	Message   string    `json:"message,omitempty"`
	RequestID string    `json:"requestId,omitempty" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index:idx_journal_account_created,priority:2"`
}

func (Entry) TableName() string {
	return "submission_journal"
}
