package leave

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"adminportal/internal/domain/forms"
	"adminportal/internal/domain/journal"
	"adminportal/internal/domain/session"
	"adminportal/internal/platform/webhook"
)

type QueryEndpoints struct {
	Query  webhook.Endpoint
	Cancel webhook.Endpoint
}

type QueryView struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	IncludeHistory bool   `json:"includeHistory"`
	Rows           []Row  `json:"rows"`
	Banner
}

type queryArgs struct {
	account        string
	start          time.Time
	end            time.Time
	includeHistory bool
}

type queryRequest struct {
	Username  string `json:"username"`
	StartDate string `json:"startdate"`
	EndDate   string `json:"enddate"`
}

type cancelRequest struct {
	LeaveID string `json:"leaveId"`
	Status  string `json:"status"`
}

// QueryController lists the account's leave records and cancels them.
// Query and Cancel share one busy flag.
type QueryController struct {
	client    Poster
	endpoints QueryEndpoints
	journal   Journal
	Now       func() time.Time

	mu      sync.Mutex
	busy    bool
	last    *queryArgs
	records []Record
	banner  Banner
}

func NewQueryController(client Poster, endpoints QueryEndpoints, j Journal) *QueryController {
	return &QueryController{client: client, endpoints: endpoints, journal: j, Now: time.Now}
}

// Query fetches records between start and end. Zero bounds default to the
// current month. Cancelled records are hidden unless includeHistory is set.
func (c *QueryController) Query(ctx context.Context, sess session.Session, start, end time.Time, includeHistory bool) (QueryView, error) {
	first, last := MonthRange(c.Now())
	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last
	}
	if end.Before(start) {
		err := forms.Invalid("end", "結束日期不可早於開始日期")
		return c.View(), &Error{Message: MsgQueryFailed + err.Message(), Err: err}
	}
	args := queryArgs{account: sess.Account, start: start, end: end, includeHistory: includeHistory}

	if !c.acquire() {
		return c.View(), ErrBusy
	}
	defer c.release()

	err := c.fetch(ctx, args)
	return c.View(), err
}

// Cancel marks one record cancelled remotely, then re-runs the last query.
// A failed cancel leaves the cached list untouched.
func (c *QueryController) Cancel(ctx context.Context, sess session.Session, recordID string) (QueryView, error) {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return c.View(), &Error{Message: MsgCancelFailed + "缺少單號", Err: ErrMissingID}
	}
	if rec, ok := c.lookup(recordID); ok && rec.Cancelled() {
		err := forms.Invalid("id", "此筆請假已取消")
		return c.View(), &Error{Message: MsgCancelFailed + err.Issues[0].Reason, Err: err}
	}

	if !c.acquire() {
		return c.View(), ErrBusy
	}
	defer c.release()

	err := c.cancel(ctx, recordID)
	c.record(ctx, sess.Account, journal.ActionLeaveCancel, err)
	if err != nil {
		failure := &Error{Message: MsgCancelFailed + failureText(err), Err: err}
		c.setBanner(Banner{Error: failure.Message})
		return c.View(), failure
	}

	args := queryArgs{account: sess.Account}
	c.mu.Lock()
	if c.last != nil && c.last.account == sess.Account {
		args = *c.last
	}
	c.mu.Unlock()
	if args.start.IsZero() {
		args.start, args.end = MonthRange(c.Now())
	}

	if err := c.fetch(ctx, args); err != nil {
		c.mu.Lock()
		c.banner.Success = MsgCancelled
		c.mu.Unlock()
		return c.View(), err
	}
	c.setBanner(Banner{Success: MsgCancelled})
	return c.View(), nil
}

// View renders the cached records. Rows without a record number get a fresh
// random key on every call.
func (c *QueryController) View() QueryView {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := QueryView{Rows: []Row{}, Banner: c.banner}
	if c.last == nil {
		return view
	}
	view.Start = c.last.start.Format(wireDateLayout)
	view.End = c.last.end.Format(wireDateLayout)
	view.IncludeHistory = c.last.includeHistory
	for _, rec := range c.records {
		if rec.Cancelled() && !c.last.includeHistory {
			continue
		}
		view.Rows = append(view.Rows, Row{Key: RowKey(rec), Cancelable: !rec.Cancelled(), Record: rec})
	}
	return view
}

// RowKey is the record number, or a random UUID when the webhook left it
// empty.
func RowKey(rec Record) string {
	if id := strings.TrimSpace(rec.ID.String()); id != "" {
		return id
	}
	return uuid.NewString()
}

func (c *QueryController) fetch(ctx context.Context, args queryArgs) error {
	body, err := c.client.Post(ctx, c.endpoints.Query, queryRequest{
		Username:  args.account,
		StartDate: args.start.Format(wireDateLayout),
		EndDate:   args.end.Format(wireDateLayout),
	})
	var records []Record
	if err == nil {
		records, err = webhook.DecodeList[Record](body)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &args
	if err != nil {
		c.records = nil
		c.banner = Banner{Error: MsgQueryFailed + failureText(err)}
		return &Error{Message: c.banner.Error, Err: err}
	}
	c.records = records
	c.banner = Banner{}
	return nil
}

func (c *QueryController) cancel(ctx context.Context, recordID string) error {
	body, err := c.client.Post(ctx, c.endpoints.Cancel, cancelRequest{LeaveID: recordID, Status: StatusCancelled})
	if err != nil {
		return err
	}
	outcome, err := webhook.Decode[map[string]any](body)
	if err != nil {
		return err
	}
	return outcome.Err(c.endpoints.Cancel.Name, MsgUnknown)
}

func (c *QueryController) lookup(recordID string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.records {
		if rec.ID.String() == recordID {
			return rec, true
		}
	}
	return Record{}, false
}

func (c *QueryController) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *QueryController) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *QueryController) setBanner(b Banner) {
	c.mu.Lock()
	c.banner = b
	c.mu.Unlock()
}

func (c *QueryController) record(ctx context.Context, account, action string, err error) {
	if c.journal == nil {
		return
	}
	c.journal.Record(ctx, account, action, err, webhook.Message(err, ""))
}
