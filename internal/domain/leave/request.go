package leave

import (
	"context"
	"errors"
	"sync"
	"time"

	"adminportal/internal/domain/forms"
	"adminportal/internal/domain/journal"
	"adminportal/internal/domain/session"
	"adminportal/internal/platform/webhook"
)

type State string

const (
	StateIdle       State = "idle"
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
)

type RequestEndpoints struct {
	Precheck webhook.Endpoint
	Commit   webhook.Endpoint
}

// DraftView is what the leave dialog renders.
type DraftView struct {
	State         State             `json:"state"`
	Draft         map[string]string `json:"draft,omitempty"`
	EstimatedDays float64           `json:"estimatedDays,omitempty"`
	Banner
}

// RequestController drives the leave dialog: Idle -> Editing -> Submitting,
// then back to Idle on success or Editing on failure.
type RequestController struct {
	client    Poster
	endpoints RequestEndpoints
	journal   Journal

	mu     sync.Mutex
	state  State
	form   *forms.Form
	banner Banner
}

func NewRequestController(client Poster, endpoints RequestEndpoints, j Journal) *RequestController {
	return &RequestController{
		client:    client,
		endpoints: endpoints,
		journal:   j,
		state:     StateIdle,
		form:      forms.New(DraftSchema),
	}
}

func (c *RequestController) View() DraftView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// PickDate opens a fresh draft for day, pre-filled with the session's work
// hours.
func (c *RequestController) PickDate(day time.Time, sess session.Session) (DraftView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return c.viewLocked(), ErrBusy
	}

	start, end := sess.WorkHours(day)
	c.form.Reset()
	c.form.SetTime(KeyStartDate, day)
	c.form.SetTime(KeyEndDate, day)
	c.form.SetTime(KeyStartTime, start)
	c.form.SetTime(KeyEndTime, end)
	c.state = StateEditing
	c.banner = Banner{}
	return c.viewLocked(), nil
}

// Update applies field edits to the open draft. Edits that leave the end
// before the start are rejected as a whole.
func (c *RequestController) Update(edits map[string]string) (DraftView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateSubmitting:
		return c.viewLocked(), ErrBusy
	case StateIdle:
		return c.viewLocked(), ErrNoDraft
	}

	snapshot := c.form.Values()
	if err := c.form.SetMany(edits); err != nil {
		return c.viewLocked(), err
	}
	if err := checkRange(c.form); err != nil {
		c.form.Restore(snapshot)
		return c.viewLocked(), err
	}
	return c.viewLocked(), nil
}

// Close discards the draft.
func (c *RequestController) Close() (DraftView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting {
		return c.viewLocked(), ErrBusy
	}
	c.form.Reset()
	c.state = StateIdle
	c.banner = Banner{}
	return c.viewLocked(), nil
}

// Submit runs the precheck then commit handshake. The commit webhook is
// only called when the precheck reports success.
func (c *RequestController) Submit(ctx context.Context, sess session.Session) (DraftView, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		defer c.mu.Unlock()
		return c.viewLocked(), ErrBusy
	case StateIdle:
		defer c.mu.Unlock()
		return c.viewLocked(), ErrNoDraft
	}

	request, err := c.requestLocked(sess)
	if err != nil {
		defer c.mu.Unlock()
		msg := err.Error()
		if verr, ok := forms.AsValidation(err); ok {
			msg = verr.Message()
		}
		c.banner = Banner{Error: msg}
		return c.viewLocked(), &Error{Message: msg, Err: err}
	}
	c.state = StateSubmitting
	c.banner = Banner{}
	c.mu.Unlock()

	failure := c.handshake(ctx, sess.Account, request)

	c.mu.Lock()
	defer c.mu.Unlock()
	if failure != nil {
		c.state = StateEditing
		c.banner = Banner{Error: failure.Message}
		return c.viewLocked(), failure
	}
	c.form.Reset()
	c.state = StateIdle
	c.banner = Banner{Success: MsgSubmitted}
	return c.viewLocked(), nil
}

func (c *RequestController) handshake(ctx context.Context, account string, request map[string]any) *Error {
	checked, err := c.precheck(ctx, request)
	c.record(ctx, account, journal.ActionLeavePrecheck, err)
	if err != nil {
		return &Error{Message: MsgPrecheckFailed + failureText(err), Err: err}
	}

	commit := make(map[string]any, len(request)+len(checked))
	for k, v := range request {
		commit[k] = v
	}
	for k, v := range checked {
		commit[k] = v
	}

	err = c.commit(ctx, commit)
	c.record(ctx, account, journal.ActionLeaveCommit, err)
	if err != nil {
		return &Error{Message: MsgCommitFailed + failureText(err), Err: err}
	}
	return nil
}

func (c *RequestController) precheck(ctx context.Context, request map[string]any) (map[string]any, error) {
	body, err := c.client.Post(ctx, c.endpoints.Precheck, request)
	if err != nil {
		return nil, err
	}
	outcome, err := webhook.Decode[map[string]any](body)
	if err != nil {
		return nil, err
	}
	if err := outcome.Err(c.endpoints.Precheck.Name, MsgUnknown); err != nil {
		return nil, err
	}
	return outcome.Data, nil
}

func (c *RequestController) commit(ctx context.Context, payload map[string]any) error {
	body, err := c.client.Post(ctx, c.endpoints.Commit, payload)
	if err != nil {
		return err
	}
	outcome, err := webhook.Decode[map[string]any](body)
	if err != nil {
		return err
	}
	return outcome.Err(c.endpoints.Commit.Name, MsgUnknown)
}

func (c *RequestController) requestLocked(sess session.Session) (map[string]any, error) {
	if err := checkRange(c.form); err != nil {
		return nil, err
	}
	payload, err := c.form.Payload()
	if err != nil {
		return nil, err
	}
	payload["username"] = sess.Account
	payload["workStart"] = sess.WorkStartTime
	payload["workEnd"] = sess.WorkEndTime
	payload["remainHours"] = sess.RemainingLeaveHours()
	return payload, nil
}

func (c *RequestController) record(ctx context.Context, account, action string, err error) {
	if c.journal == nil {
		return
	}
	c.journal.Record(ctx, account, action, err, webhook.Message(err, ""))
}

func (c *RequestController) viewLocked() DraftView {
	view := DraftView{State: c.state, Banner: c.banner}
	if c.state == StateIdle {
		return view
	}
	view.Draft = c.form.Values()
	start, ok1 := c.form.Time(KeyStartDate)
	end, ok2 := c.form.Time(KeyEndDate)
	if ok1 && ok2 {
		if days, err := CalculateDays(start, end); err == nil {
			view.EstimatedDays = days
		}
	}
	return view
}

// failureText is the part of a banner after its prefix.
func failureText(err error) string {
	if webhook.IsTransport(err) {
		return MsgUnavailable
	}
	var rejected *webhook.RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return MsgUnknown
}
