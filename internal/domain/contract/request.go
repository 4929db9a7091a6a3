package contract

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"adminportal/internal/domain/forms"
	"adminportal/internal/domain/journal"
	"adminportal/internal/domain/session"
	"adminportal/internal/platform/webhook"
)

var hundred = decimal.NewFromInt(100)

type Installment struct {
	Slot       int             `json:"slot"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Enabled    bool            `json:"enabled"`
}

// DraftView is what the contract dialog renders.
type DraftView struct {
	Draft           map[string]string `json:"draft"`
	Installments    []Installment     `json:"installments"`
	Enabled         int               `json:"enabled"`
	TotalPercentage decimal.Decimal   `json:"totalPercentage"`
	OverAllocated   bool              `json:"overAllocated"`
	Submitting      bool              `json:"submitting"`
	Banner
}

// RequestController holds one contract stamping draft. Slots beyond the
// selected term count are always zero.
type RequestController struct {
	client   Poster
	endpoint webhook.Endpoint
	journal  Journal
	Now      func() time.Time

	mu     sync.Mutex
	busy   bool
	form   *forms.Form
	banner Banner
}

// NewRequestController opens a draft pre-filled with the applicant's name
// and email from sess.
func NewRequestController(client Poster, endpoint webhook.Endpoint, j Journal, sess session.Session) *RequestController {
	c := &RequestController{
		client:   client,
		endpoint: endpoint,
		journal:  j,
		Now:      time.Now,
		form:     forms.New(DraftSchema),
	}
	_ = c.form.Set(KeyEmail, sess.Email)
	_ = c.form.Set(KeyApplicant, sess.DisplayName)
	c.stampDates()
	return c
}

func (c *RequestController) View() DraftView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// SetInstallmentTermCount selects a term label and zeroes every slot it
// does not enable.
func (c *RequestController) SetInstallmentTermCount(label string) (DraftView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return c.viewLocked(), ErrBusy
	}
	if err := c.setTermLocked(label); err != nil {
		return c.viewLocked(), err
	}
	return c.viewLocked(), nil
}

// SetPercentage sets the contract share of one enabled slot. The running
// total may exceed 100; that only flags the view.
func (c *RequestController) SetPercentage(slot int, raw string) (DraftView, error) {
	return c.setSlot(slot, raw, PercentKey)
}

func (c *RequestController) SetAmount(slot int, raw string) (DraftView, error) {
	return c.setSlot(slot, raw, AmountKey)
}

// Set edits one field by key. Term and installment keys go through the
// same checks as their dedicated setters.
func (c *RequestController) Set(key, raw string) (DraftView, error) {
	return c.SetMany(map[string]string{key: raw})
}

// SetMany applies several edits; if any is rejected none are kept.
func (c *RequestController) SetMany(edits map[string]string) (DraftView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return c.viewLocked(), ErrBusy
	}

	snapshot := c.form.Values()
	if term, ok := edits[KeyTerm]; ok {
		if err := c.setTermLocked(term); err != nil {
			return c.viewLocked(), err
		}
	}
	enabled := c.enabledLocked()
	rest := make(map[string]string, len(edits))
	for key, raw := range edits {
		if key == KeyTerm {
			continue
		}
		if slot := slotOf(key); slot > enabled {
			c.form.Restore(snapshot)
			return c.viewLocked(), forms.Invalid(key, "此期款未啟用")
		}
		rest[key] = raw
	}
	if err := c.form.SetMany(rest); err != nil {
		c.form.Restore(snapshot)
		return c.viewLocked(), err
	}
	return c.viewLocked(), nil
}

// Discard resets the draft, keeping the applicant's email and name.
func (c *RequestController) Discard() (DraftView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return c.viewLocked(), ErrBusy
	}
	c.resetLocked()
	c.banner = Banner{}
	return c.viewLocked(), nil
}

// Submit validates locally, then posts the formatted record. On success the
// draft is reset except for the applicant's email and name.
func (c *RequestController) Submit(ctx context.Context, sess session.Session) (DraftView, error) {
	c.mu.Lock()
	if c.busy {
		defer c.mu.Unlock()
		return c.viewLocked(), ErrBusy
	}
	payload, err := c.payloadLocked()
	if err != nil {
		defer c.mu.Unlock()
		msg := err.Error()
		if verr, ok := forms.AsValidation(err); ok {
			msg = verr.Message()
		}
		c.banner = Banner{Error: msg}
		return c.viewLocked(), &Error{Message: msg, Err: err}
	}
	c.busy = true
	c.banner = Banner{}
	c.mu.Unlock()

	err = c.post(ctx, payload)
	if c.journal != nil {
		c.journal.Record(ctx, sess.Account, journal.ActionContractSubmit, err, webhook.Message(err, ""))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		msg := webhook.Message(err, MsgSubmitFailed)
		c.banner = Banner{Error: msg}
		return c.viewLocked(), &Error{Message: msg, Err: err}
	}
	c.resetLocked()
	c.banner = Banner{Success: MsgSubmitted}
	return c.viewLocked(), nil
}

func (c *RequestController) post(ctx context.Context, payload map[string]any) error {
	body, err := c.client.Post(ctx, c.endpoint, payload)
	if err != nil {
		return err
	}
	outcome, err := webhook.Decode[map[string]any](body)
	if err != nil {
		return err
	}
	return outcome.Err(c.endpoint.Name, MsgSubmitFailed)
}

func (c *RequestController) payloadLocked() (map[string]any, error) {
	if c.totalLocked().GreaterThan(hundred) {
		return nil, forms.Invalid(PercentKey(1), MsgOverAllocated)
	}
	start, ok1 := c.form.Time(KeyStartDate)
	end, ok2 := c.form.Time(KeyEndDate)
	if ok1 && ok2 && end.Before(start) {
		return nil, forms.Invalid(KeyEndDate, "合約結束日期不可早於起始日期")
	}
	return c.form.Payload()
}

func (c *RequestController) setTermLocked(label string) error {
	n, ok := TermCount(label)
	if !ok {
		return forms.Invalid(KeyTerm, "無效的期款選項")
	}
	if err := c.form.Set(KeyTerm, label); err != nil {
		return err
	}
	for slot := n + 1; slot <= MaxInstallments; slot++ {
		c.form.SetDecimal(AmountKey(slot), decimal.Zero)
		c.form.SetDecimal(PercentKey(slot), decimal.Zero)
	}
	return nil
}

func (c *RequestController) setSlot(slot int, raw string, key func(int) string) (DraftView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return c.viewLocked(), ErrBusy
	}
	if slot < 1 || slot > c.enabledLocked() {
		return c.viewLocked(), forms.Invalid("slot", "期款 "+strconv.Itoa(slot)+" 未啟用")
	}
	if err := c.form.Set(key(slot), raw); err != nil {
		return c.viewLocked(), err
	}
	return c.viewLocked(), nil
}

func (c *RequestController) resetLocked() {
	c.form.Reset(KeyEmail, KeyApplicant)
	c.stampDates()
}

func (c *RequestController) stampDates() {
	now := c.Now()
	c.form.SetTime(KeyTimestamp, now)
	c.form.SetTime(KeyAppliedOn, now)
	c.form.SetTime(KeyStartDate, now)
	c.form.SetTime(KeyEndDate, now)
	c.form.SetTime(KeyDeliveryDate, now)
}

func (c *RequestController) enabledLocked() int {
	n, ok := TermCount(c.form.Get(KeyTerm))
	if !ok {
		return 1
	}
	return n
}

func (c *RequestController) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for slot := 1; slot <= MaxInstallments; slot++ {
		total = total.Add(c.form.Decimal(PercentKey(slot)))
	}
	return total
}

func (c *RequestController) viewLocked() DraftView {
	enabled := c.enabledLocked()
	total := c.totalLocked()
	view := DraftView{
		Draft:           c.form.Values(),
		Enabled:         enabled,
		TotalPercentage: total,
		OverAllocated:   total.GreaterThan(hundred),
		Submitting:      c.busy,
		Banner:          c.banner,
	}
	for slot := 1; slot <= MaxInstallments; slot++ {
		view.Installments = append(view.Installments, Installment{
			Slot:       slot,
			Label:      TermLabels[slot-1],
			Amount:     c.form.Decimal(AmountKey(slot)),
			Percentage: c.form.Decimal(PercentKey(slot)),
			Enabled:    slot <= enabled,
		})
	}
	return view
}

// slotOf returns the installment slot a key belongs to, or 0.
func slotOf(key string) int {
	for slot := 1; slot <= MaxInstallments; slot++ {
		if key == AmountKey(slot) || key == PercentKey(slot) {
			return slot
		}
	}
	return 0
}
