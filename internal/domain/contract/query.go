package contract

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"adminportal/internal/domain/forms"
	"adminportal/internal/platform/webhook"
)

// Filters narrow a contract search. Empty fields are ignored; both dates
// are required.
type Filters struct {
	Type      string `json:"type"`
	Number    string `json:"number"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type searchRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Type      string `json:"type"`
	Number    string `json:"number"`
	Name      string `json:"name"`
	Status    string `json:"status"`
}

type SearchView struct {
	Filters Filters `json:"filters"`
	Rows    []Row   `json:"rows"`
	Banner
}

type QueryController struct {
	client   Poster
	endpoint webhook.Endpoint

	mu      sync.Mutex
	busy    bool
	filters Filters
	rows    []Row
	banner  Banner
}

func NewQueryController(client Poster, endpoint webhook.Endpoint) *QueryController {
	return &QueryController{client: client, endpoint: endpoint}
}

// Search posts the filters and then applies them again locally, since some
// deployments of the query webhook ignore everything but the date range.
func (c *QueryController) Search(ctx context.Context, filters Filters) (SearchView, error) {
	filters = filters.trimmed()
	start, ok1 := parseNormalized(filters.StartDate)
	end, ok2 := parseNormalized(filters.EndDate)
	if !ok1 || !ok2 {
		err := forms.Invalid("startDate", MsgMissingRange)
		c.setBanner(Banner{Error: MsgMissingRange})
		return c.View(), &Error{Message: MsgMissingRange, Err: err}
	}
	if end.Before(start) {
		err := forms.Invalid("endDate", "結束日期不可早於起始日期")
		c.setBanner(Banner{Error: err.Message()})
		return c.View(), &Error{Message: err.Message(), Err: err}
	}
	filters.StartDate = start.Format(forms.DateLayout)
	filters.EndDate = end.Format(forms.DateLayout)

	c.mu.Lock()
	if c.busy {
		defer c.mu.Unlock()
		return c.viewLocked(), ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	records, err := c.fetch(ctx, filters)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.filters = filters
	if err != nil {
		msg := webhook.Message(err, MsgQueryFailed)
		c.banner = Banner{Error: msg}
		return c.viewLocked(), &Error{Message: msg, Err: err}
	}
	c.rows = c.rows[:0]
	for i, rec := range records {
		if !filters.match(rec, start, end) {
			continue
		}
		key := rec.Number()
		if key == "" {
			key = fmt.Sprintf("row-%d", i+1)
		}
		c.rows = append(c.rows, Row{Key: key, YearCode: rec.YearCode(), StatusLabel: rec.StatusLabel(), Fields: rec})
	}
	c.banner = Banner{}
	return c.viewLocked(), nil
}

// Detail returns one row of the last search by its key.
func (c *QueryController) Detail(key string) (Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range c.rows {
		if row.Key == key {
			return row, nil
		}
	}
	return Row{}, ErrNotFound
}

func (c *QueryController) View() SearchView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *QueryController) fetch(ctx context.Context, filters Filters) ([]Record, error) {
	body, err := c.client.Post(ctx, c.endpoint, searchRequest{
		StartDate: filters.StartDate,
		EndDate:   filters.EndDate,
		Type:      filters.Type,
		Number:    filters.Number,
		Name:      filters.Name,
		Status:    filters.Status,
	})
	if err != nil {
		return nil, err
	}
	return webhook.DecodeList[Record](body)
}

func (c *QueryController) viewLocked() SearchView {
	rows := make([]Row, len(c.rows))
	copy(rows, c.rows)
	return SearchView{Filters: c.filters, Rows: rows, Banner: c.banner}
}

func (c *QueryController) setBanner(b Banner) {
	c.mu.Lock()
	c.banner = b
	c.mu.Unlock()
}

func (f Filters) trimmed() Filters {
	return Filters{
		Type:      strings.TrimSpace(f.Type),
		Number:    strings.TrimSpace(f.Number),
		Name:      strings.TrimSpace(f.Name),
		Status:    strings.TrimSpace(f.Status),
		StartDate: strings.TrimSpace(f.StartDate),
		EndDate:   strings.TrimSpace(f.EndDate),
	}
}

// match applies each set filter. A record whose application date cannot be
// read is kept; the webhook already filtered it by date.
func (f Filters) match(rec Record, start, end time.Time) bool {
	if applied, ok := parseNormalized(rec.Text(KeyAppliedOn)); ok {
		if applied.Before(start) || applied.After(end) {
			return false
		}
	}
	if f.Type != "" && rec.Text(KeyType) != f.Type {
		return false
	}
	if f.Number != "" && !strings.Contains(rec.Number(), f.Number) {
		return false
	}
	if f.Name != "" && !strings.Contains(rec.Text(KeyName), f.Name) {
		return false
	}
	if f.Status != "" && rec.StatusLabel() != f.Status {
		return false
	}
	return true
}
