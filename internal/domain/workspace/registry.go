package workspace

import (
	"sync"
	"time"

	"adminportal/internal/domain/contract"
	"adminportal/internal/domain/leave"
	"adminportal/internal/domain/session"
	"adminportal/internal/platform/webhook"
)

type Endpoints struct {
	LeavePrecheck  webhook.Endpoint
	LeaveCommit    webhook.Endpoint
	LeaveQuery     webhook.Endpoint
	LeaveCancel    webhook.Endpoint
	ContractSubmit webhook.Endpoint
	ContractQuery  webhook.Endpoint
}

// Gauge is told the number of live workspaces after every change.
type Gauge interface {
	SetActiveWorkspaces(n int)
}

// Workspace holds the form controllers of one signed-in account.
type Workspace struct {
	Account       string
	Leave         *leave.RequestController
	LeaveQuery    *leave.QueryController
	Contract      *contract.RequestController
	ContractQuery *contract.QueryController

	touched time.Time
}

// Registry maps accounts to their workspace. Idle workspaces are removed
// by Sweep; a later request simply starts a fresh one.
type Registry struct {
	client    leave.Poster
	endpoints Endpoints
	journal   leave.Journal
	gauge     Gauge
	Now       func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewRegistry(client leave.Poster, endpoints Endpoints, journal leave.Journal, gauge Gauge) *Registry {
	return &Registry{
		client:    client,
		endpoints: endpoints,
		journal:   journal,
		gauge:     gauge,
		Now:       time.Now,
		items:     map[string]*Workspace{},
	}
}

// Get returns the account's workspace, creating it on first use.
func (r *Registry) Get(sess session.Session) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.items[sess.Account]
	if !ok {
		ws = r.newWorkspace(sess)
		r.items[sess.Account] = ws
		r.reportLocked()
	}
	ws.touched = r.Now()
	return ws
}

// Drop forgets the account's workspace, e.g. on logout.
func (r *Registry) Drop(account string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[account]; !ok {
		return
	}
	delete(r.items, account)
	r.reportLocked()
}

// Sweep evicts workspaces untouched for longer than idle and returns how
// many were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.Now().Add(-idle)
	removed := 0
	for account, ws := range r.items {
		if ws.touched.Before(cutoff) {
			delete(r.items, account)
			removed++
		}
	}
	if removed > 0 {
		r.reportLocked()
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *Registry) newWorkspace(sess session.Session) *Workspace {
	return &Workspace{
		Account: sess.Account,
		Leave: leave.NewRequestController(r.client, leave.RequestEndpoints{
			Precheck: r.endpoints.LeavePrecheck,
			Commit:   r.endpoints.LeaveCommit,
		}, r.journal),
		LeaveQuery: leave.NewQueryController(r.client, leave.QueryEndpoints{
			Query:  r.endpoints.LeaveQuery,
			Cancel: r.endpoints.LeaveCancel,
		}, r.journal),
		Contract:      contract.NewRequestController(r.client, r.endpoints.ContractSubmit, r.journal, sess),
		ContractQuery: contract.NewQueryController(r.client, r.endpoints.ContractQuery),
	}
}

func (r *Registry) reportLocked() {
	if r.gauge != nil {
		r.gauge.SetActiveWorkspaces(len(r.items))
	}
}
