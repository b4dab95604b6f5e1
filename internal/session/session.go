package session

import (
	"sync"
	"time"

	"fakhiuBack/internal/models"
)

// State is a copy of what one browsing session has selected.
type State struct {
	ID       string                `json:"id"`
	Tab      models.Tab            `json:"tab"`
	Criteria models.FilterCriteria `json:"criteria"`
	Sort     models.SortKey        `json:"sort"`
	Page     int                   `json:"page"`
	OpenItem *string               `json:"open_item,omitempty"`
	Form     models.RequestForm    `json:"form"`
	Notice   *models.Notification  `json:"notice,omitempty"`
}

// Query is the pipeline input for the current state.
func (s State) Query() models.Query {
	return models.Query{Tab: s.Tab, Criteria: s.Criteria, Sort: s.Sort, Page: s.Page}
}

// Session holds the tab state machine and the draft request of one
// display. All methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	owner    string
	state    State
	touched  time.Time
	now      func() time.Time
	onChange func(State)
}

func newSession(id, owner string, now func() time.Time) *Session {
	return &Session{
		owner: owner,
		now:   now,
		state: State{
			ID:   id,
			Tab:  models.TabRequests,
			Sort: models.SortNewest,
			Page: 1,
		},
		touched: now(),
	}
}

func (s *Session) ID() string {
	return s.state.ID
}

// Owner is the hashed token key the session was created for.
func (s *Session) Owner() string {
	return s.owner
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// OnChange registers a callback invoked with the new state after every
// mutation. Only one callback is kept.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SelectTab switches the browse mode. Switching resets the page and
// closes the open item; selecting the current tab changes nothing.
func (s *Session) SelectTab(tab models.Tab) State {
	return s.mutate(func(st *State) bool {
		if st.Tab == tab {
			return false
		}
		st.Tab = tab
		st.Page = 1
		st.OpenItem = nil
		return true
	})
}

// SetCriteria replaces the filters and resets the page.
func (s *Session) SetCriteria(c models.FilterCriteria) State {
	return s.mutate(func(st *State) bool {
		st.Criteria = c
		st.Page = 1
		return true
	})
}

// ClearCriteria drops every filter and resets the page.
func (s *Session) ClearCriteria() State {
	return s.SetCriteria(models.FilterCriteria{})
}

// SetSort changes the order. The page is kept.
func (s *Session) SetSort(key models.SortKey) State {
	return s.mutate(func(st *State) bool {
		key = models.ParseSortKey(string(key))
		if st.Sort == key {
			return false
		}
		st.Sort = key
		return true
	})
}

// Next advances one page unless page*pageSize already covers the number
// of listings total reports for the session's query. total runs under the
// session lock so it counts against the same filters the page moves on.
func (s *Session) Next(total func(models.Query) int, pageSize int) State {
	return s.mutate(func(st *State) bool {
		if st.Page*pageSize >= total(st.Query()) {
			return false
		}
		st.Page++
		return true
	})
}

// Prev goes back one page unless on the first page.
func (s *Session) Prev() State {
	return s.mutate(func(st *State) bool {
		if st.Page <= 1 {
			return false
		}
		st.Page--
		return true
	})
}

// Open selects the item whose detail or request form is shown.
func (s *Session) Open(itemID string) State {
	return s.mutate(func(st *State) bool {
		id := itemID
		st.OpenItem = &id
		return true
	})
}

// Close clears the open item.
func (s *Session) Close() State {
	return s.mutate(func(st *State) bool {
		if st.OpenItem == nil {
			return false
		}
		st.OpenItem = nil
		return true
	})
}

// SetForm replaces the draft request.
func (s *Session) SetForm(form models.RequestForm) State {
	return s.mutate(func(st *State) bool {
		st.Form = form
		return true
	})
}

// Notify attaches a notice to the session; nil clears it.
func (s *Session) Notify(n *models.Notification) State {
	return s.mutate(func(st *State) bool {
		st.Notice = n
		return true
	})
}

// Submitted closes the open item and clears the draft after a successful
// submission.
func (s *Session) Submitted(n *models.Notification) State {
	return s.mutate(func(st *State) bool {
		st.OpenItem = nil
		st.Form = models.RequestForm{}
		st.Notice = n
		return true
	})
}

// Touch marks the session as used without changing it.
func (s *Session) Touch() {
	s.mu.Lock()
	s.touched = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) mutate(fn func(*State) bool) State {
	s.mu.Lock()
	changed := fn(&s.state)
	s.touched = s.now()
	st := s.copyState()
	cb := s.onChange
	s.mu.Unlock()

	if changed && cb != nil {
		cb(st)
	}
	return st
}

func (s *Session) copyState() State {
	st := s.state
	if s.state.OpenItem != nil {
		id := *s.state.OpenItem
		st.OpenItem = &id
	}
	if s.state.Notice != nil {
		n := *s.state.Notice
		st.Notice = &n
	}
	if s.state.Criteria.ItemTypes != nil {
		st.Criteria.ItemTypes = append([]string(nil), s.state.Criteria.ItemTypes...)
	}
	return st
}
