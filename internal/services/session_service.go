package services

import (
	"context"

	"fakhiuBack/internal/listing"
	"fakhiuBack/internal/models"
	"fakhiuBack/internal/session"
)

// Caller identifies who is acting: the bearer token that owns sessions
// and snapshots, and the user key bookmarks are stored under.
type Caller struct {
	Token       string
	Owner       string
	UserKey     string
	DeviceToken string
}

type SessionService struct {
	Sessions *session.Registry
	Market   *MarketplaceService
	Requests *RequestService
}

// Create opens a session and returns its first page.
func (s *SessionService) Create(ctx context.Context, c Caller) (models.PageView, error) {
	snap, err := s.Market.Snapshot(ctx, c.Token)
	if err != nil {
		return models.PageView{}, err
	}
	sess := s.Sessions.Create(c.Owner)
	return s.render(ctx, c, sess.State(), snap), nil
}

// Get returns a session owned by the caller.
func (s *SessionService) Get(c Caller, id string) (*session.Session, error) {
	return s.Sessions.Get(id, c.Owner)
}

func (s *SessionService) Delete(c Caller, id string) error {
	return s.Sessions.Delete(id, c.Owner)
}

// View renders the current page of a session.
func (s *SessionService) View(ctx context.Context, c Caller, id string) (models.PageView, error) {
	return s.update(ctx, c, id, func(*session.Session, models.Snapshot) error { return nil })
}

// Render builds the page of an already loaded session state.
func (s *SessionService) Render(ctx context.Context, c Caller, st session.State) (models.PageView, error) {
	snap, err := s.Market.Snapshot(ctx, c.Token)
	if err != nil {
		return models.PageView{}, err
	}
	return s.render(ctx, c, st, snap), nil
}

func (s *SessionService) SelectTab(ctx context.Context, c Caller, id string, tab models.Tab) (models.PageView, error) {
	return s.update(ctx, c, id, func(sess *session.Session, _ models.Snapshot) error {
		sess.SelectTab(tab)
		return nil
	})
}

func (s *SessionService) SetCriteria(ctx context.Context, c Caller, id string, criteria models.FilterCriteria) (models.PageView, error) {
	return s.update(ctx, c, id, func(sess *session.Session, _ models.Snapshot) error {
		sess.SetCriteria(criteria)
		return nil
	})
}

func (s *SessionService) ClearCriteria(ctx context.Context, c Caller, id string) (models.PageView, error) {
	return s.update(ctx, c, id, func(sess *session.Session, _ models.Snapshot) error {
		sess.ClearCriteria()
		return nil
	})
}

func (s *SessionService) SetSort(ctx context.Context, c Caller, id string, key models.SortKey) (models.PageView, error) {
	return s.update(ctx, c, id, func(sess *session.Session, _ models.Snapshot) error {
		sess.SetSort(key)
		return nil
	})
}

func (s *SessionService) Next(ctx context.Context, c Caller, id string) (models.PageView, error) {
	return s.update(ctx, c, id, func(sess *session.Session, snap models.Snapshot) error {
		sess.Next(func(q models.Query) int { return s.Market.Total(snap, q) }, listing.PageSize)
		return nil
	})
}

func (s *SessionService) Prev(ctx context.Context, c Caller, id string) (models.PageView, error) {
	return s.update(ctx, c, id, func(sess *session.Session, _ models.Snapshot) error {
		sess.Prev()
		return nil
	})
}

// Open selects an item of the current tab.
func (s *SessionService) Open(ctx context.Context, c Caller, id, itemID string) (models.PageView, error) {
	return s.update(ctx, c, id, func(sess *session.Session, snap models.Snapshot) error {
		if _, ok := snap.Find(sess.State().Tab, itemID); !ok {
			return models.ErrListingNotFound
		}
		sess.Open(itemID)
		return nil
	})
}

func (s *SessionService) Close(ctx context.Context, c Caller, id string) (models.PageView, error) {
	return s.update(ctx, c, id, func(sess *session.Session, _ models.Snapshot) error {
		sess.Close()
		return nil
	})
}

func (s *SessionService) SetForm(ctx context.Context, c Caller, id string, form models.RequestForm) (models.PageView, error) {
	return s.update(ctx, c, id, func(sess *session.Session, _ models.Snapshot) error {
		sess.SetForm(form)
		return nil
	})
}

// Submit sends the session's draft. On success the draft is cleared and
// the item closed; on failure both are kept. Either way the outcome is
// attached to the session as a notice, and the submission error is
// returned alongside the refreshed view.
func (s *SessionService) Submit(ctx context.Context, c Caller, id string) (models.PageView, error) {
	var submitErr error
	view, err := s.update(ctx, c, id, func(sess *session.Session, snap models.Snapshot) error {
		st := sess.State()
		sub := Submission{Token: c.Token, DeviceToken: c.DeviceToken, Form: st.Form, Tab: st.Tab}
		if st.OpenItem != nil && st.Tab == models.TabOffers {
			if item, ok := snap.Find(models.TabOffers, *st.OpenItem); ok {
				sub.Offer = &item
			}
		}

		notice, err := s.Requests.Submit(ctx, sub)
		if err != nil {
			submitErr = err
			sess.Notify(&notice)
			return nil
		}
		sess.Submitted(&notice)
		return nil
	})
	if err != nil {
		return models.PageView{}, err
	}
	return view, submitErr
}

func (s *SessionService) update(ctx context.Context, c Caller, id string, fn func(*session.Session, models.Snapshot) error) (models.PageView, error) {
	sess, err := s.Sessions.Get(id, c.Owner)
	if err != nil {
		return models.PageView{}, err
	}
	snap, err := s.Market.Snapshot(ctx, c.Token)
	if err != nil {
		return models.PageView{}, err
	}
	if err := fn(sess, snap); err != nil {
		return models.PageView{}, err
	}
	return s.render(ctx, c, sess.State(), snap), nil
}

func (s *SessionService) render(ctx context.Context, c Caller, st session.State, snap models.Snapshot) models.PageView {
	view := s.Market.Render(ctx, snap, c.UserKey, st.Query())
	view.SessionID = st.ID
	view.OpenItemID = st.OpenItem
	view.Notice = st.Notice
	return view
}
