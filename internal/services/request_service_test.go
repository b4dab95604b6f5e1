package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakhiuBack/internal/backend"
	"fakhiuBack/internal/models"
)

type stubCreator struct {
	got   []models.NewRequest
	token string
	err   error
}

func (s *stubCreator) CreateRequest(_ context.Context, token string, in models.NewRequest) error {
	s.token = token
	s.got = append(s.got, in)
	return s.err
}

type stubImages struct {
	url string
	err error
}

func (s stubImages) Upload(_ context.Context, image, _ string) (string, error) {
	return s.url, s.err
}

type stubNotifier struct {
	device string
	sent   []models.Notification
}

func (s *stubNotifier) NotifySubmission(_ context.Context, device string, n models.Notification) error {
	s.device = device
	s.sent = append(s.sent, n)
	return nil
}

func TestBuildNewRequestDefaults(t *testing.T) {
	got := BuildNewRequest(models.RequestForm{Amount: "abc"}, nil)

	assert.Equal(t, "General item", got.Title)
	assert.Equal(t, "No additional details", got.Description)
	assert.Equal(t, 0, got.Budget)
	assert.Equal(t, "marketplace", got.Source)
	assert.Nil(t, got.OfferID)
	assert.Equal(t, "", got.FromLocation)
}

func TestBuildNewRequestFromOffer(t *testing.T) {
	offer := &models.Listing{ID: "17", RouteFrom: "Osaka", RouteTo: "Bangkok", FlightDate: "2025-04-01"}
	form := models.RequestForm{ItemName: " Matcha ", Amount: "450.75", Note: "fragile", ToLocation: "Chiang Mai"}

	got := BuildNewRequest(form, offer)
	assert.Equal(t, "Matcha", got.Title)
	assert.Equal(t, 450, got.Budget)
	assert.Equal(t, 17, got.OfferID)
	assert.Equal(t, "Osaka", got.FromLocation)
	assert.Equal(t, "Chiang Mai", got.ToLocation)
	assert.Equal(t, "2025-04-01", got.Deadline)

	got = BuildNewRequest(form, &models.Listing{ID: "off-3"})
	assert.Equal(t, "off-3", got.OfferID)
}

func TestLeadingInt(t *testing.T) {
	tests := map[string]int{
		"":       0,
		"300":    300,
		"  42kg": 42,
		"12.9":   12,
		"-7":     -7,
		"+5":     5,
		"-":      0,
		"abc":    0,
		"1e3":    1,
	}
	for in, want := range tests {
		assert.Equal(t, want, leadingInt(in), fmt.Sprintf("%q", in))
	}
}

func TestSubmitOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		err      error
		wantKind models.NotificationKind
		wantMsg  string
		wantErr  error
		posted   int
	}{
		{name: "success", token: "tok", wantKind: models.NoticeSuccess, posted: 1},
		{name: "missing token", token: "", wantKind: models.NoticeUnauthenticated, wantErr: models.ErrUnauthenticated, posted: 0},
		{name: "backend 401", token: "tok", err: fmt.Errorf("wrap: %w", models.ErrUnauthenticated), wantKind: models.NoticeUnauthenticated, wantErr: models.ErrUnauthenticated, posted: 1},
		{name: "rejected", token: "tok", err: &backend.StatusError{Status: 422, Body: "budget too low"}, wantKind: models.NoticeRejected, wantMsg: "Something went wrong: budget too low", posted: 1},
		{name: "connection", token: "tok", err: fmt.Errorf("x: %w", backend.ErrConnection), wantKind: models.NoticeConnection, wantErr: backend.ErrConnection, posted: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &stubCreator{err: tt.err}
			notifier := &stubNotifier{}
			svc := &RequestService{Backend: creator, Notifier: notifier}

			n, err := svc.Submit(context.Background(), Submission{Token: tt.token, DeviceToken: "dev", Form: models.RequestForm{ItemName: "Tea"}})
			assert.Equal(t, tt.wantKind, n.Kind)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, n.Message)
			}
			if tt.wantKind == models.NoticeSuccess {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Len(t, creator.got, tt.posted)
			require.Len(t, notifier.sent, 1)
			assert.Equal(t, "dev", notifier.device)
		})
	}
}

func TestSuccessMessageFollowsTab(t *testing.T) {
	svc := &RequestService{Backend: &stubCreator{}}

	onRequests, err := svc.Submit(context.Background(), Submission{Token: "tok", Tab: models.TabRequests})
	require.NoError(t, err)
	onOffers, err := svc.Submit(context.Background(), Submission{Token: "tok", Tab: models.TabOffers})
	require.NoError(t, err)

	assert.Equal(t, msgCarryOffered, onRequests.Message)
	assert.Equal(t, msgCarryRequested, onOffers.Message)
	assert.NotEqual(t, onRequests.Message, onOffers.Message)
}

func TestSubmitImages(t *testing.T) {
	creator := &stubCreator{}
	svc := &RequestService{Backend: creator, Images: stubImages{url: "https://cdn/x.png"}}

	_, err := svc.Submit(context.Background(), Submission{Token: "tok", Form: models.RequestForm{Image: "data:image/png;base64,AAAA"}})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.png", creator.got[0].Image)

	svc.Images = stubImages{err: models.ErrInvalidImageData}
	n, err := svc.Submit(context.Background(), Submission{Token: "tok", Form: models.RequestForm{Image: "data:bad"}})
	assert.ErrorIs(t, err, models.ErrInvalidImageData)
	assert.Equal(t, models.NoticeRejected, n.Kind)
	assert.Len(t, creator.got, 1)

	svc.Images = stubImages{err: errors.New("s3 down")}
	_, err = svc.Submit(context.Background(), Submission{Token: "tok", Form: models.RequestForm{Image: "data:image/png;base64,AAAA"}})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", creator.got[1].Image, "upload failures fall back to the inline image")
}
