package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakhiuBack/internal/models"
)

func TestCollection(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/offers":
			_, _ = io.WriteString(w, `[{"id":1}]`)
		case "/api/requests":
			_, _ = io.WriteString(w, `[{"id":2}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/api/")

	body, err := c.Collection(context.Background(), models.TabOffers, "tok")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(body))
	assert.Equal(t, "/api/offers", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)

	body, err = c.Collection(context.Background(), models.TabRequests, "tok")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":2}]`, string(body))
	assert.Equal(t, "/api/requests", gotPath)
}

func TestCollectionErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, models.ErrUnauthenticated)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusInternalServerError, se.Status)
				assert.Equal(t, "boom", se.Body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, "boom")
			}))
			defer srv.Close()

			_, err := NewClient(srv.Client(), srv.URL).Collection(context.Background(), models.TabRequests, "tok")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(nil, url).Collection(context.Background(), models.TabOffers, "tok")
	assert.ErrorIs(t, err, ErrConnection)

	err = NewClient(nil, url).CreateRequest(context.Background(), "tok", models.NewRequest{})
	assert.ErrorIs(t, err, ErrConnection)
}

func TestCreateRequest(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/requests", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	err := c.CreateRequest(context.Background(), "tok", models.NewRequest{
		Title:   "Tea",
		Budget:  300,
		OfferID: 12,
		Source:  "marketplace",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tea", got["title"])
	assert.Equal(t, 300.0, got["budget"])
	assert.Equal(t, 12.0, got["offer_id"])
	assert.Equal(t, "marketplace", got["source"])
	assert.Contains(t, got, "from_location")
}

func TestCreateRequestOmitsOfferID(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.Client(), srv.URL).CreateRequest(context.Background(), "tok", models.NewRequest{Title: "x"}))
	assert.NotContains(t, raw, "offer_id")
}

func TestCreateRequestWithoutToken(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	err := NewClient(srv.Client(), srv.URL).CreateRequest(context.Background(), " ", models.NewRequest{})
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.False(t, called)
}
