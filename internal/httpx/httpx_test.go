package httpx_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/saulo-duarte/chronos-goals/internal/auth"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/httpx"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

func TestStatusMapsSentinels(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: bad", goal.ErrInvalidInput):        http.StatusBadRequest,
		goal.ErrUnauthorized:                               http.StatusForbidden,
		fmt.Errorf("load ambition: %w", store.ErrNotFound): http.StatusNotFound,
		store.ErrConflict:                                  http.StatusConflict,
		errors.New("connection reset"):                     http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, httpx.Status(err), err.Error())
	}
}

func TestErrorHidesServerFailures(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	httpx.Error(rec, req, errors.New("dial tcp 10.0.0.1:5432"), "list ambitions")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}

func TestPathID(t *testing.T) {
	id := uuid.New()
	r := chi.NewRouter()
	r.Get("/ambitions/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, ok := httpx.PathID(w, r, "id")
		if ok {
			assert.Equal(t, id, got)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ambitions/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ambitions/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserIDAndDecode(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := httpx.UserID(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"sleeping"}`))
	req = req.WithContext(auth.WithClaims(context.Background(), &auth.Claims{UserID: user.String()}))
	rec = httptest.NewRecorder()
	got, ok := httpx.UserID(rec, req)
	assert.True(t, ok)
	assert.Equal(t, user, got)

	var body struct {
		Status goal.ActionStatus `json:"status"`
	}
	assert.False(t, httpx.Decode(rec, req, &body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
