package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/chronos-goals/internal/auth"
	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/container"
	"github.com/saulo-duarte/chronos-goals/internal/router"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	s := &config.Settings{
		LogLevel:       "error",
		StoreBackend:   config.BackendSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "chronos.db"),
		JWTSecret:      "router-test-secret",
		AllowedOrigins: []string{"http://localhost:3000"},
		Timezone:       "UTC",
		GeminiModel:    "gemini-2.0-flash",
		AdviceTimeout:  time.Second,
		AdviceCache:    8,
		MoveRetries:    2,
		LockTTL:        time.Second,
	}
	c, err := container.New(context.Background(), s)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return router.FromContainer(c)
}

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func (c client) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func (c client) decode(rec *httptest.ResponseRecorder, v any) {
	c.t.Helper()
	require.NoError(c.t, json.NewDecoder(rec.Body).Decode(v), rec.Body.String())
}

func TestPublicRoutes(t *testing.T) {
	h := newRouter(t)
	anon := client{t: t, h: h}

	assert.Equal(t, http.StatusOK, anon.do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodGet, "/ambitions", "").Code)
	assert.Equal(t, http.StatusNoContent, anon.do(http.MethodPost, "/auth/logout", "").Code)

	rec := anon.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chronos_http_requests_total")
}

func TestGoalFlow(t *testing.T) {
	h := newRouter(t)
	token, err := auth.GenerateJWT(uuid.NewString(), "user", time.Hour)
	require.NoError(t, err)
	c := client{t: t, h: h, token: token}

	rec := c.do(http.MethodPost, "/ambitions", `{"title":"Run a marathon","year":2025,"category":"health"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var amb struct {
		ID uuid.UUID `json:"id"`
	}
	c.decode(rec, &amb)

	rec = c.do(http.MethodPost, "/ambitions/"+amb.ID.String()+"/key-results",
		`{"title":"Run 500 km","target_value":500,"unit":"km"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var kr struct {
		ID uuid.UUID `json:"id"`
	}
	c.decode(rec, &kr)

	rec = c.do(http.MethodPut, "/key-results/"+kr.ID.String()+"/value", `{"value":250}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/ambitions/"+amb.ID.String()+"/progress", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var prog struct {
		Progress int `json:"progress"`
	}
	c.decode(rec, &prog)
	assert.Equal(t, 50, prog.Progress)

	rec = c.do(http.MethodGet, "/trends/key_result/"+kr.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tr struct {
		Trend  string            `json:"trend"`
		Series []json.RawMessage `json:"series"`
	}
	c.decode(rec, &tr)
	assert.Equal(t, "insufficient_data", tr.Trend)
	assert.Len(t, tr.Series, 14)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/trends/planet/"+kr.ID.String(), "").Code)

	rec = c.do(http.MethodPost, "/quality/smart", `{"title":"Run 500 km","target_value":500,"unit":"km","deadline":"2099-12-31"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"score"`)

	rec = c.do(http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"overall_progress":50`)
}

func TestBoardFlow(t *testing.T) {
	h := newRouter(t)
	token, err := auth.GenerateJWT(uuid.NewString(), "user", time.Hour)
	require.NoError(t, err)
	c := client{t: t, h: h, token: token}

	rec := c.do(http.MethodPost, "/objectives", `{"title":"Ship v2","year":2025,"quarter":"q1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var obj struct {
		ID uuid.UUID `json:"id"`
	}
	c.decode(rec, &obj)

	ids := make([]string, 0, 2)
	for _, title := range []string{"Write plan", "Review plan"} {
		rec = c.do(http.MethodPost, "/actions", `{"objective_id":"`+obj.ID.String()+`","title":"`+title+`"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var a struct {
			ID uuid.UUID `json:"id"`
		}
		c.decode(rec, &a)
		ids = append(ids, a.ID.String())
	}

	rec = c.do(http.MethodPost, "/objectives", `{"title":"Ship v3","year":2025}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/actions/"+ids[0]+"/move", `{"order_index":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	rec = c.do(http.MethodPost, "/actions/"+ids[0]+"/reposition", `{"position":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, "/actions/"+ids[1]+"/reposition", `{"status":"todo","position":0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodGet, "/boards/"+obj.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var board struct {
		Columns []struct {
			Status  string `json:"status"`
			Actions []struct {
				ID uuid.UUID `json:"id"`
			} `json:"actions"`
		} `json:"columns"`
	}
	c.decode(rec, &board)
	require.NotEmpty(t, board.Columns)
	require.Len(t, board.Columns[0].Actions, 2)
	assert.Equal(t, ids[1], board.Columns[0].Actions[0].ID.String())
	assert.Equal(t, ids[0], board.Columns[0].Actions[1].ID.String())
}
