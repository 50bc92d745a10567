package ambition_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/chronos-goals/internal/ambition"
	"github.com/saulo-duarte/chronos-goals/internal/auth"
)

func serve(h http.Handler, user uuid.UUID, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(auth.WithClaims(context.Background(), &auth.Claims{UserID: user.String()}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAmbitionRoutes(t *testing.T) {
	h := ambition.NewHandler(ambition.NewService(newStore(t)))
	r := chi.NewRouter()
	r.Mount("/ambitions", ambition.Routes(h))
	r.Mount("/key-results", ambition.KeyResultRoutes(h))
	user := uuid.New()

	rec := serve(r, user, http.MethodPost, "/ambitions", `{"title":"Read more","year":2025,"category":"learning","priority":"high"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created ambition.AmbitionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = serve(r, user, http.MethodPost, "/ambitions/"+created.ID.String()+"/key-results",
		`{"title":"Read 12 books","target_value":12,"current_value":3,"unit":"books","deadline":"2025-12-31"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var kr ambition.KeyResultResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&kr))
	assert.Equal(t, 25, kr.Progress)
	require.NotNil(t, kr.Deadline)

	rec = serve(r, user, http.MethodGet, "/ambitions/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"progress":25`)

	rec = serve(r, uuid.New(), http.MethodGet, "/ambitions/"+created.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(r, user, http.MethodPost, "/ambitions", `{"title":"x","year":2025,"category":"hobbies"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, user, http.MethodPost, "/ambitions", `{"title":"Travel to three countries","year":2025}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(r, user, http.MethodDelete, "/key-results/"+kr.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(r, user, http.MethodDelete, "/ambitions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
