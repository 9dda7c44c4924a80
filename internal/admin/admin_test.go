package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Handler, *mux.Router) {
	t.Helper()
	database, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(database))

	sessions := auth.NewSessions("test-secret", time.Hour, true)
	h := NewHandler(NewRepository(database), sessions)
	_, err = h.Repo.Create(context.Background(), "Boss@Site.test", "correct-horse", "Boss")
	require.NoError(t, err)

	r := mux.NewRouter()
	r.HandleFunc("/api/admin/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/logout", h.Logout).Methods(http.MethodPost)
	protected := r.PathPrefix("/api/admin").Subrouter()
	protected.Use(sessions.Require(auth.RoleAdmin, nil))
	protected.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	return h, r
}

func TestCreateRejectsDuplicate(t *testing.T) {
	h, _ := setup(t)
	_, err := h.Repo.Create(context.Background(), "boss@site.test", "another-pass", "Other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginSetsCookieAndMe(t *testing.T) {
	_, r := setup(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"email":"boss@site.test","password":"correct-horse"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "admin-token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "boss@site.test", out["admin"]["email"])
	assert.NotNil(t, out["admin"]["lastLoginAt"])
}

func TestLoginFailures(t *testing.T) {
	_, r := setup(t)
	cases := map[string]struct {
		body string
		code int
	}{
		"wrong password": {`{"email":"boss@site.test","password":"nope"}`, http.StatusUnauthorized},
		"unknown email":  {`{"email":"ghost@site.test","password":"correct-horse"}`, http.StatusUnauthorized},
		"missing fields": {`{"email":""}`, http.StatusBadRequest},
		"malformed":      {`{`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(tc.body)))
			assert.Equal(t, tc.code, rec.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestMeRequiresSession(t *testing.T) {
	_, r := setup(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	_, r := setup(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "admin-token", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
