package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/funnytourism/tourism-api/internal/admin"
	"github.com/funnytourism/tourism-api/internal/agent"
	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/config"
	"github.com/funnytourism/tourism-api/internal/notify"
	"github.com/funnytourism/tourism-api/internal/ratelimit"
	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/funnytourism/tourism-api/internal/utils/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type app struct {
	t        *testing.T
	db       *gorm.DB
	handler  http.Handler
	sessions *auth.Sessions
	notifier *notify.Service
}

func newApp(t *testing.T) *app {
	t.Helper()
	database, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(database))

	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: "https://funnytourism.com"},
		TQA:    config.TQAConfig{APIURL: "http://127.0.0.1:1", Timeout: time.Second},
	}
	limiter := ratelimit.NewMemory(ratelimit.Policy{Attempts: 3, Window: time.Hour, Block: time.Minute}, 100, 0)
	t.Cleanup(func() { _ = limiter.Close() })

	a := &app{
		t:        t,
		db:       database,
		sessions: auth.NewSessions("test-secret", time.Hour, false),
		notifier: notify.New(notify.Noop{}, "", nil),
	}
	a.handler = NewRouter(Deps{Config: cfg, DB: database, Sessions: a.sessions, Limiter: limiter, Notifier: a.notifier})
	t.Cleanup(a.notifier.Wait)
	return a
}

func (a *app) do(method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func (a *app) loginAdmin() *http.Cookie {
	_, err := admin.NewRepository(a.db).Create(context.Background(), "ops@funnytourism.com", "s3cret-pass", "Ops")
	require.NoError(a.t, err)
	rec, _ := a.do(http.MethodPost, "/api/admin/login", `{"email":"ops@funnytourism.com","password":"s3cret-pass"}`)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(a.t, rec, "admin-token")
}

func (a *app) loginAgent(rate float64) (*agent.Agent, *http.Cookie) {
	hash, err := utils.HashPassword("agent-pass-1")
	require.NoError(a.t, err)
	ag := &agent.Agent{Email: "desk@andes.test", Password: hash, CompanyName: "Andes", ContactName: "Rosa", Phone: "1",
		CommissionRate: rate, Status: agent.StatusActive}
	require.NoError(a.t, agent.NewRepository(a.db).Create(context.Background(), ag))
	rec, _ := a.do(http.MethodPost, "/api/agent/login", `{"email":"desk@andes.test","password":"agent-pass-1"}`)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return ag, sessionCookie(a.t, rec, "agent-token")
}

func TestHealthAndNotFound(t *testing.T) {
	a := newApp(t)
	rec, out := a.do(http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])

	rec, out = a.do(http.MethodGet, "/api/nothing-here", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", out["error"])
}

func TestAdminRoutesNeedAdminSession(t *testing.T) {
	a := newApp(t)
	rec, out := a.do(http.MethodGet, "/api/admin/bookings", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", out["error"])

	token, err := a.sessions.Issue(auth.Principal{ID: 1, Email: "u@x.co", Role: auth.RoleUser})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	a.handler.ServeHTTP(res, req)
	assert.Equal(t, http.StatusForbidden, res.Code)

	rec, _ = a.do(http.MethodPost, "/api/admin/bookings/mark-paid", `{"bookingId":1,"amount":5}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = a.do(http.MethodGet, "/api/agent/bookings", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSAllowsConfiguredOriginWithCredentials(t *testing.T) {
	a := newApp(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/admin/me", nil)
	req.Header.Set("Origin", "https://funnytourism.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://funnytourism.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAgentBookingSettlement(t *testing.T) {
	a := newApp(t)
	adminCookie := a.loginAdmin()
	ag, agentCookie := a.loginAgent(10)

	rec, out := a.do(http.MethodPost, "/api/agent/bookings", `{
		"packageName": "Cappadocia escape",
		"guestName": "Lucia Perez",
		"guestEmail": "lucia@example.com",
		"totalPrice": 2000,
		"passengers": [{"firstName": "Lucia", "lastName": "Perez"}]
	}`, agentCookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	b := out["booking"].(map[string]interface{})
	assert.Equal(t, 200.0, b["commissionAmount"])
	assert.Equal(t, float64(ag.ID), b["agentId"])
	id := strconv.Itoa(int(b["id"].(float64)))

	// the rate change does not touch the existing booking
	rec, _ = a.do(http.MethodPatch, "/api/admin/agents/"+strconv.Itoa(int(ag.ID)), `{"commissionRate":20}`, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, out = a.do(http.MethodPost, "/api/admin/bookings/mark-paid", `{"bookingId":`+id+`,"amount":150,"paymentMethod":"wire"}`, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, out["isFullyPaid"])
	assert.Equal(t, 200.0, out["booking"].(map[string]interface{})["commissionAmount"])

	rec, out = a.do(http.MethodPost, "/api/admin/bookings/mark-paid", `{"bookingId":`+id+`,"amount":60}`, adminCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "50.00")

	rec, out = a.do(http.MethodPost, "/api/admin/bookings/mark-paid", `{"bookingId":`+id+`,"amount":50}`, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, out["isFullyPaid"])

	rec, out = a.do(http.MethodPost, "/api/admin/bookings/record-agent-payment", `{"bookingId":`+id+`,"amount":1800}`, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["isFullyPaid"])

	_, out = a.do(http.MethodGet, "/api/admin/commission-payments?bookingId="+id, "", adminCookie)
	assert.Len(t, out["payments"], 3)

	rec, out = a.do(http.MethodPatch, "/api/admin/bookings/"+id, `{"status":"CONFIRMED"}`, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, out["booking"].(map[string]interface{})["confirmedAt"])

	rec, _ = a.do(http.MethodPatch, "/api/admin/bookings/"+id, `{"status":"SHIPPED"}`, adminCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = a.do(http.MethodGet, "/api/agent/bookings", "", agentCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["packages"], 1)

	// suspension revokes the live session
	rec, _ = a.do(http.MethodPatch, "/api/admin/agents/"+strconv.Itoa(int(ag.ID)), `{"status":"SUSPENDED"}`, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = a.do(http.MethodGet, "/api/agent/bookings", "", agentCookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicBookingCannotBeSettled(t *testing.T) {
	a := newApp(t)
	adminCookie := a.loginAdmin()

	rec, out := a.do(http.MethodPost, "/api/transfers/book", `{
		"fromLocation": "IST", "toLocation": "Sultanahmet", "transferDate": "2025-07-01",
		"guestName": "Sam", "guestEmail": "sam@example.com", "totalPrice": 60
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := strconv.Itoa(int(out["booking"].(map[string]interface{})["id"].(float64)))

	rec, _ = a.do(http.MethodPost, "/api/admin/transfers/mark-paid", `{"bookingId":`+id+`,"amount":5}`, adminCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = a.do(http.MethodPost, "/api/admin/transfers/mark-paid", `{"bookingId":999,"amount":5}`, adminCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, out = a.do(http.MethodPatch, "/api/admin/bookings/transfers/"+id, `{"status":"COMPLETED"}`, adminCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, out["booking"].(map[string]interface{})["completedAt"])
}

func TestCatalogAdminAndPublicViews(t *testing.T) {
	a := newApp(t)
	adminCookie := a.loginAdmin()

	rec, _ := a.do(http.MethodPost, "/api/admin/daily-tours",
		`{"tourCode":"IST-1","title":"Old City","titleEs":"Ciudad Vieja","sicPrice":55}`, adminCookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	_, out := a.do(http.MethodGet, "/api/daily-tours?locale=es", "")
	tours := out["tours"].([]interface{})
	require.Len(t, tours, 1)
	assert.Equal(t, "Ciudad Vieja", tours[0].(map[string]interface{})["title"])

	rec, _ = a.do(http.MethodDelete, "/api/admin/daily-tours/1", "", adminCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContactFormIsRateLimited(t *testing.T) {
	a := newApp(t)
	body := `{"name":"Ana","email":"ana@example.com","subject":"Hi","message":"Hello"}`
	for i := 0; i < 3; i++ {
		rec, _ := a.do(http.MethodPost, "/api/contact", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec, _ := a.do(http.MethodPost, "/api/contact", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	adminCookie := a.loginAdmin()
	_, out := a.do(http.MethodGet, "/api/admin/inquiries", "", adminCookie)
	assert.Len(t, out["inquiries"], 3)
}

func TestContentAndAccountRoutes(t *testing.T) {
	a := newApp(t)
	adminCookie := a.loginAdmin()

	rec, _ := a.do(http.MethodPost, "/api/admin/blog",
		`{"title":"Balloons over Goreme","titleEs":"Globos sobre Göreme","status":"PUBLISHED"}`, adminCookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, out := a.do(http.MethodGet, "/api/blog?locale=es", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Globos sobre Göreme", out["posts"].([]interface{})[0].(map[string]interface{})["title"])

	rec, _ = a.do(http.MethodPost, "/api/admin/destinations",
		`{"slug":"istanbul","name":"Istanbul","nameEs":"Estambul","description":"Two continents","category":"CITY","region":"Marmara","heroImage":"/i.jpg"}`, adminCookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, out = a.do(http.MethodGet, "/api/destinations/istanbul?locale=es", "")
	assert.Equal(t, "Estambul", out["destination"].(map[string]interface{})["name"])

	rec, _ = a.do(http.MethodGet, "/api/wishlist", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = a.do(http.MethodPost, "/api/auth/register", `{"email":"lu@mail.test","password":"longenough","name":"Lu"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	userCookie := sessionCookie(t, rec, "auth-token")
	rec, _ = a.do(http.MethodPost, "/api/wishlist", `{"packageId":"istanbul-4d"}`, userCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, out = a.do(http.MethodGet, "/api/wishlist", "", userCookie)
	assert.Len(t, out["wishlist"], 1)

	rec, _ = a.do(http.MethodPost, "/api/newsletter/subscribe", `{"email":"lu@mail.test"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, out = a.do(http.MethodGet, "/api/admin/newsletter/subscribers", "", adminCookie)
	assert.Len(t, out["subscribers"], 1)
}
