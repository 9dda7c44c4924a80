package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateTemporaryPassword(t *testing.T) {
	p, err := GenerateTemporaryPassword()
	require.NoError(t, err)
	assert.Len(t, p, 12)
	assert.Regexp(t, `^[a-zA-Z0-9]{12}$`, p)
}

func TestReferenceNumber(t *testing.T) {
	now := time.UnixMilli(1718000000123)
	ref, err := ReferenceNumber("AG", 9, now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "AG-1718000000123-"))
	assert.Regexp(t, regexp.MustCompile(`^AG-\d+-[0-9A-Z]{9}$`), ref)

	other, err := ReferenceNumber("AG", 9, now)
	require.NoError(t, err)
	assert.NotEqual(t, ref, other)
}

type signup struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Rate     float64 `json:"commissionRate" validate:"gte=0,lte=100"`
}

func TestValidateMessages(t *testing.T) {
	cases := []struct {
		in   signup
		want string
	}{
		{signup{Password: "12345678"}, "email is required"},
		{signup{Email: "nope", Password: "12345678"}, "Invalid email format"},
		{signup{Email: "a@b.co", Password: "short"}, "password must be at least 8 characters"},
		{signup{Email: "a@b.co", Password: "12345678", Rate: 101}, "commissionRate must be 100 or less"},
	}
	for _, c := range cases {
		err := Validate(c.in)
		require.Error(t, err)
		assert.Equal(t, c.want, err.Error())
	}
	assert.NoError(t, Validate(signup{Email: "a@b.co", Password: "12345678", Rate: 10}))
}

func TestJSONText(t *testing.T) {
	doc, err := ToJSONText([]map[string]string{{"name": "Ana"}})
	require.NoError(t, err)

	out, err := json.Marshal(struct {
		P JSONText `json:"p"`
	}{doc})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":[{"name":"Ana"}]}`, string(out))

	var broken JSONText = "{not json"
	b, err := broken.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	var scanned JSONText
	require.NoError(t, scanned.Scan([]byte(`[1,2]`)))
	assert.Equal(t, JSONText("[1,2]"), scanned)
}

func TestDecodeJSONAndPathID(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := DecodeJSON(r, &body); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"id": id, "name": body.Name})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items/7", strings.NewReader(`{"name":"x"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"name":"x"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items/abc", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items/3", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed JSON payload")
}
