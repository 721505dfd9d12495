package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"
	"golang.org/x/crypto/bcrypt"

	"chidi/internal/services"
)

func TestSeededPasswordsAreHashed(t *testing.T) {
	app := newTestApp(t)
	var hashes []string
	require.NoError(t, app.DB.Select(&hashes, `SELECT password_hash FROM users`))
	require.NotEmpty(t, hashes)
	for _, h := range hashes {
		assert.NotContains(t, h, ownerPassword)
		assert.True(t, strings.HasPrefix(h, "$2"), "unexpected hash format: %s", h)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte(ownerPassword)))
	}
}

func TestRegisterLoginRefresh(t *testing.T) {
	app := newTestApp(t)

	resp := app.call(t, "POST", "/api/auth/register", "", map[string]string{
		"email": "Ada@Shop.test", "password": "Str0ng!pass", "name": "Ada", "phone": "08031234567",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reg struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	decode(t, resp, &reg)
	assert.Equal(t, "ada@shop.test", reg.User.Email)
	assert.Equal(t, services.RoleStaff, reg.User.Role)
	assert.NotEmpty(t, reg.Token)

	resp = app.call(t, "POST", "/api/auth/register", "", map[string]string{
		"email": "ada@shop.test", "password": "Str0ng!pass", "name": "Ada",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = app.call(t, "POST", "/api/auth/login", "", map[string]string{"email": "ada@shop.test", "password": "Str0ng!pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, cookie(resp, "token"))

	resp = app.call(t, "POST", "/api/auth/refresh", reg.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ref struct {
		Token string `json:"token"`
	}
	decode(t, resp, &ref)
	assert.NotEmpty(t, ref.Token)

	resp = app.call(t, "POST", "/api/auth/refresh", "", map[string]string{"token": "not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	app := newTestApp(t)
	for name, body := range map[string]map[string]string{
		"bad email":     {"email": "nope", "password": "Str0ng!pass", "name": "Ada"},
		"weak password": {"email": "a@b.test", "password": "password", "name": "Ada"},
		"missing name":  {"email": "a@b.test", "password": "Str0ng!pass"},
		"bad phone":     {"email": "a@b.test", "password": "Str0ng!pass", "name": "Ada", "phone": "12ab"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := app.call(t, "POST", "/api/auth/register", "", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLoginFailsAndThrottles(t *testing.T) {
	app := newTestApp(t)

	entries := captureLogs(t, func() {
		resp := app.call(t, "POST", "/api/auth/login", "", map[string]string{"email": ownerEmail, "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, bodyString(t, resp), "Invalid email or password")
	})
	fail, ok := findLog(entries, "auth.login.fail")
	require.True(t, ok, "expected auth.login.fail log")
	assert.Equal(t, "warn", fail.Level)

	// four more attempts fit the window of five, the sixth is refused
	for i := 0; i < 4; i++ {
		resp := app.call(t, "POST", "/api/auth/login", "", map[string]string{"email": ownerEmail, "password": "wrong"})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+2)
	}
	entries = captureLogs(t, func() {
		resp := app.call(t, "POST", "/api/auth/login", "", map[string]string{"email": ownerEmail, "password": ownerPassword})
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	})
	_, ok = findLog(entries, "rate.login.hit")
	assert.True(t, ok, "expected rate.login.hit log")
}

func TestLoginSuccessIsAudited(t *testing.T) {
	app := newTestApp(t)
	entries := captureLogs(t, func() { app.login(t) })
	e, ok := findLog(entries, "auth.login.success")
	require.True(t, ok)
	assert.Equal(t, "audit", e.Level)
	assert.Equal(t, "u-owner", e.UserID)
}

func TestProfileAndOnboarding(t *testing.T) {
	app := newTestApp(t)
	tok := app.login(t)

	resp := app.call(t, "GET", "/api/auth/profile", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, bodyString(t, resp), "password")

	resp = app.call(t, "PUT", "/api/auth/profile", tok, map[string]string{"location": "Lagos"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u struct {
		Location string `json:"location"`
	}
	decode(t, resp, &u)
	assert.Equal(t, "Lagos", u.Location)

	resp = app.call(t, "POST", "/api/auth/onboarding", tok, map[string]string{"businessName": "Chidi Styles"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = app.call(t, "POST", "/api/auth/onboarding", tok, map[string]string{"businessName": "Chidi Styles", "businessType": "Fashion"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.call(t, "GET", "/api/auth/onboarding/status", tok, nil)
	var st struct {
		OnboardingCompleted bool `json:"onboardingCompleted"`
	}
	decode(t, resp, &st)
	assert.True(t, st.OnboardingCompleted)
}

func TestDeleteAccountInvalidatesRefresh(t *testing.T) {
	app := newTestApp(t)
	tok := app.login(t)

	resp := app.call(t, "DELETE", "/api/auth/account", tok, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = app.call(t, "POST", "/api/auth/refresh", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = app.call(t, "GET", "/api/auth/profile", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPasswordResetRequestDoesNotRevealAccounts(t *testing.T) {
	app := newTestApp(t)
	for _, email := range []string{ownerEmail, "nobody@chidi.test"} {
		resp := app.call(t, "POST", "/api/auth/password-reset/request", "", map[string]string{"email": email})
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	}
	resp := app.call(t, "POST", "/api/auth/password-reset/confirm", "", map[string]string{"token": "bogus.code", "password": "N3w!passw"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func signedWebhook(t *testing.T, body string, ts time.Time) *http.Request {
	t.Helper()
	wh, err := svix.NewWebhook(webhookSecret)
	require.NoError(t, err)
	sig, err := wh.Sign("msg_1", ts, []byte(body))
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/auth/webhooks/clerk", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("svix-id", "msg_1")
	req.Header.Set("svix-timestamp", strconv.FormatInt(ts.Unix(), 10))
	req.Header.Set("svix-signature", sig)
	return req
}

func TestWebhookSignature(t *testing.T) {
	app := newTestApp(t)
	body := `{"type":"user.created","data":{"id":"user_ext1","first_name":"Bola","last_name":"Ade",` +
		`"email_addresses":[{"email_address":"Bola@Shop.test"}]}}`

	req := signedWebhook(t, body, time.Now())
	req.Header.Set("svix-signature", "v1,AAAA")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(signedWebhook(t, body, time.Now().Add(-time.Hour)), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "stale timestamp")

	resp, err = app.Test(signedWebhook(t, body, time.Now()), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	u, err := app.Auth.Users.ByExternalID("user_ext1")
	require.NoError(t, err)
	assert.Equal(t, "bola@shop.test", u.Email)
	assert.Equal(t, "Bola Ade", u.Name)

	resp, err = app.Test(signedWebhook(t, `{"type":"user.deleted","data":{"id":"user_ext1"}}`, time.Now()), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = app.Auth.Users.ByExternalID("user_ext1")
	assert.Error(t, err)
}
